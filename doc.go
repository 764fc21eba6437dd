// Package anvil is a dependency injection container with module composition
// and a deterministic bootstrap sequence.
//
// # Container
//
// A Container maps keys to singletons. A key is a class (the type its
// constructor returns, see KeyOf), a *Token, a string, a *Module, or any
// other comparable value. The first registration for a key wins:
//
//	c := anvil.New()
//	db, err := c.Set(DatabaseClass)      // constructs *Database
//	same, _ := c.Set(DatabaseClass)      // same pointer, nothing runs
//	c.Set(&Config{Port: 8080})           // stored as is
//	c.Set(StubMailerClass, MailerToken)  // constructed, stored under the token
//
// Get and Has are pure lookups. Resolve and Invoke construct on demand:
//
//	svc, err := anvil.Invoke[*UserService](c)
//	port, err := anvil.Resolve[int](c, PortToken)
//
// # Classes
//
// Injectable declares a class from a constructor. Parameters are resolved by
// type unless Inject names another key:
//
//	var UserServiceClass = anvil.Injectable(
//	    NewUserService,
//	    anvil.Inject(1, MailerToken),
//	)
//
// A pointer-to-struct type with no declaration is a plain class built with
// new. After construction the instance's Property fields are wired and
// OnInit runs when the instance implements Initializer.
//
// # Properties
//
// Property fields resolve lazily, on every Get, so structs may reference each
// other in cycles:
//
//	type UserService struct {
//	    Cache anvil.Property[*UserCache]
//	    Mail  anvil.Property[Mailer] `anvil:"mailer,optional"`
//	}
//
// # Modules
//
// Modules import other modules, declare providers and name bootstrap classes:
//
//	var InfraModule = anvil.NewModule("infra").
//	    Provide(&anvil.Provider{Provide: PortToken, UseValue: 8080})
//
//	var AppModule = anvil.NewModule("app").
//	    Import(anvil.ForRoot(InfraModule, &anvil.Provider{Provide: PortToken, UseValue: 9090})).
//	    Bootstrap(ServerClass)
//
//	err := c.Bootstrap(ctx, AppModule)
//
// Bootstrap imports the tree depth-first, resolves factory providers one at
// a time in declaration order, constructs the bootstrap classes and finally
// resolves the providers marked ProvideAtEnd.
//
// # Lifecycle
//
// Remove and Close call OnDestroy on instances implementing Destroyer. Close
// tears down dependents before their dependencies. Run bootstraps, waits for
// SIGINT, SIGTERM or context cancellation, then closes.
//
// # Observability
//
// WithLogger and WithSettings configure the slog logger, WithSetObserver,
// WithProviderObserver and WithRemoveObserver report timings, FprintGraph and
// FprintGraphDOT render the dependency graph, and Health, Live and Ready poll
// HealthChecker and ReadinessChecker instances.
package anvil

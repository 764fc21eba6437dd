package anvil

import (
	"context"
	"slices"
	"sync"
)

// Importable is anything a module can import: another *Module, a
// ModuleWithProviders, or a *Class, which is constructed at import time.
type Importable interface {
	importable()
}

// Module groups providers, imports and bootstrap classes. Modules are
// declared once, usually as package-level vars, and composed into a
// container by Bootstrap or Set.
type Module struct {
	name      string
	imports   []Importable
	providers []*Provider
	bootstrap []*Class
	overrides func() ModuleWithProviders
}

// ModuleWithProviders imports Module after merging Providers into the
// pending providers, so they take precedence over the module's own.
type ModuleWithProviders struct {
	Module    *Module
	Providers []*Provider
}

func (ModuleWithProviders) importable() {}

func NewModule(name string) *Module {
	return &Module{name: name}
}

func (m *Module) Name() string {
	return m.name
}

func (m *Module) String() string {
	return "Module(" + m.name + ")"
}

func (m *Module) Import(entries ...Importable) *Module {
	m.imports = append(m.imports, entries...)
	return m
}

func (m *Module) Provide(providers ...*Provider) *Module {
	m.providers = append(m.providers, providers...)
	return m
}

// Bootstrap adds entry-point classes, constructed once every eager provider
// of the module tree has been resolved.
func (m *Module) Bootstrap(classes ...*Class) *Module {
	m.bootstrap = append(m.bootstrap, classes...)
	return m
}

// WithOverrides sets the factory consulted whenever m appears in an import
// list. The providers it returns are merged before m itself is imported.
func (m *Module) WithOverrides(fn func() ModuleWithProviders) *Module {
	m.overrides = fn
	return m
}

func (m *Module) importable() {}

// ForRoot imports m with providers that override its own.
func ForRoot(m *Module, providers ...*Provider) ModuleWithProviders {
	return ModuleWithProviders{Module: m, Providers: providers}
}

func moduleOf(entry Importable) *Module {
	switch e := entry.(type) {
	case *Module:
		return e
	case ModuleWithProviders:
		return e.Module
	}
	return nil
}

func importableName(entry Importable) string {
	switch e := entry.(type) {
	case *Module:
		if e != nil {
			return e.String()
		}
	case ModuleWithProviders:
		if e.Module != nil {
			return e.Module.String()
		}
	case *Class:
		if e != nil {
			return e.String()
		}
	}
	return "<nil>"
}

type moduleState int

const (
	moduleDeclared moduleState = iota
	moduleImporting
	moduleImported
)

type pendingProvider struct {
	key      any
	provider *Provider
}

// composer holds the per-container composition state: module import
// states, the pending factory providers and the pending bootstrap classes.
type composer struct {
	mu        sync.Mutex
	states    map[*Module]moduleState
	path      []*Module
	pending   []pendingProvider
	scheduled map[*Provider]bool
	bootstrap []*Class
	queued    map[any]bool
	claimed   int
	composing int
	ctx       context.Context
}

func newComposer() *composer {
	return &composer{
		states:    make(map[*Module]moduleState),
		scheduled: make(map[*Provider]bool),
		queued:    make(map[any]bool),
	}
}

// enter marks the start of a composition. Pending factories are only
// resolved on demand while a composition is running.
func (cp *composer) enter(ctx context.Context) (restore func()) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	prev := cp.ctx
	if prev == nil {
		cp.ctx = ctx
	}
	cp.composing++

	return func() {
		cp.mu.Lock()
		defer cp.mu.Unlock()
		cp.composing--
		cp.ctx = prev
	}
}

// bind makes ctx the context handed to factories until restore is called.
func (cp *composer) bind(ctx context.Context) (restore func()) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	prev := cp.ctx
	cp.ctx = ctx
	return func() {
		cp.mu.Lock()
		defer cp.mu.Unlock()
		cp.ctx = prev
	}
}

func (cp *composer) context() context.Context {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if cp.ctx == nil {
		return context.Background()
	}
	return cp.ctx
}

func (cp *composer) state(m *Module) moduleState {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.states[m]
}

// begin moves m to Importing. It returns the previous state and, for a
// module already being imported, the import chain that leads back to it.
func (cp *composer) begin(m *Module) (moduleState, []*Module) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	state := cp.states[m]
	switch state {
	case moduleImporting:
		idx := slices.Index(cp.path, m)
		chain := slices.Clone(cp.path[idx:])
		return state, append(chain, m)
	case moduleImported:
		return state, nil
	}

	cp.states[m] = moduleImporting
	cp.path = append(cp.path, m)
	return state, nil
}

// finish closes the import of m, marking it Imported on success or back to
// Declared on failure.
func (cp *composer) finish(m *Module, ok bool) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if ok {
		cp.states[m] = moduleImported
	} else {
		delete(cp.states, m)
	}
	if idx := slices.Index(cp.path, m); idx >= 0 {
		cp.path = slices.Delete(cp.path, idx, idx+1)
	}
}

func (cp *composer) forget(m *Module) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	delete(cp.states, m)
}

// enqueue appends a factory provider to the pending table once per
// descriptor.
func (cp *composer) enqueue(key any, p *Provider) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if cp.scheduled[p] {
		return
	}
	cp.scheduled[p] = true
	cp.pending = append(cp.pending, pendingProvider{key: key, provider: p})
}

func (cp *composer) queueBootstrap(classes []*Class) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	for _, cls := range classes {
		if cls == nil || cp.queued[cls.key] {
			continue
		}
		cp.queued[cls.key] = true
		cp.bootstrap = append(cp.bootstrap, cls)
	}
}

// claim takes the first pending provider for key out of the pending table.
// It only succeeds during a composition, and never for a ProvideAtEnd
// provider: those wait until the bootstrap classes exist.
func (cp *composer) claim(key any) (*Provider, bool) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if cp.composing == 0 {
		return nil, false
	}
	for i, pending := range cp.pending {
		if pending.key == key && !pending.provider.ProvideAtEnd {
			cp.pending = slices.Delete(cp.pending, i, i+1)
			cp.claimed++
			return pending.provider, true
		}
	}
	return nil, false
}

// drain empties the pending tables and returns their content in
// declaration order, along with the number of providers claimed on demand
// since the last drain.
func (cp *composer) drain() ([]pendingProvider, []*Class, int) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	pending, classes, claimed := cp.pending, cp.bootstrap, cp.claimed
	cp.pending = nil
	cp.bootstrap = nil
	cp.claimed = 0
	cp.queued = make(map[any]bool)
	return pending, classes, claimed
}

// snapshot returns the pending tables without draining them.
func (cp *composer) snapshot() ([]pendingProvider, []*Class) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return slices.Clone(cp.pending), slices.Clone(cp.bootstrap)
}

func (cp *composer) reset() {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.states = make(map[*Module]moduleState)
	cp.path = nil
	cp.pending = nil
	cp.scheduled = make(map[*Provider]bool)
	cp.bootstrap = nil
	cp.queued = make(map[any]bool)
	cp.claimed = 0
}

func (c *Container) context() context.Context {
	return c.comp.context()
}

func (c *Container) importEntry(entry Importable) error {
	switch e := entry.(type) {
	case *Module:
		if e == nil {
			return errInvalidKey("imported module is nil")
		}
		if e.overrides != nil && c.comp.state(e) == moduleDeclared {
			return c.importWithProviders(e.overrides())
		}
		return c.importModule(e)

	case ModuleWithProviders:
		return c.importWithProviders(e)

	case *Class:
		if e == nil {
			return errInvalidKey("imported class is nil")
		}
		_, err := c.Set(e)
		return err
	}

	return errInvalidKey("unsupported import entry")
}

func (c *Container) importWithProviders(entry ModuleWithProviders) error {
	if entry.Module == nil {
		return errInvalidKey("imported module is nil")
	}
	for _, p := range entry.Providers {
		if err := c.schedule(p); err != nil {
			return err
		}
	}
	return c.importModule(entry.Module)
}

func (c *Container) importModule(m *Module) error {
	state, chain := c.comp.begin(m)
	switch state {
	case moduleImported:
		return nil
	case moduleImporting:
		names := make([]string, len(chain))
		for i, mod := range chain {
			names[i] = mod.String()
		}
		return errCircularImport(names)
	}

	c.logger().Debug("importing module", "module", m.name)

	if err := c.composeModule(m); err != nil {
		c.comp.finish(m, false)
		return err
	}
	c.comp.finish(m, true)

	var deps []any
	for _, entry := range m.imports {
		if sub := moduleOf(entry); sub != nil {
			deps = append(deps, sub)
		}
	}
	c.internal.Store(m, m, deps)
	return nil
}

func (c *Container) composeModule(m *Module) error {
	for _, entry := range m.imports {
		if err := c.importEntry(entry); err != nil {
			return err
		}
	}
	for _, p := range m.providers {
		if err := c.schedule(p); err != nil {
			return err
		}
	}
	c.comp.queueBootstrap(m.bootstrap)
	return nil
}

// schedule defers factory providers to the bootstrap sequence. Value and
// class providers have nothing to wait for and are registered right away.
func (c *Container) schedule(p *Provider) error {
	key, err := p.validate()
	if err != nil {
		return err
	}
	if p.UseFactory != nil {
		c.comp.enqueue(key, p)
		return nil
	}
	_, err = c.provide(c.context(), p)
	return err
}

package anvil

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	reflectPkg "reflect"
	"syscall"
	"time"

	"github.com/danpasecinic/anvil/internal/container"
	"github.com/danpasecinic/anvil/internal/reflect"
)

// Container is a singleton registry. Every key maps to at most one value and
// the first registration for a key wins.
type Container struct {
	internal *container.Container
	config   *containerConfig
	comp     *composer
}

type containerConfig struct {
	logger     *slog.Logger
	color      bool
	onSet      []SetHook
	onProvider []ProviderHook
	onRemove   []RemoveHook
}

func New(opts ...Option) *Container {
	cfg := &containerConfig{
		logger: slog.Default(),
		color:  true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	internalCfg := &container.Config{Logger: cfg.logger}
	for _, hook := range cfg.onSet {
		internalCfg.OnSet = append(
			internalCfg.OnSet, func(key any, d time.Duration, err error) {
				hook(KeyName(key), d, err)
			},
		)
	}
	for _, hook := range cfg.onRemove {
		internalCfg.OnRemove = append(
			internalCfg.OnRemove, func(key any, err error) {
				hook(KeyName(key), err)
			},
		)
	}

	return &Container{
		internal: container.New(internalCfg),
		config:   cfg,
		comp:     newComposer(),
	}
}

func (c *Container) logger() *slog.Logger {
	return c.internal.Logger()
}

// Has reports whether key is registered. It never constructs.
func (c *Container) Has(key any) bool {
	key, err := normalizeKey(key)
	if err != nil {
		return false
	}
	return c.internal.Has(key)
}

// Get returns the value registered under key, or nil. It never constructs
// and never fails.
func (c *Container) Get(key any) any {
	key, err := normalizeKey(key)
	if err != nil {
		return nil
	}
	instance, _ := c.internal.Get(key)
	return instance
}

// Set registers target and returns the stored value.
//
// The storage key is alias[0] when given, the class key when target is a
// *Class or a reflect.Type, and target itself otherwise. When the key is
// already registered the existing value is returned and nothing runs.
// Constructible targets are built, wired and initialised; modules are
// composed; anything else is stored as is.
func (c *Container) Set(target any, alias ...any) (any, error) {
	var (
		key any
		err error
	)
	if len(alias) > 0 && alias[0] != nil {
		key, err = normalizeKey(alias[0])
	} else {
		key, err = defaultKey(target)
	}
	if err != nil {
		return nil, err
	}

	if existing, ok := c.internal.Get(key); ok {
		return existing, nil
	}

	switch t := target.(type) {
	case *Module:
		return c.setModule(t, key)
	case ModuleWithProviders:
		return c.setModule(t, key)
	}

	if cls := classFor(target); cls != nil {
		return c.construct(key, cls)
	}

	if err := c.Wire(target); err != nil {
		return nil, err
	}
	instance, _ := c.internal.Store(key, target, nil)
	return instance, nil
}

func (c *Container) setModule(entry Importable, key any) (any, error) {
	restore := c.comp.enter(c.context())
	err := c.importEntry(entry)
	restore()
	if err != nil {
		return nil, err
	}

	m := moduleOf(entry)
	if key != any(m) {
		c.internal.Store(key, m, []any{m})
	}
	return m, nil
}

func defaultKey(target any) (any, error) {
	switch t := target.(type) {
	case nil:
		return nil, errInvalidKey("cannot set a nil target without an alias")
	case ModuleWithProviders:
		if t.Module == nil {
			return nil, errInvalidKey("module is nil")
		}
		return t.Module, nil
	case reflectPkg.Type:
		return t, nil
	}
	return normalizeKey(target)
}

// resolve returns the value for key, constructing and registering it when
// the key names a class. Keys that are neither registered nor constructible
// yield nil without an error.
func (c *Container) resolve(key any) (any, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	if instance, ok := c.internal.Get(key); ok {
		return instance, nil
	}

	if p, ok := c.comp.claim(key); ok {
		if _, err := c.provide(c.context(), p); err != nil {
			return nil, err
		}
		instance, _ := c.internal.Get(key)
		return instance, nil
	}

	if cls := classFor(key); cls != nil {
		return c.construct(key, cls)
	}

	return nil, nil
}

func (c *Container) construct(key any, cls *Class) (any, error) {
	instance, err := c.internal.Resolve(
		key, func() (any, []any, error) {
			return cls.build(c, nil)
		},
	)

	if cycle, ok := err.(*container.CycleError); ok {
		names := make([]string, len(cycle.Path))
		for i, k := range cycle.Path {
			names[i] = KeyName(k)
		}
		return nil, errCircularDependency(names)
	}
	return instance, err
}

// Remove runs OnDestroy on the value stored under key and deletes it. The
// entry is deleted even when OnDestroy fails.
func (c *Container) Remove(key any) (bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return false, err
	}

	removed, err := c.internal.Remove(key, destroyInstance)
	if m, ok := key.(*Module); ok && removed {
		c.comp.forget(m)
	}
	if err != nil {
		return removed, errDestroyFailed(KeyName(key), err)
	}
	return removed, nil
}

// Clear drops every registration, module state and pending table without
// running any hook.
func (c *Container) Clear() {
	c.internal.Clear()
	c.comp.reset()
}

// Close destroys every registered value once, dependents before their
// dependencies, and leaves the container empty. Closing an empty container
// does nothing.
func (c *Container) Close() error {
	errs := c.internal.Close(destroyInstance)
	c.comp.reset()
	if len(errs) > 0 {
		return errDestroyFailed("container", errors.Join(errs...))
	}
	return nil
}

func (c *Container) Size() int {
	return c.internal.Size()
}

// Keys lists display names of every registered key in registration order.
func (c *Container) Keys() []string {
	keys := c.internal.Keys()
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = KeyName(key)
	}
	return names
}

// Wire binds every Property field of target, which must be a pointer to a
// struct, to this container. Other values are ignored. Set and automatic
// construction call it; call it yourself for instances built by hand.
func (c *Container) Wire(target any) error {
	rv := reflectPkg.ValueOf(target)
	if !rv.IsValid() || !reflect.IsPlainStruct(rv.Type()) || rv.IsNil() {
		return nil
	}

	fields, err := propertiesOf(rv.Type())
	if err != nil {
		return errInvalidClass(reflect.TypeName(rv.Type()), err)
	}

	elem := rv.Elem()
	for _, f := range fields {
		binder := elem.Field(f.index).Addr().Interface().(propertyBinder)
		binder.bind(c, f.point.Key, f.point.Optional)
	}
	return nil
}

func (c *Container) Run(ctx context.Context, root Importable) error {
	if err := c.Bootstrap(ctx, root); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-quit:
	}

	signal.Stop(quit)
	close(quit)

	return c.Close()
}

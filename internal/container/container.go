package container

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/danpasecinic/anvil/internal/graph"
	"github.com/danpasecinic/anvil/internal/reflect"
)

// Builder constructs the instance for a key and reports the keys it
// resolved while doing so.
type Builder func() (instance any, dependencies []any, err error)

type SetHook func(key any, duration time.Duration, err error)

type RemoveHook func(key any, err error)

type Container struct {
	registry *Registry
	graph    *graph.Graph[any]
	logger   *slog.Logger

	onSet    []SetHook
	onRemove []RemoveHook

	resolvingMu sync.Mutex
	resolving   []any
}

type Config struct {
	Logger   *slog.Logger
	OnSet    []SetHook
	OnRemove []RemoveHook
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Container{
		registry: NewRegistry(),
		graph:    graph.New[any](),
		logger:   logger,
		onSet:    cfg.OnSet,
		onRemove: cfg.OnRemove,
	}
}

// CycleError reports a constructor dependency cycle. Path starts and ends
// with the same key.
type CycleError struct {
	Path []any
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Path))
	for i, key := range e.Path {
		names[i] = reflect.KeyName(key)
	}
	return "circular dependency detected: " + strings.Join(names, " -> ")
}

func (c *Container) Has(key any) bool {
	return c.registry.Has(key)
}

func (c *Container) Get(key any) (any, bool) {
	return c.registry.GetInstance(key)
}

// Store registers an already built value. The first registration for a key
// wins; later calls return the existing instance.
func (c *Container) Store(key, instance any, dependencies []any) (any, bool) {
	entry, stored := c.registry.Store(key, instance, dependencies)
	if stored {
		c.graph.AddNode(key, dependencies)
		c.logger.Debug("registered instance", "service", reflect.KeyName(key))
	}
	return entry.Instance, stored
}

// Resolve returns the instance registered under key, building and storing it
// with build when absent. A key that is requested again while its own
// builder is running yields a CycleError.
func (c *Container) Resolve(key any, build Builder) (any, error) {
	if instance, ok := c.registry.GetInstance(key); ok {
		return instance, nil
	}

	if err := c.enter(key); err != nil {
		c.callSetHooks(key, 0, err)
		return nil, err
	}

	start := time.Now()
	instance, deps, err := build()
	c.leave(key)

	if err != nil {
		c.callSetHooks(key, time.Since(start), err)
		return nil, err
	}

	instance, _ = c.Store(key, instance, deps)
	c.callSetHooks(key, time.Since(start), nil)
	return instance, nil
}

func (c *Container) enter(key any) error {
	c.resolvingMu.Lock()
	defer c.resolvingMu.Unlock()

	if idx := slices.Index(c.resolving, key); idx >= 0 {
		path := slices.Clone(c.resolving[idx:])
		return &CycleError{Path: append(path, key)}
	}
	c.resolving = append(c.resolving, key)
	return nil
}

func (c *Container) leave(key any) {
	c.resolvingMu.Lock()
	defer c.resolvingMu.Unlock()

	if idx := slices.Index(c.resolving, key); idx >= 0 {
		c.resolving = slices.Delete(c.resolving, idx, idx+1)
	}
}

// Resolving reports whether key's builder is currently running.
func (c *Container) Resolving(key any) bool {
	c.resolvingMu.Lock()
	defer c.resolvingMu.Unlock()

	return slices.Contains(c.resolving, key)
}

func (c *Container) callSetHooks(key any, duration time.Duration, err error) {
	for _, hook := range c.onSet {
		hook(key, duration, err)
	}
}

// Remove deletes key. destroy runs on the stored instance before deletion;
// the entry is deleted even when destroy fails.
func (c *Container) Remove(key any, destroy func(instance any) error) (bool, error) {
	entry, exists := c.registry.Get(key)
	if !exists {
		return false, nil
	}

	var err error
	if destroy != nil {
		c.logger.Debug("destroying instance", "service", reflect.KeyName(key))
		err = destroy(entry.Instance)
	}

	if _, removed := c.registry.Remove(key); !removed {
		return false, err
	}
	c.graph.RemoveNode(key)

	for _, hook := range c.onRemove {
		hook(key, err)
	}
	return true, err
}

func (c *Container) Keys() []any {
	return c.registry.Keys()
}

func (c *Container) Entries() []*Entry {
	return c.registry.Entries()
}

func (c *Container) Size() int {
	return c.registry.Size()
}

func (c *Container) Graph() *graph.Graph[any] {
	return c.graph.Clone()
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

func (c *Container) Clear() {
	c.registry.Clear()
	c.graph.Clear()

	c.resolvingMu.Lock()
	c.resolving = nil
	c.resolvingMu.Unlock()
}

// Validate reports dependency cycles between registered instances.
func (c *Container) Validate() error {
	if !c.graph.HasCycle() {
		return nil
	}

	paths := c.graph.CyclePaths()
	rendered := make([]string, len(paths))
	for i, path := range paths {
		rendered[i] = (&CycleError{Path: path}).Error()
	}
	return fmt.Errorf("%s", strings.Join(rendered, "; "))
}

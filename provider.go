package anvil

import (
	"context"
	"time"
)

// Factory produces the value of a provider. deps holds the values of the
// provider's Deps keys, in order; unresolvable keys arrive as nil. A factory
// may block; the sequencer waits for it.
type Factory func(ctx context.Context, deps ...any) (any, error)

// Provider describes how a key gets its value. Exactly one of UseFactory,
// UseClass or UseValue applies; a provider with neither a factory nor a
// class provides UseValue, even when it is nil.
type Provider struct {
	Provide    any
	UseFactory Factory
	UseValue   any
	UseClass   *Class
	Deps       []any
	// ProvideAtEnd defers a factory until the bootstrap classes of the
	// module tree have been constructed.
	ProvideAtEnd bool
}

func (p *Provider) String() string {
	if p == nil {
		return "<nil>"
	}
	return "Provider(" + KeyName(p.Provide) + ")"
}

// validate checks the descriptor and returns its normalised key.
func (p *Provider) validate() (any, error) {
	if p == nil {
		return nil, errInvalidProvider("<nil>", "provider is nil")
	}

	key, err := normalizeKey(p.Provide)
	if err != nil {
		return nil, errInvalidProvider(KeyName(p.Provide), "invalid provide key: "+err.Error())
	}

	switch {
	case p.UseFactory != nil && p.UseClass != nil:
		return nil, errInvalidProvider(KeyName(key), "provider sets both UseFactory and UseClass")
	case p.UseValue != nil && (p.UseFactory != nil || p.UseClass != nil):
		return nil, errInvalidProvider(KeyName(key), "UseValue cannot be combined with UseFactory or UseClass")
	case len(p.Deps) > 0 && p.UseFactory == nil:
		return nil, errInvalidProvider(KeyName(key), "Deps require UseFactory")
	}

	for _, dep := range p.Deps {
		if _, err := normalizeKey(dep); err != nil {
			return nil, errInvalidProvider(KeyName(key), "invalid dependency key: "+err.Error())
		}
	}

	return key, nil
}

// provide runs p and registers its result under p.Provide unless the key is
// already registered. It returns the value p produced, which differs from
// the registered one when an earlier registration won.
func (c *Container) provide(ctx context.Context, p *Provider) (any, error) {
	key, err := p.validate()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	value, err := c.produce(ctx, key, p)
	c.callProviderHooks(key, p.ProvideAtEnd, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	c.logger().Debug(
		"resolved provider",
		"service", KeyName(key),
		"atEnd", p.ProvideAtEnd,
		"duration", time.Since(start),
	)
	return value, nil
}

func (c *Container) produce(ctx context.Context, key any, p *Provider) (any, error) {
	switch {
	case p.UseClass != nil:
		return c.construct(key, p.UseClass)

	case p.UseFactory != nil:
		deps := make([]any, len(p.Deps))
		depKeys := make([]any, len(p.Deps))
		for i, dep := range p.Deps {
			depKeys[i], _ = normalizeKey(dep)
			v, err := c.resolve(dep)
			if err != nil {
				return nil, errProviderFailed(KeyName(key), err)
			}
			deps[i] = v
		}

		value, err := p.UseFactory(ctx, deps...)
		if err != nil {
			return nil, errProviderFailed(KeyName(key), err)
		}
		return value, c.store(key, value, depKeys)

	default:
		return p.UseValue, c.store(key, p.UseValue, nil)
	}
}

// store registers value under key unless the key is taken, wiring its
// properties first.
func (c *Container) store(key, value any, deps []any) error {
	if c.internal.Has(key) {
		return nil
	}
	if err := c.Wire(value); err != nil {
		return err
	}
	c.internal.Store(key, value, deps)
	return nil
}

// provideLocal resolves the local providers of cls and returns the values
// they produced by key.
func (c *Container) provideLocal(cls *Class) (map[any]any, error) {
	if len(cls.providers) == 0 {
		return nil, nil
	}

	local := make(map[any]any, len(cls.providers))
	for _, p := range cls.providers {
		key, err := p.validate()
		if err != nil {
			return nil, err
		}
		value, err := c.provide(c.context(), p)
		if err != nil {
			return nil, err
		}
		local[key] = value
	}
	return local, nil
}

func (c *Container) callProviderHooks(key any, atEnd bool, d time.Duration, err error) {
	if len(c.config.onProvider) == 0 {
		return
	}
	name := KeyName(key)
	for _, hook := range c.config.onProvider {
		hook(name, atEnd, d, err)
	}
}

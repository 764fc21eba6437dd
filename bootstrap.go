package anvil

import (
	"context"
	"time"
)

// Bootstrap composes root into the container and runs the resulting
// sequence:
//
//  1. every module of the tree is imported depth-first, override providers
//     first, value and class providers registered on the way;
//  2. pending factory providers without ProvideAtEnd are resolved one at a
//     time in declaration order, unless a class built during the import
//     already claimed them;
//  3. every bootstrap class is constructed;
//  4. the ProvideAtEnd providers are resolved.
//
// A failing step stops the sequence. Whatever was registered before the
// failure stays registered. ctx is handed to every factory and checked
// before each step.
func (c *Container) Bootstrap(ctx context.Context, root Importable) error {
	name := importableName(root)
	if name == "<nil>" {
		return errBootstrapFailed(name, errInvalidKey("bootstrap root is nil"))
	}

	restore := c.comp.bind(ctx)
	defer restore()

	start := time.Now()
	c.logger().Debug("bootstrapping", "module", name)

	if err := ctx.Err(); err != nil {
		return errBootstrapFailed(name, err)
	}

	leave := c.comp.enter(ctx)
	err := c.importEntry(root)
	leave()

	pending, classes, claimed := c.comp.drain()
	if err != nil {
		return errBootstrapFailed(name, err)
	}

	var early, late []pendingProvider
	for _, p := range pending {
		if p.provider.ProvideAtEnd {
			late = append(late, p)
		} else {
			early = append(early, p)
		}
	}

	if err := c.resolvePending(ctx, early); err != nil {
		return errBootstrapFailed(name, err)
	}

	for _, cls := range classes {
		if err := ctx.Err(); err != nil {
			return errBootstrapFailed(name, err)
		}
		if _, err := c.Set(cls); err != nil {
			return errBootstrapFailed(name, err)
		}
	}

	if err := c.resolvePending(ctx, late); err != nil {
		return errBootstrapFailed(name, err)
	}

	c.logger().Info(
		"bootstrap complete",
		"module", name,
		"providers", claimed+len(pending),
		"bootstrap", len(classes),
		"services", c.Size(),
		"duration", time.Since(start),
	)
	return nil
}

func (c *Container) resolvePending(ctx context.Context, group []pendingProvider) error {
	for _, p := range group {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.provide(ctx, p.provider); err != nil {
			return err
		}
	}
	return nil
}

// Package anviltest wraps a Container with helpers that fail the test
// instead of returning errors.
package anviltest

import (
	"context"

	"github.com/danpasecinic/anvil"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestContainer struct {
	*anvil.Container
	tb TB
}

// New returns a container that is closed when the test ends.
func New(tb TB, opts ...anvil.Option) *TestContainer {
	tb.Helper()

	c := anvil.New(opts...)
	tc := &TestContainer{
		Container: c,
		tb:        tb,
	}

	tb.Cleanup(func() {
		if err := c.Close(); err != nil {
			tb.Fatalf("failed to close container: %v", err)
		}
	})

	return tc
}

func (tc *TestContainer) RequireBootstrap(ctx context.Context, root anvil.Importable) {
	tc.tb.Helper()

	if err := tc.Bootstrap(ctx, root); err != nil {
		tc.tb.Fatalf("failed to bootstrap %v: %v", root, err)
	}
}

func (tc *TestContainer) RequireValidate() {
	tc.tb.Helper()

	if err := tc.Validate(); err != nil {
		tc.tb.Fatalf("container validation failed: %v", err)
	}
}

func (tc *TestContainer) MustSet(target any, alias ...any) any {
	tc.tb.Helper()

	v, err := tc.Set(target, alias...)
	if err != nil {
		tc.tb.Fatalf("failed to set %s: %v", anvil.KeyName(target), err)
	}
	return v
}

// Replace overrides key regardless of what is registered.
func Replace(tc *TestContainer, key, value any) {
	tc.tb.Helper()

	if err := anvil.Replace(tc.Container, key, value); err != nil {
		tc.tb.Fatalf("failed to replace %s: %v", anvil.KeyName(key), err)
	}
}

func AssertHas(tc *TestContainer, key any) {
	tc.tb.Helper()

	if !tc.Has(key) {
		tc.tb.Fatalf("expected container to have %s", anvil.KeyName(key))
	}
}

func AssertNotHas(tc *TestContainer, key any) {
	tc.tb.Helper()

	if tc.Has(key) {
		tc.tb.Fatalf("expected container to not have %s", anvil.KeyName(key))
	}
}

func MustResolve[T any](tc *TestContainer, key any) T {
	tc.tb.Helper()

	v, err := anvil.Resolve[T](tc.Container, key)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", anvil.KeyName(key), err)
	}
	return v
}

func MustInvoke[T any](tc *TestContainer) T {
	tc.tb.Helper()

	v, err := anvil.Invoke[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to invoke %s: %v", anvil.KeyName(anvil.KeyOf[T]()), err)
	}
	return v
}

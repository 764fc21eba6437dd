package anvil

import (
	"fmt"

	"github.com/danpasecinic/anvil/internal/reflect"
)

// Lookup is a typed Get: it never constructs.
func Lookup[T any](c *Container, key any) (T, bool) {
	typed, ok := c.Get(key).(T)
	return typed, ok
}

// Resolve returns the value registered under key, constructing and
// registering it when key names a class.
func Resolve[T any](c *Container, key any) (T, error) {
	var zero T

	instance, err := c.resolve(key)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		if c.Has(key) {
			return zero, nil
		}
		return zero, errServiceNotFound(KeyName(key))
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errTypeMismatch(
			KeyName(key),
			fmt.Errorf("have %T, want %s", instance, reflect.TypeName(reflect.TypeOf[T]())),
		)
	}
	return typed, nil
}

// Invoke resolves the class whose key is T.
func Invoke[T any](c *Container) (T, error) {
	return Resolve[T](c, KeyOf[T]())
}

func MustInvoke[T any](c *Container) T {
	v, err := Invoke[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

func MustResolve[T any](c *Container, key any) T {
	v, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return v
}

// Reader defers fn until the returned function is called, then hands it the
// current values of keys. Keys that cannot be resolved arrive as nil.
func Reader[R any](c *Container, fn func(deps ...any) R, keys ...any) func() R {
	return func() R {
		deps := make([]any, len(keys))
		for i, key := range keys {
			v, err := c.resolve(key)
			if err != nil {
				c.logger().Warn("reader dependency failed", "service", KeyName(key), "error", err)
				continue
			}
			deps[i] = v
		}
		return fn(deps...)
	}
}

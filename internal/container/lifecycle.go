package container

import "fmt"

// ShutdownOrder lists registered keys with dependents before their
// dependencies; independent keys come in reverse registration order.
func (c *Container) ShutdownOrder() []any {
	order, err := c.graph.ShutdownOrder()
	if err != nil {
		keys := c.registry.Keys()
		reversed := make([]any, len(keys))
		for i, key := range keys {
			reversed[len(keys)-1-i] = key
		}
		return reversed
	}
	return order
}

// Close removes every entry in shutdown order, running destroy once per
// instance, and returns every destroy error.
func (c *Container) Close(destroy func(instance any) error) []error {
	var errs []error

	for _, key := range c.ShutdownOrder() {
		if _, err := c.Remove(key, destroy); err != nil {
			errs = append(errs, fmt.Errorf("destroy failed for %s: %w", keyName(key), err))
		}
	}

	c.Clear()
	return errs
}

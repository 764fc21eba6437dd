package container

import "github.com/danpasecinic/anvil/internal/reflect"

// Replace swaps the instance stored under key, destroying the previous one.
// It is the only path that overrides an existing registration.
func (c *Container) Replace(key, instance any, destroy func(instance any) error) error {
	_, err := c.Remove(key, destroy)
	c.Store(key, instance, nil)
	c.logger.Debug("replaced instance", "service", reflect.KeyName(key))
	return err
}

func keyName(key any) string {
	return reflect.KeyName(key)
}

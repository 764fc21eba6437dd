package anvil

// Replace stores value under key even when key is already registered,
// running OnDestroy on the previous value first. It is the one way around
// first-registration-wins and is meant for tests.
func Replace(c *Container, key, value any) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if err := c.Wire(value); err != nil {
		return err
	}
	if err := c.internal.Replace(key, value, destroyInstance); err != nil {
		return errDestroyFailed(KeyName(key), err)
	}
	return nil
}

func MustReplace(c *Container, key, value any) {
	if err := Replace(c, key, value); err != nil {
		panic(err)
	}
}

package anvil

import (
	"time"
)

// SetHook observes every automatic construction, successful or not.
type SetHook func(key string, duration time.Duration, err error)

// ProviderHook observes every provider resolution. atEnd reports whether the
// provider belonged to the group resolved after the bootstrap classes.
type ProviderHook func(key string, atEnd bool, duration time.Duration, err error)

// RemoveHook observes every removal, including the ones performed by Close.
type RemoveHook func(key string, err error)

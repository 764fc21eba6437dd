package anvil

// Initializer is implemented by instances that finish their setup after
// construction and property wiring. OnInit runs exactly once per automatic
// construction, before the instance is stored.
type Initializer interface {
	OnInit() error
}

// Destroyer is implemented by instances that release resources when they
// are removed from the container.
type Destroyer interface {
	OnDestroy() error
}

func destroyInstance(instance any) error {
	if d, ok := instance.(Destroyer); ok {
		return d.OnDestroy()
	}
	return nil
}

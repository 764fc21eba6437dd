package anvil

import (
	"fmt"
	reflectPkg "reflect"

	"github.com/danpasecinic/anvil/internal/metadata"
	"github.com/danpasecinic/anvil/internal/reflect"
)

// declarations is the process-wide injection metadata side table. Classes
// and property declarations are usually made from package-level vars, so it
// outlives any single container.
var declarations = metadata.NewStore()

// Class wraps a constructor so the container can build it automatically.
// Its identity is the type the constructor returns.
type Class struct {
	name      string
	key       reflectPkg.Type
	ctor      *reflect.Constructor
	providers []*Provider
}

type ClassOption func(*classConfig)

type classConfig struct {
	name      string
	injects   []metadata.Point
	providers []*Provider
}

// Inject overrides the key used for the constructor parameter at index.
// Undeclared parameters are resolved by their type.
func Inject(index int, key any) ClassOption {
	return func(cfg *classConfig) {
		cfg.injects = append(
			cfg.injects, metadata.Point{
				Index:  index,
				Key:    key,
				Source: metadata.SourceParam,
			},
		)
	}
}

// WithProviders attaches local providers. They are resolved and registered
// before every automatic construction of the class, and the values they
// produce take precedence over the container for the class's own
// parameters.
func WithProviders(providers ...*Provider) ClassOption {
	return func(cfg *classConfig) {
		cfg.providers = append(cfg.providers, providers...)
	}
}

func WithName(name string) ClassOption {
	return func(cfg *classConfig) {
		cfg.name = name
	}
}

// Injectable declares a class and panics when the declaration is invalid.
// It is meant for package-level variables:
//
//	var UserServiceClass = anvil.Injectable(NewUserService, anvil.Inject(1, MailerToken))
func Injectable(ctor any, opts ...ClassOption) *Class {
	cls, err := NewClass(ctor, opts...)
	if err != nil {
		panic(err)
	}
	return cls
}

// NewClass declares a class. ctor must be func(...) T or func(...) (T, error).
// Declaring a second class for the same T replaces the first one.
func NewClass(ctor any, opts ...ClassOption) (*Class, error) {
	cfg := &classConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	fn, err := reflect.FuncParams(ctor)
	if err != nil {
		return nil, errInvalidClass(cfg.name, err)
	}

	cls := &Class{
		name:      cfg.name,
		key:       fn.Out,
		ctor:      fn,
		providers: cfg.providers,
	}

	if fn.Variadic {
		return nil, errInvalidClass(cls.String(), fmt.Errorf("variadic constructors are not supported"))
	}

	for i, point := range cfg.injects {
		if point.Index < 0 || point.Index >= len(fn.Params) {
			return nil, errInvalidClass(
				cls.String(),
				fmt.Errorf("inject index %d out of range for %d parameters", point.Index, len(fn.Params)),
			)
		}
		key, err := normalizeKey(point.Key)
		if err != nil {
			return nil, errInvalidClass(cls.String(), err)
		}
		cfg.injects[i].Key = key
	}

	for _, p := range cfg.providers {
		if _, err := p.validate(); err != nil {
			return nil, errInvalidClass(cls.String(), err)
		}
	}

	declarations.ForgetParams(fn.Out)
	for i, param := range fn.Params {
		declarations.Record(
			fn.Out, metadata.Point{
				Index:  i,
				Key:    param,
				Source: metadata.SourceReflected,
			},
		)
	}
	for _, point := range cfg.injects {
		declarations.Record(fn.Out, point)
	}
	declarations.RegisterClass(fn.Out, cls)

	return cls, nil
}

// ClassOf returns the class declared for T. A pointer-to-struct T without
// a declaration gets a plain class built with new. Anything else yields nil.
func ClassOf[T any]() *Class {
	return classFor(reflect.TypeOf[T]())
}

func classFor(target any) *Class {
	switch t := target.(type) {
	case *Class:
		return t
	case reflectPkg.Type:
		if declared, ok := declarations.Class(t); ok {
			return declared.(*Class)
		}
		if reflect.IsPlainStruct(t) {
			return &Class{key: t}
		}
	}
	return nil
}

// Key is the registration key of the class.
func (cl *Class) Key() reflectPkg.Type {
	return cl.key
}

func (cl *Class) String() string {
	if cl.name != "" {
		return cl.name
	}
	if cl.key == nil {
		return "<nil>"
	}
	return reflect.TypeName(cl.key)
}

// Construct builds a new instance without registering it. With no args the
// class's local providers are registered and every parameter is resolved
// through c; explicit args are converted to the parameter types and passed
// as is. Properties are wired and OnInit runs either way.
func (cl *Class) Construct(c *Container, args ...any) (any, error) {
	instance, _, err := cl.build(c, args)
	return instance, err
}

func (cl *Class) build(c *Container, args []any) (any, []any, error) {
	name := cl.String()

	if cl.ctor == nil {
		if len(args) > 0 {
			return nil, nil, errInvalidClass(name, fmt.Errorf("plain class takes no constructor arguments"))
		}
		c.logger().Debug("constructing class", "service", name)
		instance := reflectPkg.New(cl.key.Elem()).Interface()
		return cl.finish(c, instance, nil)
	}

	var (
		argv []reflectPkg.Value
		deps []any
		err  error
	)
	if len(args) == 0 {
		argv, deps, err = cl.resolveParams(c)
	} else {
		argv, err = cl.convertArgs(args)
	}
	if err != nil {
		return nil, nil, err
	}

	c.logger().Debug("constructing class", "service", name)
	instance, err := cl.ctor.Call(argv)
	if err != nil {
		return nil, nil, errConstructionFailed(name, err)
	}
	return cl.finish(c, instance, deps)
}

func (cl *Class) resolveParams(c *Container) ([]reflectPkg.Value, []any, error) {
	local, err := c.provideLocal(cl)
	if err != nil {
		return nil, nil, err
	}

	argv := make([]reflectPkg.Value, len(cl.ctor.Params))
	deps := make([]any, 0, len(cl.ctor.Params))

	for i, paramType := range cl.ctor.Params {
		key := any(paramType)
		if point, ok := declarations.Param(cl.key, i); ok {
			key = point.Key
		}

		value, found := local[key]
		if !found {
			value, err = c.resolve(key)
			if err != nil {
				return nil, nil, err
			}
		}
		deps = append(deps, key)

		arg, err := reflect.Argument(value, paramType)
		if err != nil {
			return nil, nil, errTypeMismatch(KeyName(key), fmt.Errorf("parameter %d of %s: %w", i, cl, err))
		}
		argv[i] = arg
	}

	return argv, deps, nil
}

func (cl *Class) convertArgs(args []any) ([]reflectPkg.Value, error) {
	params := cl.ctor.Params
	if len(args) > len(params) {
		return nil, errInvalidClass(
			cl.String(),
			fmt.Errorf("got %d arguments for %d parameters", len(args), len(params)),
		)
	}

	argv := make([]reflectPkg.Value, len(params))
	for i, paramType := range params {
		var value any
		if i < len(args) {
			value = args[i]
		}
		arg, err := reflect.Argument(value, paramType)
		if err != nil {
			return nil, errTypeMismatch(cl.String(), fmt.Errorf("argument %d: %w", i, err))
		}
		argv[i] = arg
	}
	return argv, nil
}

func (cl *Class) finish(c *Container, instance any, deps []any) (any, []any, error) {
	if err := c.Wire(instance); err != nil {
		return nil, nil, err
	}

	if init, ok := instance.(Initializer); ok {
		if err := init.OnInit(); err != nil {
			return nil, nil, errInitFailed(cl.String(), err)
		}
	}
	return instance, deps, nil
}

func (cl *Class) importable() {}

// InjectionPoint is one declared injection point of a class or struct.
// Index is -1 for properties.
type InjectionPoint = metadata.Point

// InjectionSource says where an injection point was declared.
type InjectionSource = metadata.Source

const (
	SourceReflected = metadata.SourceReflected
	SourceParam     = metadata.SourceParam
	SourceProperty  = metadata.SourceProperty
	SourceTag       = metadata.SourceTag
)

// InjectionPoints lists the declared points of owner, a *Class or a
// reflect.Type, in declaration order. Property points appear once the type
// has been wired or declared.
func InjectionPoints(owner any) []InjectionPoint {
	switch o := owner.(type) {
	case *Class:
		return declarations.Points(o.key)
	case reflectPkg.Type:
		return declarations.Points(o)
	}
	return nil
}

package anvil

import (
	"fmt"
	reflectPkg "reflect"
	"sync"

	"github.com/danpasecinic/anvil/internal/metadata"
	"github.com/danpasecinic/anvil/internal/reflect"
	"github.com/danpasecinic/anvil/internal/tag"
)

// Property is a lazily resolved dependency held in a struct field. It is
// bound when the owning struct is wired and looks its key up again on every
// Get, so two structs may hold properties pointing at each other.
//
//	type UserService struct {
//		Cache anvil.Property[*UserCache]
//		Mail  anvil.Property[Mailer] `anvil:"mailer,optional"`
//	}
type Property[T any] struct {
	container *Container
	key       any
	optional  bool
}

type propertyBinder interface {
	bind(c *Container, key any, optional bool)
	defaultKey() any
}

var binderType = reflect.TypeOf[propertyBinder]()

func (p *Property[T]) bind(c *Container, key any, optional bool) {
	p.container = c
	p.key = key
	p.optional = optional
}

func (p *Property[T]) defaultKey() any {
	return reflect.TypeOf[T]()
}

// Key returns the bound key, or nil before wiring.
func (p *Property[T]) Key() any {
	return p.key
}

func (p *Property[T]) Bound() bool {
	return p.container != nil
}

// Get returns the current value, constructing and registering it on first
// access when the key names a class. Unbound, unresolvable and optional
// missing values read as the zero value.
func (p *Property[T]) Get() T {
	v, err := p.Resolve()
	if err != nil {
		p.container.logger().Warn(
			"property resolution failed",
			"service", KeyName(p.key),
			"error", err,
		)
	}
	return v
}

// Resolve is Get with the resolution error reported instead of logged.
func (p *Property[T]) Resolve() (T, error) {
	var zero T
	if p.container == nil {
		return zero, nil
	}

	var (
		v   any
		err error
	)
	if p.optional {
		v = p.container.Get(p.key)
	} else {
		v, err = p.container.resolve(p.key)
		if err != nil {
			return zero, err
		}
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, errTypeMismatch(
			KeyName(p.key),
			fmt.Errorf("have %T, want %s", v, reflect.TypeName(reflect.TypeOf[T]())),
		)
	}
	return typed, nil
}

type propertyField struct {
	index int
	point metadata.Point
}

var propertyCache sync.Map

// DeclareProperty sets the key of the Property field named field on Owner,
// overriding its tag. Owner may be the struct or a pointer to it. It panics
// when the field does not exist or is not a Property, and returns the
// recorded point so it can be used in a package-level var.
func DeclareProperty[Owner any](field string, key any) InjectionPoint {
	owner := reflect.TypeOf[Owner]()
	if owner.Kind() == reflectPkg.Struct {
		owner = reflectPkg.PointerTo(owner)
	}
	if !reflect.IsPlainStruct(owner) {
		panic(errInvalidClass(reflect.TypeName(owner), fmt.Errorf("properties live on structs")))
	}

	f, ok := owner.Elem().FieldByName(field)
	if !ok || !reflectPkg.PointerTo(f.Type).Implements(binderType) || len(f.Index) != 1 {
		panic(errInvalidClass(reflect.TypeName(owner), fmt.Errorf("%s is not a Property field", field)))
	}

	k, err := normalizeKey(key)
	if err != nil {
		panic(err)
	}

	point := metadata.Point{
		Index:  -1,
		Field:  field,
		Key:    k,
		Source: metadata.SourceProperty,
	}
	declarations.Record(owner, point)
	propertyCache.Delete(owner)
	return point
}

// propertiesOf lists the Property fields of the struct t points to with the
// key each one is bound to. Declared points win over tags, tags over the
// field type.
func propertiesOf(t reflectPkg.Type) ([]propertyField, error) {
	if cached, ok := propertyCache.Load(t); ok {
		return cached.([]propertyField), nil
	}

	st := t.Elem()
	var fields []propertyField

	for i := range st.NumField() {
		f := st.Field(i)
		if !f.IsExported() || !reflectPkg.PointerTo(f.Type).Implements(binderType) {
			continue
		}

		point, err := propertyPoint(t, f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, propertyField{index: i, point: point})
	}

	propertyCache.Store(t, fields)
	return fields, nil
}

func propertyPoint(owner reflectPkg.Type, f reflectPkg.StructField) (metadata.Point, error) {
	if point, ok := declarations.Property(owner, f.Name); ok {
		return point, nil
	}

	point := metadata.Point{
		Index:  -1,
		Field:  f.Name,
		Key:    reflectPkg.New(f.Type).Interface().(propertyBinder).defaultKey(),
		Source: metadata.SourceReflected,
	}

	if value, ok := f.Tag.Lookup(tag.Name); ok {
		parsed, err := tag.Parse(value)
		if err != nil {
			return metadata.Point{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if parsed.Key != "" {
			point.Key = parsed.Key
		}
		point.Optional = parsed.Optional()
		point.Source = metadata.SourceTag
	}

	declarations.Record(owner, point)
	return point, nil
}

package reflect

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

var typeNameCache sync.Map

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if cached, ok := typeNameCache.Load(t); ok {
		return cached.(string)
	}

	name := buildTypeName(t)
	typeNameCache.Store(t, name)
	return name
}

func buildTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeName(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeName(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeName(t.Key()) + "]" + buildTypeName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeName(t.Elem())
		default:
			return "chan " + buildTypeName(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
}

// KeyName renders a registration key for logs, graphs and errors.
func KeyName(key any) string {
	switch k := key.(type) {
	case nil:
		return "<nil>"
	case reflect.Type:
		return TypeName(k)
	case string:
		return strconv.Quote(k)
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprintf("%s(%p)", TypeName(reflect.TypeOf(key)), key)
	}
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// IsComparable reports whether v can be used as a map key without panicking.
func IsComparable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Comparable()
}

// IsPlainStruct reports whether t is a pointer to a struct, which can be
// built with reflect.New when no constructor is declared.
func IsPlainStruct(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct
}

// Constructor describes a function usable as a class constructor.
type Constructor struct {
	Fn       reflect.Value
	Params   []reflect.Type
	Out      reflect.Type
	HasError bool
	Variadic bool
}

// FuncParams inspects fn, which must be func(...) T or func(...) (T, error).
func FuncParams(fn any) (*Constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("constructor is nil")
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %s", t.Kind())
	}
	if v.IsNil() {
		return nil, fmt.Errorf("constructor is a nil function")
	}

	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return nil, fmt.Errorf("constructor %s returns only an error", t)
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("second return value of %s must be error", t)
		}
	default:
		return nil, fmt.Errorf("constructor %s must return T or (T, error)", t)
	}

	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}

	return &Constructor{
		Fn:       v,
		Params:   params,
		Out:      t.Out(0),
		HasError: t.NumOut() == 2,
		Variadic: t.IsVariadic(),
	}, nil
}

// Call invokes the constructor with already converted arguments.
func (c *Constructor) Call(args []reflect.Value) (any, error) {
	var results []reflect.Value
	if c.Variadic {
		results = c.Fn.CallSlice(args)
	} else {
		results = c.Fn.Call(args)
	}

	if c.HasError && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

// Argument converts v into a value assignable to t. A nil v yields the zero
// value of t.
func Argument(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		if rv.Type() != t {
			converted := reflect.New(t).Elem()
			converted.Set(rv)
			return converted, nil
		}
		return rv, nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", TypeName(rv.Type()), TypeName(t))
}

func Implements[T any](v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Implements(TypeOf[T]())
}

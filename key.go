package anvil

import (
	reflectPkg "reflect"

	"github.com/google/uuid"

	"github.com/danpasecinic/anvil/internal/reflect"
)

// KeyOf returns the registration key of a class: the type its constructor
// returns.
func KeyOf[T any]() reflectPkg.Type {
	return reflect.TypeOf[T]()
}

// Token is an opaque registration key. Two tokens are equal only when they
// are the same pointer, whatever their names.
type Token struct {
	name string
	id   uuid.UUID
}

func NewToken(name string) *Token {
	return &Token{name: name, id: uuid.New()}
}

func (t *Token) Name() string {
	return t.name
}

// ID is a random identifier for display and diagnostics only; identity is
// the pointer.
func (t *Token) ID() uuid.UUID {
	return t.id
}

func (t *Token) String() string {
	return "Token(" + t.name + ")"
}

// KeyName renders a key the way logs, errors and graphs show it.
func KeyName(key any) string {
	if cls, ok := key.(*Class); ok {
		return cls.String()
	}
	return reflect.KeyName(key)
}

// normalizeKey validates key and maps a *Class onto the type it constructs.
func normalizeKey(key any) (any, error) {
	switch k := key.(type) {
	case nil:
		return nil, errInvalidKey("key is nil")
	case *Class:
		if k == nil {
			return nil, errInvalidKey("class is nil")
		}
		return k.key, nil
	case *Module:
		if k == nil {
			return nil, errInvalidKey("module is nil")
		}
		return k, nil
	case *Token:
		if k == nil {
			return nil, errInvalidKey("token is nil")
		}
		return k, nil
	}

	if !reflect.IsComparable(key) {
		return nil, errInvalidKey("key of type " + reflect.TypeName(reflectPkg.TypeOf(key)) + " is not comparable")
	}
	return key, nil
}

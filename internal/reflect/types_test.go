package reflect

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInterface interface {
	DoSomething()
}

type testStruct struct {
	Name string
}

func (t *testStruct) DoSomething() {}

type namedKey struct{ name string }

func (k *namedKey) String() string { return "named(" + k.name + ")" }

func TestTypeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{name: "int", typ: TypeOf[int](), want: "int"},
		{name: "pointer to struct", typ: TypeOf[*testStruct](), want: "*github.com/danpasecinic/anvil/internal/reflect.testStruct"},
		{name: "slice", typ: TypeOf[[]string](), want: "[]string"},
		{name: "array", typ: TypeOf[[12]int](), want: "[12]int"},
		{name: "map", typ: TypeOf[map[string]int](), want: "map[string]int"},
		{name: "interface", typ: TypeOf[context.Context](), want: "context.Context"},
		{name: "recv chan", typ: TypeOf[<-chan int](), want: "<-chan int"},
		{name: "nil", typ: nil, want: "<nil>"},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()
				assert.Equal(t, tt.want, TypeName(tt.typ))
			},
		)
	}
}

func TestTypeNameUnique(t *testing.T) {
	t.Parallel()

	names := map[string]bool{}
	for _, typ := range []reflect.Type{
		TypeOf[int](),
		TypeOf[int64](),
		TypeOf[*int](),
		TypeOf[[]int](),
		TypeOf[testStruct](),
		TypeOf[*testStruct](),
		TypeOf[testInterface](),
	} {
		name := TypeName(typ)
		require.False(t, names[name], "duplicate name %s", name)
		names[name] = true
	}
}

func TestKeyName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"db"`, KeyName("db"))
	assert.Equal(t, "named(cache)", KeyName(&namedKey{name: "cache"}))
	assert.Equal(t, "int", KeyName(TypeOf[int]()))
	assert.Equal(t, "<nil>", KeyName(nil))
	assert.Contains(t, KeyName(&testStruct{}), "testStruct(0x")
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	var nilPtr *testStruct
	var nilMap map[string]int

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(nilPtr))
	assert.True(t, IsNil(nilMap))
	assert.False(t, IsNil(&testStruct{}))
	assert.False(t, IsNil(42))
}

func TestIsComparable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsComparable("key"))
	assert.True(t, IsComparable(&testStruct{}))
	assert.True(t, IsComparable(TypeOf[int]()))
	assert.False(t, IsComparable([]int{1}))
	assert.False(t, IsComparable(map[string]int{}))
	assert.False(t, IsComparable(nil))
}

func TestIsPlainStruct(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPlainStruct(TypeOf[*testStruct]()))
	assert.False(t, IsPlainStruct(TypeOf[testStruct]()))
	assert.False(t, IsPlainStruct(TypeOf[*int]()))
	assert.False(t, IsPlainStruct(nil))
}

func TestFuncParams(t *testing.T) {
	t.Parallel()

	ctor, err := FuncParams(func(s string, n int) *testStruct { return &testStruct{Name: s} })
	require.NoError(t, err)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, TypeOf[string](), ctor.Params[0])
	assert.Equal(t, TypeOf[*testStruct](), ctor.Out)
	assert.False(t, ctor.HasError)

	out, err := ctor.Call([]reflect.Value{reflect.ValueOf("x"), reflect.ValueOf(1)})
	require.NoError(t, err)
	assert.Equal(t, "x", out.(*testStruct).Name)
}

func TestFuncParamsWithError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ctor, err := FuncParams(func() (*testStruct, error) { return nil, boom })
	require.NoError(t, err)
	assert.True(t, ctor.HasError)

	_, err = ctor.Call(nil)
	assert.ErrorIs(t, err, boom)
}

func TestFuncParamsInvalid(t *testing.T) {
	t.Parallel()

	var nilFn func() int

	tests := []struct {
		name string
		fn   any
	}{
		{name: "nil", fn: nil},
		{name: "not a function", fn: 42},
		{name: "nil function", fn: nilFn},
		{name: "no results", fn: func() {}},
		{name: "only error", fn: func() error { return nil }},
		{name: "second not error", fn: func() (int, int) { return 0, 0 }},
		{name: "three results", fn: func() (int, int, error) { return 0, 0, nil }},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()
				_, err := FuncParams(tt.fn)
				assert.Error(t, err)
			},
		)
	}
}

func TestArgument(t *testing.T) {
	t.Parallel()

	v, err := Argument(nil, TypeOf[*testStruct]())
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	v, err = Argument(&testStruct{}, TypeOf[testInterface]())
	require.NoError(t, err)
	assert.Equal(t, TypeOf[testInterface](), v.Type())

	_, err = Argument("text", TypeOf[int]())
	assert.Error(t, err)
}

func TestImplements(t *testing.T) {
	t.Parallel()

	assert.True(t, Implements[testInterface](&testStruct{}))
	assert.False(t, Implements[testInterface](testStruct{}))
	assert.False(t, Implements[testInterface](nil))
}

func BenchmarkTypeName(b *testing.B) {
	typ := TypeOf[*testStruct]()
	for b.Loop() {
		_ = TypeName(typ)
	}
}

package metadata

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct{}

type other struct{}

var ownerType = reflect.TypeOf(&owner{})

func TestStore_RecordAndPoints(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Record(ownerType, Point{Index: 0, Key: "a", Source: SourceReflected})
	s.Record(ownerType, Point{Index: -1, Field: "Cache", Key: "b", Source: SourceProperty})

	points := s.Points(ownerType)
	require.Len(t, points, 2)
	assert.Equal(t, "a", points[0].Key)
	assert.True(t, points[1].IsProperty())

	points[0].Key = "mutated"
	assert.Equal(t, "a", s.Points(ownerType)[0].Key)
}

func TestStore_ParamLastDeclarationWins(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Record(ownerType, Point{Index: 0, Key: "reflected", Source: SourceReflected})
	s.Record(ownerType, Point{Index: 1, Key: "second", Source: SourceReflected})
	s.Record(ownerType, Point{Index: 0, Key: "declared", Source: SourceParam})

	p, ok := s.Param(ownerType, 0)
	require.True(t, ok)
	assert.Equal(t, "declared", p.Key)
	assert.Equal(t, SourceParam, p.Source)

	_, ok = s.Param(ownerType, 5)
	assert.False(t, ok)
}

func TestStore_Property(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Record(ownerType, Point{Index: -1, Field: "Cache", Key: "first", Source: SourceTag})
	s.Record(ownerType, Point{Index: -1, Field: "Cache", Key: "second", Source: SourceProperty})

	p, ok := s.Property(ownerType, "Cache")
	require.True(t, ok)
	assert.Equal(t, "second", p.Key)
	assert.Len(t, s.Points(ownerType), 1)

	_, ok = s.Property(ownerType, "Other")
	assert.False(t, ok)
}

func TestStore_PropertyRedeclaredKeepsPosition(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Record(ownerType, Point{Index: -1, Field: "Cache", Key: "tag", Source: SourceTag})
	s.Record(ownerType, Point{Index: -1, Field: "Mail", Key: "mail", Source: SourceTag})
	s.Record(ownerType, Point{Index: -1, Field: "Cache", Key: "k", Source: SourceProperty})
	s.Record(ownerType, Point{Index: -1, Field: "Cache", Key: "k2", Source: SourceProperty})

	points := s.Points(ownerType)
	require.Len(t, points, 2)
	assert.Equal(t, "k2", points[0].Key)
	assert.Equal(t, "Mail", points[1].Field)
}

func TestStore_Classes(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.RegisterClass(ownerType, "class")

	class, ok := s.Class(ownerType)
	require.True(t, ok)
	assert.Equal(t, "class", class)

	_, ok = s.Class(reflect.TypeOf(&other{}))
	assert.False(t, ok)
}

func TestStore_ForgetParamsAndReset(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Record(ownerType, Point{Index: 0, Key: "a"})
	s.RegisterClass(ownerType, "class")

	s.Record(ownerType, Point{Index: -1, Field: "Cache", Key: "b"})

	s.ForgetParams(ownerType)
	points := s.Points(ownerType)
	require.Len(t, points, 1)
	assert.True(t, points[0].IsProperty())

	s.Record(ownerType, Point{Index: 0, Key: "a"})
	otherType := reflect.TypeOf(&other{})
	s.Record(otherType, Point{Index: 0, Key: "x"})
	s.ForgetParams(otherType)
	assert.Len(t, s.Owners(), 1)

	s.Record(ownerType, Point{Index: 0, Key: "a"})
	s.Reset()
	assert.Empty(t, s.Owners())
	_, ok := s.Class(ownerType)
	assert.False(t, ok)
}

func TestSource_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "reflected", SourceReflected.String())
	assert.Equal(t, "param", SourceParam.String())
	assert.Equal(t, "property", SourceProperty.String())
	assert.Equal(t, "tag", SourceTag.String())
	assert.Equal(t, "unknown", Source(99).String())
}

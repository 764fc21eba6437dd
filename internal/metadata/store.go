// Package metadata holds the injection metadata side table: for every owner
// type, the ordered list of declared injection points, plus the table of
// declared classes by the type they construct.
package metadata

import (
	"reflect"
	"slices"
	"sync"
)

// Source says where an injection point came from.
type Source int

const (
	// SourceReflected points are derived from a constructor signature.
	SourceReflected Source = iota
	// SourceParam points are explicit constructor-parameter declarations.
	SourceParam
	// SourceProperty points are explicit property declarations.
	SourceProperty
	// SourceTag points are parsed from struct tags.
	SourceTag
)

func (s Source) String() string {
	switch s {
	case SourceReflected:
		return "reflected"
	case SourceParam:
		return "param"
	case SourceProperty:
		return "property"
	case SourceTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Point is one declared injection point. Index is -1 for properties.
type Point struct {
	Index    int
	Field    string
	Key      any
	Optional bool
	Source   Source
}

func (p Point) IsProperty() bool {
	return p.Index < 0
}

type Store struct {
	mu      sync.RWMutex
	points  map[reflect.Type][]Point
	classes map[reflect.Type]any
}

func NewStore() *Store {
	return &Store{
		points:  make(map[reflect.Type][]Point),
		classes: make(map[reflect.Type]any),
	}
}

// Record appends p to the points of owner. A property point replaces the
// point already recorded for the same field, keeping its position.
func (s *Store) Record(owner reflect.Type, p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IsProperty() {
		idx := slices.IndexFunc(s.points[owner], func(q Point) bool {
			return q.IsProperty() && q.Field == p.Field
		})
		if idx >= 0 {
			s.points[owner][idx] = p
			return
		}
	}
	s.points[owner] = append(s.points[owner], p)
}

// Points returns a copy of every point recorded for owner, in declaration order.
func (s *Store) Points(owner reflect.Type) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.points[owner])
}

// Param returns the effective point for a constructor parameter: the last
// declaration for that index wins, so explicit declarations override
// reflected ones.
func (s *Store) Param(owner reflect.Type, index int) (Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.points[owner]
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Index == index {
			return points[i], true
		}
	}
	return Point{}, false
}

// Property returns the effective point for a struct field.
func (s *Store) Property(owner reflect.Type, field string) (Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.points[owner]
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].IsProperty() && points[i].Field == field {
			return points[i], true
		}
	}
	return Point{}, false
}

// ForgetParams drops the constructor-parameter points recorded for owner,
// keeping property points. Redeclaring a class for the same type starts from
// a clean parameter list.
func (s *Store) ForgetParams(owner reflect.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := slices.DeleteFunc(s.points[owner], func(p Point) bool { return !p.IsProperty() })
	if len(kept) == 0 {
		delete(s.points, owner)
		return
	}
	s.points[owner] = kept
}

func (s *Store) RegisterClass(key reflect.Type, class any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.classes[key] = class
}

func (s *Store) Class(key reflect.Type) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	class, ok := s.classes[key]
	return class, ok
}

func (s *Store) Owners() []reflect.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make([]reflect.Type, 0, len(s.points))
	for owner := range s.points {
		owners = append(owners, owner)
	}
	return owners
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = make(map[reflect.Type][]Point)
	s.classes = make(map[reflect.Type]any)
}

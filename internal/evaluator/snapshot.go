package evaluator

import (
	"github.com/solisoft/soli-lang-sub001/internal/object"
)

// snapshotter deep-copies a closure and everything it can reach so a
// spawned worker never touches a container the calling thread still holds.
// Scalars are immutable and cross as-is; classes and native functions
// guard their own mutable state. Both maps memoize so aliasing and cycles
// survive the copy.
type snapshotter struct {
	envs map[*object.Environment]*object.Environment
	vals map[object.Object]object.Object
}

func newSnapshotter() *snapshotter {
	return &snapshotter{
		envs: make(map[*object.Environment]*object.Environment),
		vals: make(map[object.Object]object.Object),
	}
}

func (s *snapshotter) env(src *object.Environment) *object.Environment {
	if src == nil {
		return nil
	}
	if dst, ok := s.envs[src]; ok {
		return dst
	}

	outer := s.env(src.Outer())
	var dst *object.Environment
	if outer == nil {
		dst = object.NewEnvironment()
	} else {
		dst = object.NewEnclosedEnvironment(outer)
	}
	// register before copying bindings so a function that closes over
	// this scope resolves to the copy, not back into the live chain
	s.envs[src] = dst

	for _, name := range src.Names() {
		if val, ok := src.Get(name); ok {
			dst.Define(name, s.value(val))
		}
	}
	return dst
}

func (s *snapshotter) value(val object.Object) object.Object {
	switch val.(type) {
	case *object.Null, *object.Boolean, *object.Integer, *object.Float,
		*object.String, *object.Error, *object.NativeFunction,
		*object.Class, *object.Future:
		return val
	}

	if dst, ok := s.vals[val]; ok {
		return dst
	}

	switch val := val.(type) {
	case *object.Array:
		dst := &object.Array{Elements: make([]object.Object, len(val.Elements))}
		s.vals[val] = dst
		for i, el := range val.Elements {
			dst.Elements[i] = s.value(el)
		}
		return dst

	case *object.Hash:
		dst := object.NewHash()
		s.vals[val] = dst
		for _, pair := range val.Pairs() {
			dst.Set(pair.Key, s.value(pair.Value))
		}
		return dst

	case *object.Instance:
		dst := object.NewInstance(val.Class)
		s.vals[val] = dst
		for name, field := range val.Fields {
			dst.SetField(name, s.value(field))
		}
		return dst

	case *object.Function:
		dst := &object.Function{
			Parameters: val.Parameters,
			Body:       val.Body,
			Class:      val.Class,
		}
		s.vals[val] = dst
		dst.Env = s.env(val.Env)
		return dst

	default:
		return val
	}
}

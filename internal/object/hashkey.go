package object

// HashKey is the hashable projection of the value set. It stores the key
// payload itself rather than a digest so the Object round-trips losslessly.
// Float is excluded on purpose (IEEE754 equality hazards); the mutable
// container types are excluded because aliasing makes their hash unstable.
type HashKey struct {
	Kind ObjectType
	Int  int64
	Str  string
	Bool bool
}

// HashKeyFromObject reduces a value to its HashKey. The second return value
// is false for every unhashable type: Float, Array, Hash, Instance, Class,
// NativeFunction, Function and Future.
func HashKeyFromObject(obj Object) (HashKey, bool) {
	switch v := obj.(type) {
	case *Null:
		return HashKey{Kind: NULL_OBJ}, true
	case *Boolean:
		return HashKey{Kind: BOOL_OBJ, Bool: v.Value}, true
	case *Integer:
		return HashKey{Kind: INT_OBJ, Int: v.Value}, true
	case *String:
		return HashKey{Kind: STRING_OBJ, Str: v.Value}, true
	}
	return HashKey{}, false
}

// IsHashable reports whether a value can be used as a hash key.
func IsHashable(obj Object) bool {
	_, ok := HashKeyFromObject(obj)
	return ok
}

// ToObject is the lossless inverse of HashKeyFromObject.
func (k HashKey) ToObject() Object {
	switch k.Kind {
	case NULL_OBJ:
		return NULL
	case BOOL_OBJ:
		return NativeBoolToBooleanObject(k.Bool)
	case INT_OBJ:
		return &Integer{Value: k.Int}
	case STRING_OBJ:
		return &String{Value: k.Str}
	}
	return NULL
}

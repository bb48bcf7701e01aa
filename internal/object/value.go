package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/solisoft/soli-lang-sub001/internal/ast"
)

const (
	NULL_OBJ   = "Null"
	BOOL_OBJ   = "Bool"
	INT_OBJ    = "Int"
	FLOAT_OBJ  = "Float"
	STRING_OBJ = "String"

	ARRAY_OBJ    = "Array"
	HASH_OBJ     = "Hash"
	INSTANCE_OBJ = "Instance"
	CLASS_OBJ    = "Class"

	FUNCTION_OBJ = "Function"
	NATIVE_OBJ   = "NativeFunction"
	FUTURE_OBJ   = "Future"

	ERROR_OBJ        = "Error"
	RETURN_VALUE_OBJ = "ReturnValue"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

// Object is the closed set of runtime values. The evaluator and every
// builtin dispatch on the concrete type; do not add open subtyping.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOL_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INT_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Array is always held by pointer; every holder observes every mutation.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, e := range a.Elements {
		elements = append(elements, e.Inspect())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
	Class      *Class // defining class when the function is a method, else nil
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("fn")
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") {\n")
	out.WriteString(f.Body.String())
	out.WriteString("\n}")

	return out.String()
}

// Variadic marks a NativeFunction that accepts any number of arguments.
const Variadic = -1

// NativeFn is the host calling convention: the receiver (for bound methods)
// arrives as args[0], failures come back as *Error values.
type NativeFn func(args ...Object) Object

type NativeFunction struct {
	Name    string
	Arity   int // Variadic disables the caller-side check
	Fn      NativeFn
	RawArgs bool // arguments arrive without future resolution
}

func (nf *NativeFunction) Type() ObjectType { return NATIVE_OBJ }
func (nf *NativeFunction) Inspect() string  { return "<native fn " + nf.Name + ">" }

type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error carries a complete, user-displayable message. It is the runtime's
// only failure currency; nothing pattern-matches on its contents.
type Error struct {
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

func NewError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func IsError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// IsTruthy: only false and null are falsy. 0, "" and [] are all truthy.
func IsTruthy(obj Object) bool {
	switch obj {
	case NULL:
		return false
	case FALSE:
		return false
	case TRUE:
		return true
	}
	if b, ok := obj.(*Boolean); ok {
		return b.Value
	}
	if _, ok := obj.(*Null); ok {
		return false
	}
	return true
}

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// Resolve blocks on a Future until its background work finishes; every other
// value passes through untouched. Builtins that accept "any value" should
// funnel their arguments through here.
func Resolve(obj Object) Object {
	if fut, ok := obj.(*Future); ok {
		return fut.Resolve()
	}
	return obj
}

// Equals is structural equality: scalars by value, arrays and hashes by
// contents, instances by class and fields. Functions and classes compare
// by identity.
func Equals(a, b Object) bool {
	if ra, ok := a.(*Future); ok {
		a = ra.Resolve()
	}
	if rb, ok := b.(*Future); ok {
		b = rb.Resolve()
	}
	if a.Type() != b.Type() {
		// Int and Float cross-compare numerically.
		if na, aok := numericValue(a); aok {
			if nb, bok := numericValue(b); bok {
				return na == nb
			}
		}
		return false
	}

	switch av := a.(type) {
	case *Null:
		return true
	case *Boolean:
		return av.Value == b.(*Boolean).Value
	case *Integer:
		return av.Value == b.(*Integer).Value
	case *Float:
		return av.Value == b.(*Float).Value
	case *String:
		return av.Value == b.(*String).Value
	case *Array:
		bv := b.(*Array)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i, el := range av.Elements {
			if !Equals(el, bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Hash:
		bv := b.(*Hash)
		if av.Len() != bv.Len() {
			return false
		}
		for _, key := range av.Keys() {
			left, _ := av.GetKey(key)
			right, ok := bv.GetKey(key)
			if !ok || !Equals(left, right) {
				return false
			}
		}
		return true
	case *Instance:
		bv := b.(*Instance)
		if av.Class != bv.Class {
			return false
		}
		if len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, val := range av.Fields {
			other, ok := bv.Fields[name]
			if !ok || !Equals(val, other) {
				return false
			}
		}
		return true
	case *Error:
		return av.Message == b.(*Error).Message
	}

	// Function, NativeFunction, Class: identity
	return a == b
}

// HashEq is key-equality: two values are equal keys iff both are hashable
// and reduce to the same HashKey. It always agrees with HashKey equality.
func HashEq(a, b Object) bool {
	ka, ok := HashKeyFromObject(a)
	if !ok {
		return false
	}
	kb, ok := HashKeyFromObject(b)
	if !ok {
		return false
	}
	return ka == kb
}

func numericValue(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case *Integer:
		return float64(v.Value), true
	case *Float:
		return v.Value, true
	}
	return 0, false
}

package object

import (
	"encoding/json"
	"fmt"
	"sort"
)

// The JSON bridge is the single Value <-> plain-data conversion point.
// Every collaborator that moves data across the Future boundary or speaks
// JSON (DB rows, codecs, HTTP) goes through these two functions.

// GoToObject converts JSON-shaped Go data into runtime values. Map keys are
// sorted so a decoded hash has a deterministic insertion order.
func GoToObject(data any) Object {
	switch v := data.(type) {
	case nil:
		return NULL
	case bool:
		return NativeBoolToBooleanObject(v)
	case int:
		return &Integer{Value: int64(v)}
	case int64:
		return &Integer{Value: v}
	case float64:
		// encoding/json gives float64 for every number; keep exact ints
		if v == float64(int64(v)) {
			return &Integer{Value: int64(v)}
		}
		return &Float{Value: v}
	case string:
		return &String{Value: v}
	case []byte:
		return &String{Value: string(v)}
	case []any:
		arr := &Array{Elements: make([]Object, 0, len(v))}
		for _, el := range v {
			arr.Elements = append(arr.Elements, GoToObject(el))
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		hash := NewHash()
		for _, key := range keys {
			hash.Set(&String{Value: key}, GoToObject(v[key]))
		}
		return hash
	case map[any]any:
		// yaml.v3 produces this shape for non-string keys
		hash := NewHash()
		for key, val := range v {
			if err := hash.Set(GoToObject(key), GoToObject(val)); err != nil {
				return err
			}
		}
		return hash
	default:
		return NewError("cannot convert %T to a value", data)
	}
}

// ObjectToGo converts a runtime value to JSON-shaped Go data. Futures are
// resolved first; functions and classes do not serialize.
func ObjectToGo(obj Object) (any, error) {
	obj = Resolve(obj)

	switch v := obj.(type) {
	case *Null:
		return nil, nil
	case *Boolean:
		return v.Value, nil
	case *Integer:
		return v.Value, nil
	case *Float:
		return v.Value, nil
	case *String:
		return v.Value, nil
	case *Error:
		return nil, fmt.Errorf("%s", v.Message)
	case *Array:
		out := make([]any, 0, len(v.Elements))
		for _, el := range v.Elements {
			converted, err := ObjectToGo(el)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case *Hash:
		out := make(map[string]any, v.Len())
		for _, pair := range v.Pairs() {
			converted, err := ObjectToGo(pair.Value)
			if err != nil {
				return nil, err
			}
			out[pair.Key.Inspect()] = converted
		}
		return out, nil
	case *Instance:
		out := make(map[string]any, len(v.Fields))
		for name, val := range v.Fields {
			converted, err := ObjectToGo(val)
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s does not serialize", obj.Type())
	}
}

// JSONToObject parses a JSON document into a value.
func JSONToObject(src string) Object {
	var data any
	if err := json.Unmarshal([]byte(src), &data); err != nil {
		return NewError("invalid JSON: %v", err)
	}
	return GoToObject(data)
}

// ObjectToJSON renders a value as a compact JSON document.
func ObjectToJSON(obj Object) Object {
	data, err := ObjectToGo(obj)
	if err != nil {
		return NewError("%v", err)
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return NewError("JSON encoding error: %v", err)
	}
	return &String{Value: string(encoded)}
}

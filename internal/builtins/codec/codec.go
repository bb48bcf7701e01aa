// Package codec exposes the serialization builtins. JSON goes through the
// object package's bridge; YAML rides the same bridge with yaml.v3 doing
// the encoding.
package codec

import (
	"gopkg.in/yaml.v3"

	"github.com/solisoft/soli-lang-sub001/internal/object"
)

// Register defines the json_*/yaml_* builtins in env.
func Register(env *object.Environment) {
	builtins := []*object.NativeFunction{
		{Name: "json_parse", Arity: 1, Fn: jsonParse},
		{Name: "json_dump", Arity: 1, Fn: jsonDump},
		{Name: "yaml_parse", Arity: 1, Fn: yamlParse},
		{Name: "yaml_dump", Arity: 1, Fn: yamlDump},
	}
	for _, b := range builtins {
		env.Define(b.Name, b)
	}
}

func jsonParse(args ...object.Object) object.Object {
	src, ok := args[0].(*object.String)
	if !ok {
		return object.NewError("json_parse() expects String, got %s", args[0].Type())
	}
	return object.JSONToObject(src.Value)
}

func jsonDump(args ...object.Object) object.Object {
	return object.ObjectToJSON(args[0])
}

func yamlParse(args ...object.Object) object.Object {
	src, ok := args[0].(*object.String)
	if !ok {
		return object.NewError("yaml_parse() expects String, got %s", args[0].Type())
	}

	var data any
	if err := yaml.Unmarshal([]byte(src.Value), &data); err != nil {
		return object.NewError("invalid yaml: %v", err)
	}
	return object.GoToObject(data)
}

func yamlDump(args ...object.Object) object.Object {
	data, err := object.ObjectToGo(args[0])
	if err != nil {
		return object.NewError("%s", err.Error())
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return object.NewError("cannot serialize %s to yaml", args[0].Type())
	}
	return &object.String{Value: string(out)}
}

package evaluator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solisoft/soli-lang-sub001/internal/object"
)

// registerBuiltins defines the core host functions in the root environment.
// Domain builtins (db, codec) register themselves separately so the
// evaluator stays free of driver imports.
func (e *Evaluator) registerBuiltins(env *object.Environment) {
	builtins := []*object.NativeFunction{
		{Name: "print", Arity: object.Variadic, Fn: e.builtinPrint(false)},
		{Name: "println", Arity: object.Variadic, Fn: e.builtinPrint(true)},
		{Name: "len", Arity: 1, Fn: builtinLen},
		{Name: "str", Arity: 1, Fn: builtinStr},
		{Name: "type", Arity: 1, Fn: builtinType},
		{Name: "await", Arity: 1, Fn: builtinAwait},
		{Name: "await_timeout", Arity: 2, Fn: builtinAwaitTimeout, RawArgs: true},
		{Name: "push", Arity: 2, Fn: builtinPush},
		{Name: "keys", Arity: 1, Fn: builtinKeys},
		{Name: "values", Arity: 1, Fn: builtinValues},
		{Name: "entries", Arity: 1, Fn: builtinEntries},
		{Name: "delete", Arity: 2, Fn: builtinDelete},
		{Name: "first", Arity: 1, Fn: builtinFirst},
		{Name: "last", Arity: 1, Fn: builtinLast},
		{Name: "uuid", Arity: 0, Fn: builtinUUID},
		{Name: "assert", Arity: object.Variadic, Fn: builtinAssert},
		{Name: "assert_eq", Arity: 2, Fn: builtinAssertEq},
		{Name: "sleep", Arity: 1, Fn: builtinSleep},
		{Name: "spawn", Arity: 1, Fn: e.builtinSpawn},
	}

	for _, b := range builtins {
		env.Define(b.Name, b)
	}
}

func (e *Evaluator) builtinPrint(newline bool) object.NativeFn {
	return func(args ...object.Object) object.Object {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = arg.Inspect()
		}
		if newline {
			fmt.Fprintln(e.Out, strings.Join(parts, " "))
		} else {
			fmt.Fprint(e.Out, strings.Join(parts, " "))
		}
		return NULL
	}
}

func builtinLen(args ...object.Object) object.Object {
	switch arg := args[0].(type) {
	case *object.String:
		return &object.Integer{Value: int64(len([]rune(arg.Value)))}
	case *object.Array:
		return &object.Integer{Value: int64(len(arg.Elements))}
	case *object.Hash:
		return &object.Integer{Value: int64(arg.Len())}
	default:
		return object.NewError("len() expects String, Array or Hash, got %s", args[0].Type())
	}
}

func builtinStr(args ...object.Object) object.Object {
	return &object.String{Value: args[0].Inspect()}
}

func builtinType(args ...object.Object) object.Object {
	return &object.String{Value: string(args[0].Type())}
}

// builtinAwait exists for symmetry with the await keyword; native arguments
// arrive already resolved.
func builtinAwait(args ...object.Object) object.Object {
	return object.Resolve(args[0])
}

// builtinAwaitTimeout takes its arguments raw so the future is not
// resolved before the deadline can apply. A non-future first argument
// behaves like await.
func builtinAwaitTimeout(args ...object.Object) object.Object {
	ms, ok := object.Resolve(args[1]).(*object.Integer)
	if !ok {
		return object.NewError("await_timeout() expects Int milliseconds, got %s", args[1].Type())
	}

	fut, ok := args[0].(*object.Future)
	if !ok {
		return object.Resolve(args[0])
	}

	val, done := fut.ResolveTimeout(time.Duration(ms.Value) * time.Millisecond)
	if !done {
		return object.NewError("timed out after %dms", ms.Value)
	}
	return val
}

func builtinPush(args ...object.Object) object.Object {
	arr, ok := args[0].(*object.Array)
	if !ok {
		return object.NewError("push() expects Array, got %s", args[0].Type())
	}
	arr.Elements = append(arr.Elements, args[1])
	return arr
}

func builtinKeys(args ...object.Object) object.Object {
	hash, ok := args[0].(*object.Hash)
	if !ok {
		return object.NewError("keys() expects Hash, got %s", args[0].Type())
	}
	elements := []object.Object{}
	for _, hk := range hash.Keys() {
		elements = append(elements, hk.ToObject())
	}
	return &object.Array{Elements: elements}
}

func builtinValues(args ...object.Object) object.Object {
	hash, ok := args[0].(*object.Hash)
	if !ok {
		return object.NewError("values() expects Hash, got %s", args[0].Type())
	}
	elements := []object.Object{}
	for _, pair := range hash.Pairs() {
		elements = append(elements, pair.Value)
	}
	return &object.Array{Elements: elements}
}

func builtinEntries(args ...object.Object) object.Object {
	hash, ok := args[0].(*object.Hash)
	if !ok {
		return object.NewError("entries() expects Hash, got %s", args[0].Type())
	}
	elements := []object.Object{}
	for _, pair := range hash.Pairs() {
		elements = append(elements, &object.Array{
			Elements: []object.Object{pair.Key, pair.Value},
		})
	}
	return &object.Array{Elements: elements}
}

func builtinDelete(args ...object.Object) object.Object {
	hash, ok := args[0].(*object.Hash)
	if !ok {
		return object.NewError("delete() expects Hash, got %s", args[0].Type())
	}
	if !object.IsHashable(args[1]) {
		return object.NewError("%s cannot be used as a hash key", args[1].Type())
	}
	return object.NativeBoolToBooleanObject(hash.Delete(args[1]))
}

func builtinFirst(args ...object.Object) object.Object {
	arr, ok := args[0].(*object.Array)
	if !ok {
		return object.NewError("first() expects Array, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return NULL
	}
	return arr.Elements[0]
}

func builtinLast(args ...object.Object) object.Object {
	arr, ok := args[0].(*object.Array)
	if !ok {
		return object.NewError("last() expects Array, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return NULL
	}
	return arr.Elements[len(arr.Elements)-1]
}

func builtinUUID(args ...object.Object) object.Object {
	return &object.String{Value: uuid.NewString()}
}

func builtinAssert(args ...object.Object) object.Object {
	if len(args) != 1 && len(args) != 2 {
		return object.NewError("wrong number of arguments. got=%d, want=1 or 2", len(args))
	}
	if object.IsTruthy(args[0]) {
		return NULL
	}
	if len(args) == 2 {
		return object.NewError("assertion failed: %s", args[1].Inspect())
	}
	return object.NewError("assertion failed")
}

func builtinAssertEq(args ...object.Object) object.Object {
	if !object.Equals(args[0], args[1]) {
		return object.NewError("assertion failed: %s != %s", args[0].Inspect(), args[1].Inspect())
	}
	return NULL
}

func builtinSleep(args ...object.Object) object.Object {
	ms, ok := args[0].(*object.Integer)
	if !ok {
		return object.NewError("sleep() expects Int, got %s", args[0].Type())
	}
	time.Sleep(time.Duration(ms.Value) * time.Millisecond)
	return NULL
}

// builtinSpawn runs a zero-argument function on a background goroutine.
// The worker gets its own evaluator and a deep copy of everything the
// closure can reach, taken here on the calling thread; only plain Go
// data crosses back through the future.
func (e *Evaluator) builtinSpawn(args ...object.Object) object.Object {
	fn, ok := args[0].(*object.Function)
	if !ok {
		return object.NewError("spawn() expects Function, got %s", args[0].Type())
	}
	if len(fn.Parameters) != 0 {
		return object.NewError("spawn() expects a zero-argument function")
	}

	task := newSnapshotter().value(fn).(*object.Function)

	out := e.Out
	return object.NewFuture(object.FutureValue, func() (any, error) {
		worker := &Evaluator{Out: out}
		worker.PushEnv(object.NewEnclosedEnvironment(task.Env))

		result := worker.applyFunction(task, nil)
		if err, isErr := result.(*object.Error); isErr {
			return nil, fmt.Errorf("%s", err.Message)
		}
		return object.ObjectToGo(result)
	})
}

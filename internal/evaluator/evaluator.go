package evaluator

import (
	"io"
	"math"
	"os"
	"strings"

	"github.com/solisoft/soli-lang-sub001/internal/ast"
	"github.com/solisoft/soli-lang-sub001/internal/object"
)

var (
	NULL  = object.NULL
	TRUE  = object.TRUE
	FALSE = object.FALSE
)

type Evaluator struct {
	envStack []*object.Environment
	Out      io.Writer
}

// New wires the core builtins into the root environment and makes it the
// bottom of the environment stack.
func New(root *object.Environment) *Evaluator {
	e := &Evaluator{Out: os.Stdout}
	e.PushEnv(root)
	e.registerBuiltins(root)
	return e
}

func (e *Evaluator) PushEnv(env *object.Environment) {
	e.envStack = append(e.envStack, env)
}

func (e *Evaluator) CurrentEnv() *object.Environment {
	if len(e.envStack) == 0 {
		panic("environment stack is empty")
	}
	return e.envStack[len(e.envStack)-1]
}

func (e *Evaluator) PopEnv() {
	if len(e.envStack) == 0 {
		panic("attempted to pop from an empty environment stack")
	}
	e.envStack = e.envStack[:len(e.envStack)-1]
}

func (e *Evaluator) Eval(node ast.Node) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalProgram(node)

	case *ast.BlockStatement:
		return e.evalBlockStatement(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.LetStatement:
		val := e.Eval(node.Value)
		if object.IsError(val) {
			return val
		}
		e.CurrentEnv().Define(node.Name.Value, val)
		return NULL

	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return &object.ReturnValue{Value: NULL}
		}
		val := e.Eval(node.ReturnValue)
		if object.IsError(val) {
			return val
		}
		return &object.ReturnValue{Value: val}

	case *ast.WhileStatement:
		return e.evalWhileStatement(node)

	case *ast.ForInStatement:
		return e.evalForInStatement(node)

	case *ast.ClassStatement:
		return e.evalClassStatement(node, e.CurrentEnv())

	// Expressions
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &object.Float{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.Boolean:
		return object.NativeBoolToBooleanObject(node.Value)

	case *ast.Null:
		return NULL

	case *ast.Identifier:
		return e.evalIdentifier(node)

	case *ast.PrefixExpression:
		right := e.Eval(node.Right)
		if object.IsError(right) {
			return right
		}
		return e.evalPrefixExpression(node.Operator, right)

	case *ast.InfixExpression:
		return e.evalInfixExpression(node)

	case *ast.AssignExpression:
		return e.evalAssignExpression(node)

	case *ast.IfExpression:
		return e.evalIfExpression(node)

	case *ast.FunctionLiteral:
		return &object.Function{
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        e.CurrentEnv(),
		}

	case *ast.CallExpression:
		return e.evalCallExpression(node)

	case *ast.MemberExpression:
		return e.evalMemberExpression(node)

	case *ast.NewExpression:
		return e.evalNewExpression(node)

	case *ast.ThisExpression:
		if this, ok := e.CurrentEnv().Get("this"); ok {
			return this
		}
		return object.NewError("'this' used outside of a method")

	case *ast.SuperExpression:
		return object.NewError("'super' is only valid as a method call")

	case *ast.AwaitExpression:
		val := e.Eval(node.Value)
		if object.IsError(val) {
			return val
		}
		return object.Resolve(val)

	case *ast.ArrayLiteral:
		elements := e.evalExpressions(node.Elements)
		if len(elements) == 1 && object.IsError(elements[0]) {
			return elements[0]
		}
		return &object.Array{Elements: elements}

	case *ast.HashLiteral:
		return e.evalHashLiteral(node)

	case *ast.IndexExpression:
		left := e.Eval(node.Left)
		if object.IsError(left) {
			return left
		}
		index := e.Eval(node.Index)
		if object.IsError(index) {
			return index
		}
		left = object.Resolve(left)
		if object.IsError(left) {
			return left
		}
		index = object.Resolve(index)
		if object.IsError(index) {
			return index
		}
		return e.evalIndexExpression(left, index)
	}

	return NULL
}

func (e *Evaluator) evalProgram(program *ast.Program) object.Object {
	var result object.Object = NULL

	for _, statement := range program.Statements {
		result = e.Eval(statement)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.Error:
			return result
		}
	}

	return result
}

func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement) object.Object {
	var result object.Object = NULL

	e.PushEnv(object.NewEnclosedEnvironment(e.CurrentEnv()))
	defer e.PopEnv()

	for _, statement := range block.Statements {
		result = e.Eval(statement)

		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement) object.Object {
	for {
		condition := object.Resolve(e.Eval(node.Condition))
		if object.IsError(condition) {
			return condition
		}
		if !object.IsTruthy(condition) {
			break
		}

		result := e.Eval(node.Body)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
	return NULL
}

func (e *Evaluator) evalForInStatement(node *ast.ForInStatement) object.Object {
	iterable := object.Resolve(e.Eval(node.Iterable))
	if object.IsError(iterable) {
		return iterable
	}

	var items []object.Object
	switch iter := iterable.(type) {
	case *object.Array:
		items = iter.Elements
	case *object.Hash:
		for _, hk := range iter.Keys() {
			items = append(items, hk.ToObject())
		}
	case *object.String:
		for _, r := range iter.Value {
			items = append(items, &object.String{Value: string(r)})
		}
	default:
		return object.NewError("cannot iterate over %s", iterable.Type())
	}

	for _, item := range items {
		env := object.NewEnclosedEnvironment(e.CurrentEnv())
		env.Define(node.Name.Value, item)

		e.PushEnv(env)
		result := e.Eval(node.Body)
		e.PopEnv()

		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}

	return NULL
}

func (e *Evaluator) evalClassStatement(node *ast.ClassStatement, env *object.Environment) object.Object {
	class, errObj := e.buildClass(node, env)
	if errObj != nil {
		return errObj
	}
	env.Define(node.Name.Value, class)
	return NULL
}

func (e *Evaluator) buildClass(node *ast.ClassStatement, env *object.Environment) (*object.Class, object.Object) {
	var superclass *object.Class
	if node.Superclass != nil {
		val, ok := env.Get(node.Superclass.Value)
		if !ok {
			return nil, object.NewError("identifier not found: %s", node.Superclass.Value)
		}
		sc, ok := val.(*object.Class)
		if !ok {
			return nil, object.NewError("superclass of %s is not a class: %s",
				node.Name.Value, val.Type())
		}
		superclass = sc
	}

	class := object.NewClass(node.Name.Value, superclass)

	for _, field := range node.Fields {
		class.FieldDefaults = append(class.FieldDefaults, object.FieldDefault{
			Name:    field.Name.Value,
			Default: field.Default,
		})
	}

	// static fields initialize once, at declaration time
	for _, field := range node.StaticFields {
		val := object.Object(NULL)
		if field.Default != nil {
			val = e.Eval(field.Default)
			if object.IsError(val) {
				return nil, val
			}
		}
		class.DeclareStaticField(field.Name.Value, val)
	}

	for _, method := range node.Methods {
		fn := &object.Function{
			Parameters: method.Function.Parameters,
			Body:       method.Function.Body,
			Env:        env,
			Class:      class,
		}
		if method.IsStatic {
			class.StaticMethods[method.Name.Value] = fn
		} else {
			class.Methods[method.Name.Value] = fn
		}
	}

	if node.Constructor != nil {
		class.Constructor = &object.Function{
			Parameters: node.Constructor.Parameters,
			Body:       node.Constructor.Body,
			Env:        env,
			Class:      class,
		}
	}

	for _, nested := range node.Nested {
		inner, errObj := e.buildClass(nested, env)
		if errObj != nil {
			return nil, errObj
		}
		class.NestedClasses[nested.Name.Value] = inner
	}

	return class, nil
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier) object.Object {
	if val, ok := e.CurrentEnv().Get(node.Value); ok {
		return val
	}
	return object.NewError("identifier not found: %s", node.Value)
}

func (e *Evaluator) evalPrefixExpression(operator string, right object.Object) object.Object {
	right = object.Resolve(right)
	if object.IsError(right) {
		return right
	}
	switch operator {
	case "!":
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right))
	case "-":
		switch right := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -right.Value}
		case *object.Float:
			return &object.Float{Value: -right.Value}
		default:
			return object.NewError("unknown operator: -%s", right.Type())
		}
	default:
		return object.NewError("unknown operator: %s%s", operator, right.Type())
	}
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression) object.Object {
	left := object.Resolve(e.Eval(node.Left))
	if object.IsError(left) {
		return left
	}

	// && and || short-circuit on the left operand's truthiness
	switch node.Operator {
	case "&&":
		if !object.IsTruthy(left) {
			return FALSE
		}
		right := object.Resolve(e.Eval(node.Right))
		if object.IsError(right) {
			return right
		}
		return object.NativeBoolToBooleanObject(object.IsTruthy(right))
	case "||":
		if object.IsTruthy(left) {
			return TRUE
		}
		right := object.Resolve(e.Eval(node.Right))
		if object.IsError(right) {
			return right
		}
		return object.NativeBoolToBooleanObject(object.IsTruthy(right))
	}

	right := object.Resolve(e.Eval(node.Right))
	if object.IsError(right) {
		return right
	}

	return e.evalBinaryOperator(node.Operator, left, right)
}

func (e *Evaluator) evalBinaryOperator(operator string, left, right object.Object) object.Object {
	switch {
	case operator == "==":
		return object.NativeBoolToBooleanObject(object.Equals(left, right))
	case operator == "!=":
		return object.NativeBoolToBooleanObject(!object.Equals(left, right))

	case left.Type() == object.INT_OBJ && right.Type() == object.INT_OBJ:
		return e.evalIntegerInfixExpression(operator, left.(*object.Integer), right.(*object.Integer))

	case isNumeric(left) && isNumeric(right):
		return e.evalFloatInfixExpression(operator, floatValue(left), floatValue(right))

	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return e.evalStringInfixExpression(operator, left.(*object.String), right.(*object.String))

	case left.Type() == object.STRING_OBJ && operator == "+":
		return &object.String{Value: left.(*object.String).Value + inspect(right)}

	case operator == "+" && left.Type() == object.ARRAY_OBJ && right.Type() == object.ARRAY_OBJ:
		l := left.(*object.Array)
		r := right.(*object.Array)
		elements := make([]object.Object, 0, len(l.Elements)+len(r.Elements))
		elements = append(elements, l.Elements...)
		elements = append(elements, r.Elements...)
		return &object.Array{Elements: elements}

	case operator == "*" && left.Type() == object.STRING_OBJ && right.Type() == object.INT_OBJ:
		n := right.(*object.Integer).Value
		if n < 0 {
			return object.NewError("cannot repeat a string a negative number of times")
		}
		return &object.String{Value: strings.Repeat(left.(*object.String).Value, int(n))}

	case left.Type() != right.Type():
		return object.NewError("type mismatch: %s %s %s", left.Type(), operator, right.Type())

	default:
		return object.NewError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalIntegerInfixExpression(operator string, left, right *object.Integer) object.Object {
	switch operator {
	case "+":
		return &object.Integer{Value: left.Value + right.Value}
	case "-":
		return &object.Integer{Value: left.Value - right.Value}
	case "*":
		return &object.Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return object.NewError("division by zero")
		}
		return &object.Integer{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return object.NewError("division by zero")
		}
		return &object.Integer{Value: left.Value % right.Value}
	case "<":
		return object.NativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return object.NativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return object.NativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return object.NativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return object.NewError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalFloatInfixExpression(operator string, left, right float64) object.Object {
	switch operator {
	case "+":
		return &object.Float{Value: left + right}
	case "-":
		return &object.Float{Value: left - right}
	case "*":
		return &object.Float{Value: left * right}
	case "/":
		if right == 0 {
			return object.NewError("division by zero")
		}
		return &object.Float{Value: left / right}
	case "%":
		return &object.Float{Value: math.Mod(left, right)}
	case "<":
		return object.NativeBoolToBooleanObject(left < right)
	case "<=":
		return object.NativeBoolToBooleanObject(left <= right)
	case ">":
		return object.NativeBoolToBooleanObject(left > right)
	case ">=":
		return object.NativeBoolToBooleanObject(left >= right)
	default:
		return object.NewError("unknown operator: Float %s Float", operator)
	}
}

func (e *Evaluator) evalStringInfixExpression(operator string, left, right *object.String) object.Object {
	switch operator {
	case "+":
		return &object.String{Value: left.Value + right.Value}
	case "<":
		return object.NativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return object.NativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return object.NativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return object.NativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return object.NewError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression) object.Object {
	val := e.Eval(node.Value)
	if object.IsError(val) {
		return val
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		if !e.CurrentEnv().Assign(target.Value, val) {
			return object.NewError("identifier not found: %s", target.Value)
		}
		return val

	case *ast.MemberExpression:
		obj := object.Resolve(e.Eval(target.Object))
		if object.IsError(obj) {
			return obj
		}
		switch obj := obj.(type) {
		case *object.Instance:
			obj.SetField(target.Property.Value, val)
			return val
		case *object.Class:
			obj.SetStaticField(target.Property.Value, val)
			return val
		case *object.Hash:
			if errObj := obj.Set(&object.String{Value: target.Property.Value}, val); errObj != nil {
				return errObj
			}
			return val
		default:
			return object.NewError("cannot assign member on %s", obj.Type())
		}

	case *ast.IndexExpression:
		left := object.Resolve(e.Eval(target.Left))
		if object.IsError(left) {
			return left
		}
		index := object.Resolve(e.Eval(target.Index))
		if object.IsError(index) {
			return index
		}
		switch left := left.(type) {
		case *object.Array:
			idx, ok := index.(*object.Integer)
			if !ok {
				return object.NewError("array index must be Int, got %s", index.Type())
			}
			if idx.Value < 0 || idx.Value >= int64(len(left.Elements)) {
				return object.NewError("index out of range: %d", idx.Value)
			}
			left.Elements[idx.Value] = val
			return val
		case *object.Hash:
			if errObj := left.Set(index, val); errObj != nil {
				return errObj
			}
			return val
		default:
			return object.NewError("index assignment not supported on %s", left.Type())
		}
	}

	return object.NewError("invalid assignment target")
}

func (e *Evaluator) evalIfExpression(node *ast.IfExpression) object.Object {
	condition := object.Resolve(e.Eval(node.Condition))
	if object.IsError(condition) {
		return condition
	}

	if object.IsTruthy(condition) {
		return e.Eval(node.Consequence)
	} else if node.Alternative != nil {
		return e.Eval(node.Alternative)
	}
	return NULL
}

func (e *Evaluator) evalExpressions(exps []ast.Expression) []object.Object {
	var result []object.Object

	for _, exp := range exps {
		evaluated := e.Eval(exp)
		if object.IsError(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression) object.Object {
	// super.m(...) and obj.m(...) dispatch with an explicit receiver
	switch fn := node.Function.(type) {
	case *ast.SuperExpression:
		return e.evalSuperCall(fn, node.Arguments)
	case *ast.MemberExpression:
		return e.evalMethodCall(fn, node.Arguments)
	}

	function := object.Resolve(e.Eval(node.Function))
	if object.IsError(function) {
		return function
	}

	args := e.evalExpressions(node.Arguments)
	if len(args) == 1 && object.IsError(args[0]) {
		return args[0]
	}

	return e.applyFunction(function, args)
}

func (e *Evaluator) evalMethodCall(member *ast.MemberExpression, arguments []ast.Expression) object.Object {
	receiver := object.Resolve(e.Eval(member.Object))
	if object.IsError(receiver) {
		return receiver
	}

	args := e.evalExpressions(arguments)
	if len(args) == 1 && object.IsError(args[0]) {
		return args[0]
	}

	name := member.Property.Value

	switch receiver := receiver.(type) {
	case *object.Instance:
		// fields holding callables are dispatched like methods
		if field, ok := receiver.GetField(name); ok {
			switch field.(type) {
			case *object.Function, *object.NativeFunction:
				return e.applyFunction(field, args)
			}
		}
		method, ok := receiver.Class.ResolveMethod(name)
		if !ok {
			return object.NewError("undefined method %s for %s", name, receiver.Class.Name)
		}
		return e.invokeMethod(method, receiver, args)

	case *object.Class:
		if method, ok := receiver.ResolveStaticMethod(name); ok {
			return e.invokeMethod(method, receiver, args)
		}
		if field, ok := receiver.GetStaticField(name); ok {
			switch field.(type) {
			case *object.Function, *object.NativeFunction:
				return e.applyFunction(field, args)
			}
		}
		return object.NewError("undefined static method %s for %s", name, receiver.Name)

	default:
		callee := object.Resolve(e.resolveMember(receiver, name))
		if object.IsError(callee) {
			return callee
		}
		return e.applyFunction(callee, args)
	}
}

// invokeMethod binds the receiver before applying: user methods see it as
// `this`, native methods receive it as args[0].
func (e *Evaluator) invokeMethod(method object.Object, receiver object.Object, args []object.Object) object.Object {
	switch method := method.(type) {
	case *object.Function:
		return e.applyMethod(method, receiver, args)
	case *object.NativeFunction:
		nativeArgs := append([]object.Object{receiver}, args...)
		return e.applyNative(method, nativeArgs)
	default:
		return object.NewError("not a function: %s", method.Type())
	}
}

func (e *Evaluator) evalSuperCall(sup *ast.SuperExpression, arguments []ast.Expression) object.Object {
	this, ok := e.CurrentEnv().Get("this")
	if !ok {
		return object.NewError("'super' used outside of a method")
	}
	receiver, ok := this.(*object.Instance)
	if !ok {
		return object.NewError("'super' used outside of a method")
	}

	definer, ok := e.CurrentEnv().Get("__class__")
	if !ok {
		return object.NewError("'super' used outside of a method")
	}
	class, ok := definer.(*object.Class)
	if !ok || class.Superclass == nil {
		return object.NewError("'super' used in a class with no superclass")
	}

	method, ok := class.Superclass.ResolveMethod(sup.Method.Value)
	if !ok {
		return object.NewError("undefined method %s for %s", sup.Method.Value, class.Superclass.Name)
	}

	args := e.evalExpressions(arguments)
	if len(args) == 1 && object.IsError(args[0]) {
		return args[0]
	}

	return e.invokeMethod(method, receiver, args)
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression) object.Object {
	obj := object.Resolve(e.Eval(node.Object))
	if object.IsError(obj) {
		return obj
	}
	return e.resolveMember(obj, node.Property.Value)
}

func (e *Evaluator) resolveMember(obj object.Object, name string) object.Object {
	switch obj := obj.(type) {
	case *object.Instance:
		if val, ok := obj.GetField(name); ok {
			return val
		}
		if method, ok := obj.Class.ResolveMethod(name); ok {
			return e.bindMethod(method, obj)
		}
		return object.NewError("undefined property %s for %s", name, obj.Class.Name)

	case *object.Class:
		if val, ok := obj.GetStaticField(name); ok {
			return val
		}
		if method, ok := obj.ResolveStaticMethod(name); ok {
			return e.bindMethod(method, obj)
		}
		if nested, ok := obj.NestedClasses[name]; ok {
			return nested
		}
		return object.NewError("undefined static member %s for %s", name, obj.Name)

	case *object.Hash:
		if val, ok := obj.Get(&object.String{Value: name}); ok {
			return val
		}
		return NULL

	default:
		return object.NewError("member access not supported on %s", obj.Type())
	}
}

// bindMethod packages a resolved method with its receiver so it can be
// passed around as a first-class value.
func (e *Evaluator) bindMethod(method object.Object, receiver object.Object) object.Object {
	switch method := method.(type) {
	case *object.Function:
		return &boundMethod{fn: method, receiver: receiver}
	case *object.NativeFunction:
		bound := &object.NativeFunction{
			Name:  method.Name,
			Arity: arityWithoutReceiver(method.Arity),
			Fn: func(args ...object.Object) object.Object {
				return method.Fn(append([]object.Object{receiver}, args...)...)
			},
		}
		return bound
	default:
		return object.NewError("not a function: %s", method.Type())
	}
}

func arityWithoutReceiver(arity int) int {
	if arity == object.Variadic {
		return object.Variadic
	}
	return arity - 1
}

// boundMethod is evaluator-internal: it only ever flows into applyFunction.
type boundMethod struct {
	fn       *object.Function
	receiver object.Object
}

func (bm *boundMethod) Type() object.ObjectType { return object.FUNCTION_OBJ }
func (bm *boundMethod) Inspect() string         { return bm.fn.Inspect() }

func (e *Evaluator) evalNewExpression(node *ast.NewExpression) object.Object {
	val := object.Resolve(e.Eval(node.Class))
	if object.IsError(val) {
		return val
	}
	class, ok := val.(*object.Class)
	if !ok {
		return object.NewError("cannot instantiate %s", val.Type())
	}

	args := e.evalExpressions(node.Arguments)
	if len(args) == 1 && object.IsError(args[0]) {
		return args[0]
	}

	instance := object.NewInstance(class)

	// field defaults evaluate superclass-first so subclasses can override
	if errObj := e.initFields(class, instance); errObj != nil {
		return errObj
	}

	if ctor := e.findConstructor(class); ctor != nil {
		result := e.applyMethod(ctor, instance, args)
		if object.IsError(result) {
			return result
		}
	} else if len(args) != 0 {
		return object.NewError("wrong number of arguments. got=%d, want=0", len(args))
	}

	return instance
}

func (e *Evaluator) initFields(class *object.Class, instance *object.Instance) object.Object {
	if class == nil {
		return nil
	}
	if errObj := e.initFields(class.Superclass, instance); errObj != nil {
		return errObj
	}
	for _, field := range class.FieldDefaults {
		val := object.Object(NULL)
		if field.Default != nil {
			val = e.Eval(field.Default)
			if object.IsError(val) {
				return val
			}
		}
		instance.SetField(field.Name, val)
	}
	return nil
}

func (e *Evaluator) findConstructor(class *object.Class) *object.Function {
	for c := class; c != nil; c = c.Superclass {
		if c.Constructor != nil {
			return c.Constructor
		}
	}
	return nil
}

func (e *Evaluator) applyFunction(fnObj object.Object, args []object.Object) object.Object {
	switch fn := fnObj.(type) {
	case *object.Function:
		if len(args) != len(fn.Parameters) {
			return object.NewError("wrong number of arguments. got=%d, want=%d",
				len(args), len(fn.Parameters))
		}
		extendedEnv := e.extendFunctionEnv(fn, args)
		e.PushEnv(extendedEnv)
		evaluated := e.Eval(fn.Body)
		e.PopEnv()
		return unwrapReturnValue(evaluated)

	case *boundMethod:
		return e.applyMethod(fn.fn, fn.receiver, args)

	case *object.NativeFunction:
		return e.applyNative(fn, args)

	default:
		return object.NewError("not a function: %s", fnObj.Type())
	}
}

// applyMethod runs fn with the receiver bound as `this` and the defining
// class recorded for super dispatch.
func (e *Evaluator) applyMethod(fn *object.Function, receiver object.Object, args []object.Object) object.Object {
	if len(args) != len(fn.Parameters) {
		return object.NewError("wrong number of arguments. got=%d, want=%d",
			len(args), len(fn.Parameters))
	}

	env := e.extendFunctionEnv(fn, args)
	env.Define("this", receiver)
	if fn.Class != nil {
		env.Define("__class__", fn.Class)
	}

	e.PushEnv(env)
	evaluated := e.Eval(fn.Body)
	e.PopEnv()
	return unwrapReturnValue(evaluated)
}

// applyNative checks arity, resolves future arguments, then hands off to
// the host closure. RawArgs natives receive futures unresolved.
func (e *Evaluator) applyNative(fn *object.NativeFunction, args []object.Object) object.Object {
	if fn.Arity != object.Variadic && len(args) != fn.Arity {
		return object.NewError("wrong number of arguments. got=%d, want=%d", len(args), fn.Arity)
	}
	if fn.RawArgs {
		return fn.Fn(args...)
	}
	resolved := make([]object.Object, len(args))
	for i, arg := range args {
		resolved[i] = object.Resolve(arg)
		if object.IsError(resolved[i]) {
			return resolved[i]
		}
	}
	return fn.Fn(resolved...)
}

func (e *Evaluator) extendFunctionEnv(fn *object.Function, args []object.Object) *object.Environment {
	env := object.NewEnclosedEnvironment(fn.Env)

	for paramIdx, param := range fn.Parameters {
		env.Define(param.Value, args[paramIdx])
	}

	return env
}

func unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func (e *Evaluator) evalHashLiteral(node *ast.HashLiteral) object.Object {
	hash := object.NewHash()

	for i, keyNode := range node.Keys {
		key := object.Resolve(e.Eval(keyNode))
		if object.IsError(key) {
			return key
		}

		value := e.Eval(node.Values[i])
		if object.IsError(value) {
			return value
		}

		if errObj := hash.Set(key, value); errObj != nil {
			return errObj
		}
	}

	return hash
}

func (e *Evaluator) evalIndexExpression(left, index object.Object) object.Object {
	switch {
	case left.Type() == object.ARRAY_OBJ && index.Type() == object.INT_OBJ:
		return e.evalArrayIndexExpression(left.(*object.Array), index.(*object.Integer))
	case left.Type() == object.HASH_OBJ:
		return e.evalHashIndexExpression(left.(*object.Hash), index)
	case left.Type() == object.STRING_OBJ && index.Type() == object.INT_OBJ:
		return e.evalStringIndexExpression(left.(*object.String), index.(*object.Integer))
	default:
		return object.NewError("index operator not supported: %s[%s]", left.Type(), index.Type())
	}
}

func (e *Evaluator) evalArrayIndexExpression(array *object.Array, index *object.Integer) object.Object {
	idx := index.Value
	max := int64(len(array.Elements) - 1)

	if idx < 0 || idx > max {
		return NULL
	}

	return array.Elements[idx]
}

func (e *Evaluator) evalHashIndexExpression(hash *object.Hash, index object.Object) object.Object {
	if !object.IsHashable(index) {
		return object.NewError("%s cannot be used as a hash key", index.Type())
	}
	if val, ok := hash.Get(index); ok {
		return val
	}
	return NULL
}

func (e *Evaluator) evalStringIndexExpression(str *object.String, index *object.Integer) object.Object {
	runes := []rune(str.Value)
	idx := index.Value
	if idx < 0 || idx >= int64(len(runes)) {
		return NULL
	}
	return &object.String{Value: string(runes[idx])}
}

func isNumeric(obj object.Object) bool {
	t := obj.Type()
	return t == object.INT_OBJ || t == object.FLOAT_OBJ
}

func floatValue(obj object.Object) float64 {
	switch obj := obj.(type) {
	case *object.Integer:
		return float64(obj.Value)
	case *object.Float:
		return obj.Value
	}
	return 0
}

func inspect(obj object.Object) string {
	return object.Resolve(obj).Inspect()
}

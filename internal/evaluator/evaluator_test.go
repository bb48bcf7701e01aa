package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/solisoft/soli-lang-sub001/internal/lexer"
	"github.com/solisoft/soli-lang-sub001/internal/object"
	"github.com/solisoft/soli-lang-sub001/internal/parser"
)

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	result, _ := testEvalWithOutput(t, input)
	return result
}

func testEvalWithOutput(t *testing.T, input string) (object.Object, string) {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l, input)
	program := p.ParseProgram()

	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	var out bytes.Buffer
	e := New(object.NewEnvironment())
	e.Out = &out

	return e.Eval(program), out.String()
}

func testIntegerObject(t *testing.T, obj object.Object, expected int64) {
	t.Helper()
	result, ok := obj.(*object.Integer)
	if !ok {
		t.Errorf("object is not Integer. got=%T (%+v)", obj, obj)
		return
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%d, want=%d", result.Value, expected)
	}
}

func testBooleanObject(t *testing.T, obj object.Object, expected bool) {
	t.Helper()
	result, ok := obj.(*object.Boolean)
	if !ok {
		t.Errorf("object is not Boolean. got=%T (%+v)", obj, obj)
		return
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%t, want=%t", result.Value, expected)
	}
}

func testStringObject(t *testing.T, obj object.Object, expected string) {
	t.Helper()
	result, ok := obj.(*object.String)
	if !ok {
		t.Errorf("object is not String. got=%T (%+v)", obj, obj)
		return
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%q, want=%q", result.Value, expected)
	}
}

func testErrorObject(t *testing.T, obj object.Object, expected string) {
	t.Helper()
	errObj, ok := obj.(*object.Error)
	if !ok {
		t.Errorf("no error object returned. got=%T (%+v)", obj, obj)
		return
	}
	if errObj.Message != expected {
		t.Errorf("wrong error message. got=%q, want=%q", errObj.Message, expected)
	}
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"-5", -5},
		{"5 + 5 + 5 - 10", 5},
		{"2 * 2 * 2", 8},
		{"50 / 2 * 2 + 10", 60},
		{"7 % 3", 1},
		{"3 * (3 + 1)", 12},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestFloatArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1.5 + 2.5", 4.0},
		{"1 + 0.5", 1.5},
		{"10 / 4.0", 2.5},
		{"-1.5", -1.5},
	}

	for _, tt := range tests {
		result, ok := testEval(t, tt.input).(*object.Float)
		if !ok {
			t.Fatalf("input %q: object is not Float", tt.input)
		}
		if result.Value != tt.expected {
			t.Errorf("input %q: got=%v, want=%v", tt.input, result.Value, tt.expected)
		}
	}
}

func TestBooleanExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"1 < 2", true},
		{"1 >= 1", true},
		{"1 == 2", false},
		{"1 != 2", true},
		{"1 == 1.0", true},
		{"\"a\" == \"a\"", true},
		{"[1, 2] == [1, 2]", true},
		{"[1, 2] == [2, 1]", false},
		{"!false", true},
		{"!0", false},
		{"!\"\"", false},
		{"true && false", false},
		{"true || false", true},
		{"null || true", true},
		{"\"abc\" < \"abd\"", true},
	}

	for _, tt := range tests {
		testBooleanObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestShortCircuit(t *testing.T) {
	// the right side would blow up if it were evaluated
	testBooleanObject(t, testEval(t, `false && missing`), false)
	testBooleanObject(t, testEval(t, `true || missing`), true)
}

func TestStringOperations(t *testing.T) {
	testStringObject(t, testEval(t, `"hello" + " " + "world"`), "hello world")
	testStringObject(t, testEval(t, `"count: " + 3`), "count: 3")
	testStringObject(t, testEval(t, `"ab" * 3`), "ababab")
	testStringObject(t, testEval(t, `"héllo"[1]`), "é")
	testIntegerObject(t, testEval(t, `len("héllo")`), 5)
}

func TestIfElseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"if true { 10 }", 10},
		{"if false { 10 }", nil},
		{"if 0 { 10 }", 10}, // zero is truthy
		{"if 1 < 2 { 10 } else { 20 }", 10},
		{"if 1 > 2 { 10 } else { 20 }", 20},
		{"if false { 1 } else if false { 2 } else { 3 }", 3},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		if expected, ok := tt.expected.(int); ok {
			testIntegerObject(t, evaluated, int64(expected))
		} else if evaluated != NULL {
			t.Errorf("input %q: object is not NULL. got=%T", tt.input, evaluated)
		}
	}
}

func TestLetAndAssign(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5; a", 5},
		{"let a = 5; a = 10; a", 10},
		{"let a = 1; let b = fn() { a = 2 }; b(); a", 2},
		{"let a = [1, 2]; a[0] = 9; a[0]", 9},
		{`let h = {"x": 1}; h["x"] = 2; h["x"]`, 2},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestAssignUnboundIsError(t *testing.T) {
	testErrorObject(t, testEval(t, `missing = 1`), "identifier not found: missing")
}

func TestWhileLoop(t *testing.T) {
	input := `
let i = 0
let total = 0
while i < 5 {
	total = total + i
	i = i + 1
}
total`
	testIntegerObject(t, testEval(t, input), 10)
}

func TestForInLoops(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{`let total = 0; for x in [1, 2, 3] { total = total + x } total`, 6},
		{`let n = 0; for c in "abcd" { n = n + 1 } n`, 4},
		{`let h = {"a": 1, "b": 2}; let total = 0; for k in h { total = total + h[k] } total`, 3},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestFunctionsAndClosures(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let identity = fn(x) { x }; identity(5)", 5},
		{"let add = fn(a, b) { return a + b; }; add(2, 3)", 5},
		{`
let makeCounter = fn() {
	let n = 0
	fn() { n = n + 1; n }
}
let c = makeCounter()
c()
c()
c()`, 3},
		{`
let fib = fn(n) {
	if n < 2 { return n }
	fib(n - 1) + fib(n - 2)
}
fib(10)`, 55},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestFunctionArity(t *testing.T) {
	testErrorObject(t, testEval(t, `let f = fn(a, b) { a }; f(1)`),
		"wrong number of arguments. got=1, want=2")
}

func TestArrays(t *testing.T) {
	testIntegerObject(t, testEval(t, `[1, 2 * 2, 3 + 3][1]`), 4)
	testIntegerObject(t, testEval(t, `len([1, 2, 3])`), 3)
	testIntegerObject(t, testEval(t, `first([7, 8])`), 7)
	testIntegerObject(t, testEval(t, `last([7, 8])`), 8)
	testIntegerObject(t, testEval(t, `let a = [1]; push(a, 2); a[1]`), 2)
	testIntegerObject(t, testEval(t, `len([1] + [2, 3])`), 3)

	if testEval(t, `[1, 2][5]`) != NULL {
		t.Errorf("out-of-range index should be null")
	}
	if testEval(t, `[1, 2][-1]`) != NULL {
		t.Errorf("negative index should be null")
	}
}

func TestHashes(t *testing.T) {
	testIntegerObject(t, testEval(t, `{"a": 1, "b": 2}["b"]`), 2)
	testIntegerObject(t, testEval(t, `{1: "one", true: 2}[true]`), 2)
	testIntegerObject(t, testEval(t, `len({"a": 1})`), 1)

	if testEval(t, `{"a": 1}["missing"]`) != NULL {
		t.Errorf("missing key should be null")
	}
}

func TestHashInsertionOrderObservable(t *testing.T) {
	evaluated := testEval(t, `keys({"b": 1, "a": 2, "c": 3})`)
	arr, ok := evaluated.(*object.Array)
	if !ok {
		t.Fatalf("keys() did not return an array. got=%T", evaluated)
	}

	got := []string{}
	for _, el := range arr.Elements {
		got = append(got, el.Inspect())
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key order = %v, want %v", got, want)
		}
	}
}

func TestHashDeleteThenReinsert(t *testing.T) {
	input := `
let h = {"a": 1, "b": 2}
delete(h, "a")
h["a"] = 3
keys(h)`
	arr := testEval(t, input).(*object.Array)

	if len(arr.Elements) != 2 {
		t.Fatalf("hash has %d keys, want 2", len(arr.Elements))
	}
	if arr.Elements[0].Inspect() != "b" || arr.Elements[1].Inspect() != "a" {
		t.Errorf("reinserted key should move to the end. got=[%s, %s]",
			arr.Elements[0].Inspect(), arr.Elements[1].Inspect())
	}
}

func TestHashUpdateKeepsPosition(t *testing.T) {
	arr := testEval(t, `let h = {"a": 1, "b": 2}; h["a"] = 9; keys(h)`).(*object.Array)
	if arr.Elements[0].Inspect() != "a" {
		t.Errorf("updated key should keep its position. got first=%s", arr.Elements[0].Inspect())
	}
}

func TestUnhashableKeys(t *testing.T) {
	testErrorObject(t, testEval(t, `{[1, 2]: "x"}`), "Array cannot be used as a hash key")
	testErrorObject(t, testEval(t, `let h = {}; h[[1]] = 1`), "Array cannot be used as a hash key")
	testErrorObject(t, testEval(t, `{}[{}]`), "Hash cannot be used as a hash key")
}

func TestHashEntriesAndValues(t *testing.T) {
	arr := testEval(t, `values({"a": 1, "b": 2})`).(*object.Array)
	testIntegerObject(t, arr.Elements[0], 1)
	testIntegerObject(t, arr.Elements[1], 2)

	pairs := testEval(t, `entries({"a": 1})`).(*object.Array)
	pair := pairs.Elements[0].(*object.Array)
	testStringObject(t, pair.Elements[0], "a")
	testIntegerObject(t, pair.Elements[1], 1)
}

func TestClassBasics(t *testing.T) {
	input := `
class Point {
	x = 0
	y = 0

	constructor(x, y) {
		this.x = x
		this.y = y
	}

	sum() {
		return this.x + this.y
	}
}

let p = new Point(3, 4)
p.sum()`
	testIntegerObject(t, testEval(t, input), 7)
}

func TestClassFieldDefaults(t *testing.T) {
	input := `
class Config {
	retries = 3
	name
}
let c = new Config()
c.retries`
	testIntegerObject(t, testEval(t, input), 3)

	input2 := `
class Config {
	name
}
let c = new Config()
c.name`
	if testEval(t, input2) != NULL {
		t.Errorf("field without default should be null")
	}
}

func TestClassInheritanceAndSuper(t *testing.T) {
	input := `
class Animal {
	constructor(name) {
		this.name = name
	}

	speak() {
		return this.name + " makes a sound"
	}
}

class Dog < Animal {
	speak() {
		return super.speak() + ": woof"
	}
}

let d = new Dog("rex")
d.speak()`
	testStringObject(t, testEval(t, input), "rex makes a sound: woof")
}

func TestInheritedConstructor(t *testing.T) {
	input := `
class Base {
	constructor(v) { this.v = v }
}
class Child < Base {}
let c = new Child(42)
c.v`
	testIntegerObject(t, testEval(t, input), 42)
}

func TestMethodOverrideWalksChain(t *testing.T) {
	input := `
class A { m() { return 1 } }
class B < A {}
class C < B { m() { return 3 } }
let b = new B()
let c = new C()
b.m() + c.m()`
	testIntegerObject(t, testEval(t, input), 4)
}

func TestStaticFieldsSharedAcrossHierarchy(t *testing.T) {
	input := `
class Counter {
	static count = 0

	constructor() {
		Counter.count = Counter.count + 1
	}
}

class LoudCounter < Counter {}

new Counter()
new LoudCounter()
new LoudCounter()
LoudCounter.count`
	testIntegerObject(t, testEval(t, input), 3)
}

func TestStaticMethods(t *testing.T) {
	input := `
class MathUtil {
	static double(x) { return x * 2 }
}
MathUtil.double(21)`
	testIntegerObject(t, testEval(t, input), 42)
}

func TestNestedClasses(t *testing.T) {
	input := `
class Outer {
	class Inner {
		value = 7
	}
}
let i = new Outer.Inner()
i.value`
	testIntegerObject(t, testEval(t, input), 7)
}

func TestBoundMethodAsValue(t *testing.T) {
	input := `
class Greeter {
	constructor(name) { this.name = name }
	greet() { return "hi " + this.name }
}
let g = new Greeter("ana")
let f = g.greet
f()`
	testStringObject(t, testEval(t, input), "hi ana")
}

func TestConstructorArity(t *testing.T) {
	input := `
class P {
	constructor(a, b) {}
}
new P(1)`
	testErrorObject(t, testEval(t, input), "wrong number of arguments. got=1, want=2")
}

func TestUndefinedMethod(t *testing.T) {
	input := `
class Empty {}
let e = new Empty()
e.nope()`
	testErrorObject(t, testEval(t, input), "undefined method nope for Empty")
}

func TestSpawnAndAwait(t *testing.T) {
	testIntegerObject(t, testEval(t, `await spawn(fn() { 40 + 2 })`), 42)
}

func TestFutureResolvesOnce(t *testing.T) {
	input := `
let f = spawn(fn() { 7 })
let a = await f
let b = await f
a + b`
	testIntegerObject(t, testEval(t, input), 14)
}

func TestFutureImplicitResolution(t *testing.T) {
	// binary operators resolve future operands without an explicit await
	testIntegerObject(t, testEval(t, `spawn(fn() { 20 }) + 22`), 42)
	testIntegerObject(t, testEval(t, `len(spawn(fn() { "abc" }))`), 3)
}

func TestSpawnFailurePropagates(t *testing.T) {
	evaluated := testEval(t, `await spawn(fn() { missing })`)
	errObj, ok := evaluated.(*object.Error)
	if !ok {
		t.Fatalf("expected error, got %T", evaluated)
	}
	if !strings.Contains(errObj.Message, "identifier not found: missing") {
		t.Errorf("unexpected error message: %q", errObj.Message)
	}
}

func TestAwaitNonFuture(t *testing.T) {
	testIntegerObject(t, testEval(t, `await 5`), 5)
}

func TestFailedFuturePropagates(t *testing.T) {
	// every implicit-await site must surface the worker's error untouched
	tests := []string{
		`spawn(fn() { missing }) + 1`,
		`1 + spawn(fn() { missing })`,
		`-spawn(fn() { missing })`,
		`!spawn(fn() { missing })`,
		`if spawn(fn() { missing }) { 1 } else { 2 }`,
		`while spawn(fn() { missing }) { 1 }`,
		`spawn(fn() { missing })[0]`,
		`[1, 2][spawn(fn() { missing })]`,
		`str(spawn(fn() { missing }))`,
		`spawn(fn() { missing })()`,
	}

	for _, input := range tests {
		testErrorObject(t, testEval(t, input), "identifier not found: missing")
	}
}

func TestFailedFutureConditionNotTruthy(t *testing.T) {
	_, out := testEvalWithOutput(t, `
if spawn(fn() { missing }) { println("taken") }
`)
	if strings.Contains(out, "taken") {
		t.Errorf("failed future must not satisfy a condition. out=%q", out)
	}
}

func TestSpawnSnapshotsCapturedState(t *testing.T) {
	// the worker sees a copy taken at spawn time; neither side observes
	// the other's mutations
	input := `
let a = [1]
let f = spawn(fn() { push(a, 2); len(a) })
push(a, 3)
let worker = await f;
[worker, len(a)]`
	evaluated := testEval(t, input)
	arr, ok := evaluated.(*object.Array)
	if !ok {
		t.Fatalf("expected array, got %T (%+v)", evaluated, evaluated)
	}
	testIntegerObject(t, arr.Elements[0], 2)
	testIntegerObject(t, arr.Elements[1], 2)
}

func TestSpawnSnapshotsHash(t *testing.T) {
	input := `
let h = {"n": 1}
let f = spawn(fn() { h["n"] })
h["n"] = 99
await f`
	testIntegerObject(t, testEval(t, input), 1)
}

func TestSpawnCapturedFunctionCallable(t *testing.T) {
	input := `
let add = fn(x) { x + 1 }
await spawn(fn() { add(41) })`
	testIntegerObject(t, testEval(t, input), 42)
}

func TestSpawnCapturedInstance(t *testing.T) {
	input := `
class Counter {
	n = 0
	bump() { this.n = this.n + 1; this.n }
}
let c = new Counter()
let f = spawn(fn() { c.bump() })
c.bump()
c.bump()
let worker = await f;
[worker, c.n]`
	evaluated := testEval(t, input)
	arr, ok := evaluated.(*object.Array)
	if !ok {
		t.Fatalf("expected array, got %T (%+v)", evaluated, evaluated)
	}
	testIntegerObject(t, arr.Elements[0], 1)
	testIntegerObject(t, arr.Elements[1], 2)
}

func TestAwaitTimeoutExpires(t *testing.T) {
	evaluated := testEval(t, `await_timeout(spawn(fn() { sleep(200); 7 }), 1)`)
	testErrorObject(t, evaluated, "timed out after 1ms")
}

func TestAwaitTimeoutCompletes(t *testing.T) {
	testIntegerObject(t, testEval(t, `await_timeout(spawn(fn() { 5 }), 1000)`), 5)
	// a non-future argument resolves immediately, like await
	testIntegerObject(t, testEval(t, `await_timeout(3, 1)`), 3)
}

func TestPrintOutput(t *testing.T) {
	_, out := testEvalWithOutput(t, `println("a", 1, true)`)
	if out != "a 1 true\n" {
		t.Errorf("println output = %q", out)
	}

	_, out = testEvalWithOutput(t, `print("x")`)
	if out != "x" {
		t.Errorf("print output = %q", out)
	}
}

func TestStrAndType(t *testing.T) {
	testStringObject(t, testEval(t, `str(42)`), "42")
	testStringObject(t, testEval(t, `str([1, 2])`), "[1, 2]")
	testStringObject(t, testEval(t, `type(1)`), "Int")
	testStringObject(t, testEval(t, `type(1.0)`), "Float")
	testStringObject(t, testEval(t, `type("x")`), "String")
	testStringObject(t, testEval(t, `type(null)`), "Null")
	// future arguments resolve before the native runs
	testStringObject(t, testEval(t, `type(spawn(fn() { 1 }))`), "Int")
}

func TestAssertBuiltins(t *testing.T) {
	if testEval(t, `assert(1 < 2)`) != NULL {
		t.Errorf("passing assert should be null")
	}
	testErrorObject(t, testEval(t, `assert(false, "boom")`), "assertion failed: boom")
	testErrorObject(t, testEval(t, `assert_eq(1, 2)`), "assertion failed: 1 != 2")
	if testEval(t, `assert_eq([1], [1])`) != NULL {
		t.Errorf("structural equality should pass")
	}
}

func TestUUIDBuiltin(t *testing.T) {
	evaluated := testEval(t, `uuid()`)
	s, ok := evaluated.(*object.String)
	if !ok {
		t.Fatalf("uuid() did not return a string. got=%T", evaluated)
	}
	if len(s.Value) != 36 {
		t.Errorf("uuid length = %d, want 36", len(s.Value))
	}
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"5 + true", "type mismatch: Int + Bool"},
		{"-true", "unknown operator: -Bool"},
		{"foobar", "identifier not found: foobar"},
		{`"a" - "b"`, "unknown operator: String - String"},
		{"1 / 0", "division by zero"},
		{"len(1)", "len() expects String, Array or Hash, got Int"},
		{"len()", "wrong number of arguments. got=0, want=1"},
		{"1()", "not a function: Int"},
		{"(1).x", "member access not supported on Int"},
		{"let C = 5; new C()", "cannot instantiate Int"},
		{"this", "'this' used outside of a method"},
		{"for x in 5 {}", "cannot iterate over Int"},
	}

	for _, tt := range tests {
		testErrorObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestErrorStopsEvaluation(t *testing.T) {
	_, out := testEvalWithOutput(t, `
println("before")
missing
println("after")`)
	if strings.Contains(out, "after") {
		t.Errorf("evaluation should stop at the first error. out=%q", out)
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let f = fn() { return 10; 9 }; f()", 10},
		{"let f = fn() { if true { if true { return 10 } } return 1 }; f()", 10},
		{"let f = fn() { while true { return 5 } }; f()", 5},
		{"let f = fn() { for x in [1, 2, 3] { return x } }; f()", 1},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

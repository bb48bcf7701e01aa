package object

import (
	"sync"
)

// Environment is a chained lexical scope. Closures capture their defining
// Environment by pointer, so sibling closures chained to the same parent
// observe each other's assignments through it.
type Environment struct {
	bindings map[string]Object
	outer    *Environment

	mu sync.RWMutex
}

func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[string]Object)}
}

// NewEnclosedEnvironment constructs a new empty scope chained to outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

func (e *Environment) Outer() *Environment { return e.outer }

// Define inserts or overwrites in this scope only. It never walks outward;
// shadowing a name bound in an enclosing scope is always allowed.
func (e *Environment) Define(name string, val Object) Object {
	e.mu.Lock()
	e.bindings[name] = val
	e.mu.Unlock()
	return val
}

// Get searches this scope, then the enclosing chain. A miss is (nil, false),
// not an error; the evaluator turns it into "identifier not found".
func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	val, ok := e.bindings[name]
	e.mu.RUnlock()

	if ok {
		return val, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Assign mutates the scope where name is already bound, checking this scope
// first and then walking outward. It never creates a binding; false means
// the name is unbound in the whole chain.
func (e *Environment) Assign(name string, val Object) bool {
	e.mu.Lock()
	if _, ok := e.bindings[name]; ok {
		e.bindings[name] = val
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()

	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}

// ContainsLocal is a current-scope-only membership test.
func (e *Environment) ContainsLocal(name string) bool {
	e.mu.RLock()
	_, ok := e.bindings[name]
	e.mu.RUnlock()
	return ok
}

// Names returns the names bound in this scope only.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	return names
}

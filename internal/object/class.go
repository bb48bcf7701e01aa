package object

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/solisoft/soli-lang-sub001/internal/ast"
)

// FieldDefault is a declared instance field and its initializer expression.
// Defaults are evaluated once per construction, then never consulted again:
// reading a removed field behaves like "key not present".
type FieldDefault struct {
	Name    string
	Default ast.Expression
}

// Class is immutable after construction except for its static field storage
// and the lazily built method caches.
//
// Method resolution order: this class's native methods, then this class's
// user methods, then the superclass chain. A subclass method of any kind
// always shadows a superclass method of the same name. The rule lives in
// flatten() and nowhere else.
type Class struct {
	Name                string
	Superclass          *Class
	Methods             map[string]*Function
	NativeMethods       map[string]*NativeFunction
	StaticMethods       map[string]*Function
	NativeStaticMethods map[string]*NativeFunction
	FieldDefaults       []FieldDefault
	Constructor         *Function
	NestedClasses       map[string]*Class

	// static fields live on the class that declares them; subclasses read
	// and write through the chain, so the whole hierarchy shares one cell
	staticMu     sync.Mutex
	staticFields map[string]Object

	// flattened method tables, built at most once per Class
	cacheOnce        sync.Once
	allMethods       map[string]Object
	allNativeMethods map[string]*NativeFunction
}

func NewClass(name string, superclass *Class) *Class {
	return &Class{
		Name:                name,
		Superclass:          superclass,
		Methods:             make(map[string]*Function),
		NativeMethods:       make(map[string]*NativeFunction),
		StaticMethods:       make(map[string]*Function),
		NativeStaticMethods: make(map[string]*NativeFunction),
		NestedClasses:       make(map[string]*Class),
		staticFields:        make(map[string]Object),
	}
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string {
	if c.Superclass != nil {
		return "<class " + c.Name + " < " + c.Superclass.Name + ">"
	}
	return "<class " + c.Name + ">"
}

// flatten builds both caches under sync.Once: walk the chain root-first and
// overlay, so subclass entries win; within one class, native wins over user.
func (c *Class) flatten() {
	c.cacheOnce.Do(func() {
		methods := make(map[string]Object)
		natives := make(map[string]*NativeFunction)

		if c.Superclass != nil {
			c.Superclass.flatten()
			for name, fn := range c.Superclass.allMethods {
				methods[name] = fn
			}
			for name, fn := range c.Superclass.allNativeMethods {
				natives[name] = fn
			}
		}
		for name, fn := range c.Methods {
			methods[name] = fn
		}
		for name, fn := range c.NativeMethods {
			methods[name] = fn
			natives[name] = fn
		}

		c.allMethods = methods
		c.allNativeMethods = natives
	})
}

// ResolveMethod looks up an instance method through the flattened cache.
// The result is a *Function or *NativeFunction.
func (c *Class) ResolveMethod(name string) (Object, bool) {
	c.flatten()
	fn, ok := c.allMethods[name]
	return fn, ok
}

// ResolveStaticMethod resolves against the Class value itself, walking the
// superclass chain. Native statics shadow user statics within one class.
func (c *Class) ResolveStaticMethod(name string) (Object, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if fn, ok := cls.NativeStaticMethods[name]; ok {
			return fn, true
		}
		if fn, ok := cls.StaticMethods[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// DeclareStaticField seeds storage on this class, making it the owning cell
// for the whole hierarchy below.
func (c *Class) DeclareStaticField(name string, val Object) {
	c.staticMu.Lock()
	c.staticFields[name] = val
	c.staticMu.Unlock()
}

// GetStaticField walks the chain so a subclass reads its ancestor's cell.
func (c *Class) GetStaticField(name string) (Object, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		cls.staticMu.Lock()
		val, ok := cls.staticFields[name]
		cls.staticMu.Unlock()
		if ok {
			return val, true
		}
	}
	return nil, false
}

// SetStaticField writes to the declaring class's cell when one exists
// anywhere in the chain, so sibling subclasses observe the update. A name
// declared nowhere is created on the class written through.
func (c *Class) SetStaticField(name string, val Object) {
	for cls := c; cls != nil; cls = cls.Superclass {
		cls.staticMu.Lock()
		if _, ok := cls.staticFields[name]; ok {
			cls.staticFields[name] = val
			cls.staticMu.Unlock()
			return
		}
		cls.staticMu.Unlock()
	}
	c.staticMu.Lock()
	c.staticFields[name] = val
	c.staticMu.Unlock()
}

// Instance is a mutable field bag bound to its Class. Created by NewInstance
// and (optionally) a constructor call; shared by pointer.
type Instance struct {
	Class  *Class
	Fields map[string]Object
}

// NewInstance allocates a fresh field bag. Field defaults are expressions,
// so the evaluator populates them before the constructor runs.
func NewInstance(class *Class) *Instance {
	return &Instance{
		Class:  class,
		Fields: make(map[string]Object),
	}
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	var out bytes.Buffer

	names := make([]string, 0, len(i.Fields))
	for name := range i.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := []string{}
	for _, name := range names {
		fields = append(fields, name+": "+i.Fields[name].Inspect())
	}

	out.WriteString(i.Class.Name)
	out.WriteString(" {")
	out.WriteString(strings.Join(fields, ", "))
	out.WriteString("}")

	return out.String()
}

// GetField is a plain map lookup; there is no fallback to class defaults
// after construction.
func (i *Instance) GetField(name string) (Object, bool) {
	val, ok := i.Fields[name]
	return val, ok
}

func (i *Instance) SetField(name string, val Object) {
	i.Fields[name] = val
}

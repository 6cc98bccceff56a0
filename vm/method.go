package vm

import (
	"fmt"

	"github.com/chazu/avm2/abc"
)

// NativeFunc is a Go function implementing a callable. this is the receiver
// (nil for unbound calls).
type NativeFunc func(this Value, args []Value) Value

// Function is a callable host object. Prototype is the template that objects
// created by this function delegate to.
type Function struct {
	*Object
	name      string
	fn        NativeFunc
	Prototype *Object
}

// NewFunction creates a function. A nil prototype gets a fresh empty object.
func NewFunction(name string, fn NativeFunc, prototype *Object) *Function {
	if prototype == nil {
		prototype = NewObject(nil)
	}
	return &Function{
		Object:    NewObject(nil),
		name:      name,
		fn:        fn,
		Prototype: prototype,
	}
}

// Name returns the debug name of the function.
func (f *Function) Name() string {
	return f.name
}

// Call invokes the function with a receiver and positional arguments.
func (f *Function) Call(this Value, args ...Value) Value {
	return f.Apply(this, args)
}

// Apply invokes the function with a receiver and an argument slice.
func (f *Function) Apply(this Value, args []Value) Value {
	if f.fn == nil {
		return Undefined
	}
	return f.fn(this, args)
}

// String implements the Stringer interface.
func (f *Function) String() string {
	return "function " + f.name + "() {}"
}

// debugName is used by traces for any value that might be a function.
func debugName(v Value) string {
	switch x := v.(type) {
	case *Function:
		return x.name
	case nil:
		return "null"
	}
	return fmt.Sprint(v)
}

// ---------------------------------------------------------------------------
// Function synthesis
// ---------------------------------------------------------------------------

// FunctionSynthesizer turns a method body plus its closure scope into a
// callable. The bytecode interpreter is the production implementation.
type FunctionSynthesizer interface {
	CreateFunction(mi *abc.MethodInfo, scope *Scope) *Function
}

// Body is a Go stand-in for a compiled method body. It sees the closure
// scope it was synthesized in.
type Body func(scope *Scope, this Value, args []Value) Value

// BodyTable is a FunctionSynthesizer that resolves method bodies by name
// from a table of Go functions. Unknown names synthesize empty functions.
type BodyTable struct {
	bodies map[string]Body
}

// NewBodyTable creates an empty body table.
func NewBodyTable() *BodyTable {
	return &BodyTable{bodies: make(map[string]Body)}
}

// Register associates a method name with a body. Returns the previous body,
// or nil.
func (bt *BodyTable) Register(name string, body Body) Body {
	old := bt.bodies[name]
	bt.bodies[name] = body
	return old
}

// Has returns true if a body is registered for name.
func (bt *BodyTable) Has(name string) bool {
	_, ok := bt.bodies[name]
	return ok
}

// CreateFunction implements FunctionSynthesizer.
func (bt *BodyTable) CreateFunction(mi *abc.MethodInfo, scope *Scope) *Function {
	if mi == nil {
		return nil
	}
	body := bt.bodies[mi.Name]
	if body == nil {
		return NewFunction(mi.Name, nil, nil)
	}
	return NewFunction(mi.Name, func(this Value, args []Value) Value {
		return body(scope, this, args)
	}, nil)
}

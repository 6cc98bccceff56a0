package vm

import (
	"strings"
	"sync/atomic"

	"github.com/chazu/avm2/abc"
)

// ---------------------------------------------------------------------------
// Class: runtime representation of a script or native class
// ---------------------------------------------------------------------------
//
//   Class                                  D'  base class dynamic layer
//   +---------------------------------+    ^
//   | dynamicPrototype ---------------+--> D   dynamic layer
//   |                                 |    ^
//   | traitsPrototype ----------------+--> T   trait layer (instance template)
//   |                                 |    ^
//   | instanceConstructor ------------+----+  .Prototype
//   | instanceConstructorNoInitialize |
//   | callable (call / apply)         |
//   +---------------------------------+
//
// Instances delegate to T, T to D, D to the base class's D.

// InitFlags records which initializers must run before a constructor body.
type InitFlags uint8

const (
	// OwnInitialize: the class declares its own initializer.
	OwnInitialize InitFlags = 1 << iota
	// SuperInitialize: some ancestor requires initialization.
	SuperInitialize
)

// Callable is the pair used when a type value is itself invoked.
type Callable struct {
	Call  func(this Value, args ...Value) Value
	Apply func(this Value, args []Value) Value
}

// Bindings lists what a trait installer materialized on an object.
type Bindings struct {
	Slots []*abc.Trait
	Keys  []string
}

// Class is a runtime class.
type Class struct {
	debugName string
	baseClass *Class
	scope     *Scope
	classInfo *abc.ClassInfo

	// self holds the class's own (static) properties.
	self *Object

	dynamicPrototype *Object
	traitsPrototype  *Object

	instanceConstructor             *Function
	instanceConstructorNoInitialize *Function
	hasInitialize                   InitFlags

	callable Callable

	classTraits    *ClassTraits
	instanceTraits *InstanceTraits

	native                *NativeBindings
	implementedInterfaces map[string]*Interface

	classBindings    *Bindings
	instanceBindings *Bindings
}

var nextShapeID atomic.Int64

// NewClass creates an unlinked class around an instance constructor. A nil
// callable makes the class coerce with CoerceCallable.
func NewClass(name string, ctor *Function, callable *Callable) *Class {
	c := &Class{
		debugName: name,
		self:      NewObject(nil),
	}
	if ctor != nil {
		c.instanceConstructor = ctor
		c.instanceConstructorNoInitialize = ctor
		ctor.DefineHidden(classKey, c)
	}
	if callable == nil {
		cc := CoerceCallable(c)
		callable = &cc
	}
	c.callable = *callable
	return c
}

// IsClass returns true if v is a fully constructed class.
func IsClass(v Value) bool {
	c, ok := v.(*Class)
	if !ok {
		return false
	}
	marker, _ := c.self.OwnProperty(isClassKey)
	return marker != nil && marker.Value == c
}

// classOf maps a receiver to its class, whether it is the class itself or the
// class's own property object.
func classOf(this Value) *Class {
	switch x := this.(type) {
	case *Class:
		return x
	case *Object:
		c, _ := x.Get(isClassKey).(*Class)
		return c
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Name returns the qualified name of the class.
func (c *Class) Name() abc.Multiname {
	if c.classInfo == nil {
		return abc.PublicName(c.debugName)
	}
	return c.classInfo.Instance.Name
}

// DebugName returns the name the class was created with.
func (c *Class) DebugName() string { return c.debugName }
func (c *Class) BaseClass() *Class { return c.baseClass }
func (c *Class) Scope() *Scope { return c.scope }
func (c *Class) ClassInfo() *abc.ClassInfo { return c.classInfo }
func (c *Class) DynamicPrototype() *Object { return c.dynamicPrototype }
func (c *Class) TraitsPrototype() *Object { return c.traitsPrototype }
func (c *Class) InstanceConstructor() *Function { return c.instanceConstructor }
func (c *Class) HasInitialize() InitFlags { return c.hasInitialize }
func (c *Class) ClassTraits() *ClassTraits { return c.classTraits }
func (c *Class) InstanceTraits() *InstanceTraits { return c.instanceTraits }
func (c *Class) Natives() *NativeBindings { return c.native }
func (c *Class) ClassBindings() *Bindings { return c.classBindings }
func (c *Class) InstanceBindings() *Bindings { return c.instanceBindings }
func (c *Class) Properties() *Object { return c.self }
func (c *Class) InstanceConstructorNoInitialize() *Function {
	return c.instanceConstructorNoInitialize
}

// ImplementsInterface returns true if the class or an ancestor implements
// the interface with qualified name qn.
func (c *Class) ImplementsInterface(qn string) bool {
	_, ok := c.implementedInterfaces[qn]
	return ok
}

// ImplementedInterfaces returns the qualified names of every implemented
// interface, in no particular order.
func (c *Class) ImplementedInterfaces() []string {
	result := make([]string, 0, len(c.implementedInterfaces))
	for qn := range c.implementedInterfaces {
		result = append(result, qn)
	}
	return result
}

// Superclasses returns all base classes from the immediate base to the root.
func (c *Class) Superclasses() []*Class {
	var result []*Class
	for cur := c.baseClass; cur != nil; cur = cur.baseClass {
		result = append(result, cur)
	}
	return result
}

// IsSubclassOf returns true if c is other or derives from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.baseClass {
		if cur == other {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Instance lifecycle
// ---------------------------------------------------------------------------

// InitializeInstance runs every own initializer of the class and its
// ancestors on obj, base-most first. Initializers are nullary and must not
// construct instances of the same chain.
func (c *Class) InitializeInstance(obj *Object) {
	var inits []*Function
	for k := c; k != nil; k = k.baseClass {
		if k.hasInitialize&OwnInitialize == 0 || k.instanceConstructor == nil {
			continue
		}
		if fn, ok := k.instanceConstructor.Prototype.Get(initializeKey).(*Function); ok {
			inits = append(inits, fn)
		}
	}
	for i := len(inits) - 1; i >= 0; i-- {
		inits[i].Call(obj)
	}
	log.Debugf("initialize: %s", c.debugName)
}

// CreateInstance allocates an object from the trait layer and runs the
// constructor (including any initializer chain) on it.
func (c *Class) CreateInstance(args ...Value) *Object {
	o := NewObject(c.instanceConstructor.Prototype)
	c.instanceConstructor.Apply(o, args)
	return o
}

// CreateAsSymbol allocates an instance without running the constructor and
// attaches a symbol payload. If the template already has a symbol the payload
// delegates to it and overlays props; otherwise the payload is props.
func (c *Class) CreateAsSymbol(props *Object) *Object {
	o := NewObject(c.instanceConstructor.Prototype)
	if template, ok := o.Get(symbolKey).(*Object); ok {
		symbol := NewObject(template)
		if props != nil {
			for _, k := range props.OwnKeys() {
				p, _ := props.OwnProperty(k)
				symbol.DefineProperty(k, *p)
			}
		}
		o.DefineHidden(symbolKey, symbol)
	} else if props != nil {
		o.DefineHidden(symbolKey, props)
	} else {
		o.DefineHidden(symbolKey, nil)
	}
	return o
}

// SetSymbol sets the symbol template shared by all instances.
func (c *Class) SetSymbol(props *Object) {
	c.instanceConstructor.Prototype.DefineHidden(symbolKey, props)
}

// Symbol returns the symbol template, or nil.
func (c *Class) Symbol() *Object {
	s, _ := c.instanceConstructor.Prototype.Get(symbolKey).(*Object)
	return s
}

// ---------------------------------------------------------------------------
// Type tests and coercion
// ---------------------------------------------------------------------------

// IsInstance returns true if v is an object whose chain passes through this
// class's dynamic layer. A class value is tested through its properties
// object.
func (c *Class) IsInstance(v Value) bool {
	o, ok := v.(*Object)
	if x, isClass := v.(*Class); isClass && x != nil {
		o, ok = x.self, true
	}
	if !ok || o == nil || c.dynamicPrototype == nil {
		return false
	}
	return c.dynamicPrototype.IsDelegateOf(o)
}

// IsInstanceOf is IsInstance; kept for callers that test "instanceof".
func (c *Class) IsInstanceOf(v Value) bool {
	return c.IsInstance(v)
}

// Coerce is the default coercion of a class: identity.
func (c *Class) Coerce(v Value) Value {
	return v
}

// Call invokes the class as a coercion function.
func (c *Class) Call(this Value, args ...Value) Value {
	return c.callable.Call(this, args...)
}

// Apply invokes the class as a coercion function with an argument slice.
func (c *Class) Apply(this Value, args []Value) Value {
	return c.callable.Apply(this, args)
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// String implements the Stringer interface.
func (c *Class) String() string {
	if c == nil {
		return "null"
	}
	if c.classInfo != nil {
		return "[class " + c.classInfo.Instance.Name.Name + "]"
	}
	return "[class " + c.debugName + "]"
}

// Trace writes a dump of the class structure and both trait tables.
func (c *Class) Trace(w *TraceWriter) {
	description := c.debugName
	if c.baseClass != nil {
		description += " extends " + c.baseClass.debugName
	}
	w.Enter("class " + description + " {")
	w.WriteLn("scope: " + c.scope.String())
	w.WriteLn("baseClass: " + debugName(c.baseClass))
	w.WriteLn("classInfo: " + c.classInfo.String())
	w.WriteLn("dynamicPrototype: " + debugName(c.dynamicPrototype))
	w.WriteLn("traitsPrototype: " + debugName(c.traitsPrototype))
	w.WriteLn("dynamicPrototype === traitsPrototype: " + boolString(c.dynamicPrototype == c.traitsPrototype))
	w.WriteLn("instanceConstructor: " + debugName(c.instanceConstructor))
	w.WriteLn("instanceConstructorNoInitialize: " + debugName(c.instanceConstructorNoInitialize))
	w.WriteLn("instanceConstructor === instanceConstructorNoInitialize: " +
		boolString(c.instanceConstructor == c.instanceConstructorNoInitialize))

	if c.traitsPrototype != nil {
		w.Enter("traitsPrototype: ")
		if c.instanceBindings != nil {
			w.Enter("slots: ")
			slots := make([]string, len(c.instanceBindings.Slots))
			for i, s := range c.instanceBindings.Slots {
				slots[i] = s.String()
			}
			w.WriteArray(slots)
			w.Outdent()

			w.Enter("bindings: ")
			w.WriteArray(c.describeBindings(c.instanceBindings.Keys))
			w.Outdent()
		}

		w.Enter("classTraits: ")
		if c.classTraits != nil {
			c.classTraits.Trace(w)
		}
		w.Outdent()

		w.Enter("instanceTraits: ")
		if c.instanceTraits != nil {
			c.instanceTraits.Trace(w)
		}
		w.Outdent()
		w.Outdent()
	}

	if len(c.implementedInterfaces) > 0 {
		w.WriteLn("implements: " + strings.Join(sortedStrings(c.ImplementedInterfaces()), ", "))
	}
	w.Leave("}")
}

func (c *Class) describeBindings(keys []string) []string {
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		qn := key
		if strings.HasPrefix(key, "get ") || strings.HasPrefix(key, "set ") {
			qn = key[4:]
		}
		p, ok := c.traitsPrototype.OwnProperty(qn)
		if !ok {
			result = append(result, key)
			continue
		}
		str := key
		if p.IsAccessor() {
			if p.Getter != nil {
				str += " getter: " + debugName(p.Getter)
			}
			if p.Setter != nil {
				str += " setter: " + debugName(p.Setter)
			}
		} else {
			str += " value: " + debugName(p.Value)
		}
		result = append(result, str)
	}
	return result
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

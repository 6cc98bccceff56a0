package vm

import (
	"github.com/chazu/avm2/abc"
)

// Native identifiers of the builtin classes.
const (
	NativeObject   = "ObjectClass"
	NativeClass    = "ClassClass"
	NativeFunction = "FunctionClass"
	NativeBoolean  = "BooleanClass"
	NativeError    = "ErrorClass"
)

// RegisterBuiltins installs the builders for the foundational classes.
func RegisterBuiltins(cat *NativeCatalog) {
	cat.Register(NativeObject, buildObjectClass)
	cat.Register(NativeClass, buildClassClass)
	cat.Register(NativeFunction, buildFunctionClass)
	cat.Register(NativeBoolean, buildBooleanClass)
	cat.Register(NativeError, buildErrorClass)
}

func requireConstructor(nc *NativeContext) error {
	if nc.Constructor == nil {
		return invariant(ViolationStructuralMismatch, nc.ClassInfo.Instance.Name.Name, "native class has no instance initializer")
	}
	return nil
}

// Object is the root: its constructor template is both layers and it has no
// base class to delegate to.
func buildObjectClass(nc *NativeContext) (*Class, error) {
	if err := requireConstructor(nc); err != nil {
		return nil, err
	}
	c := nc.NewClass(nil)
	c.dynamicPrototype = nc.Constructor.Prototype
	c.traitsPrototype = nc.Constructor.Prototype
	if err := c.SetDefaultProperties(); err != nil {
		return nil, err
	}
	return c, nil
}

// ClassNatives are the hooks of the Class class. Its instances are class
// objects, and their script-visible prototype is the dynamic layer.
func ClassNatives() *NativeBindings {
	return &NativeBindings{
		Instance: map[string]*NativeHook{
			prototypeKey: {
				Get: func(this Value, _ []Value) Value {
					if c := classOf(this); c != nil {
						return c.dynamicPrototype
					}
					return Undefined
				},
			},
		},
	}
}

// Class uses the domain's meta class template as its single layer, so every
// class object inherits the Class instance members.
func buildClassClass(nc *NativeContext) (*Class, error) {
	if err := requireConstructor(nc); err != nil {
		return nil, err
	}
	nc.Constructor.Prototype = nc.Domain.MetaClass().Prototype
	c := nc.NewClass(nil)
	if err := c.ExtendBuiltin(nc.Base); err != nil {
		return nil, err
	}
	c.LinkNatives(&Definition{Glue: &Glue{Native: ClassNatives()}})
	return c, nil
}

func buildFunctionClass(nc *NativeContext) (*Class, error) {
	if err := requireConstructor(nc); err != nil {
		return nil, err
	}
	c := nc.NewClass(nil)
	if err := c.ExtendBuiltin(nc.Base); err != nil {
		return nil, err
	}
	return c, nil
}

// Boolean(v) converts rather than checks.
func buildBooleanClass(nc *NativeContext) (*Class, error) {
	if err := requireConstructor(nc); err != nil {
		return nil, err
	}
	c := nc.NewClass(&Callable{
		Call: func(_ Value, args ...Value) Value {
			return ToBoolean(firstArg(args))
		},
		Apply: func(_ Value, args []Value) Value {
			return ToBoolean(firstArg(args))
		},
	})
	if err := c.ExtendBuiltin(nc.Base); err != nil {
		return nil, err
	}
	return c, nil
}

var publicMessage = abc.PublicQualifiedName("message")

// Error owns its object shape through a host template, initializes message
// on every instance and constructs when called as a function.
func buildErrorClass(nc *NativeContext) (*Class, error) {
	if err := requireConstructor(nc); err != nil {
		return nil, err
	}
	if nc.Base == nil {
		return nil, invariant(ViolationStructuralMismatch, nc.ClassInfo.Instance.Name.Name, "Error requires a base class")
	}

	dynamic := NewObject(nc.Base.dynamicPrototype)
	native := NewFunction("Error", nil, NewObject(dynamic))

	var c *Class
	c = nc.NewClass(&Callable{
		Call: func(_ Value, args ...Value) Value {
			return c.CreateInstance(args...)
		},
		Apply: func(_ Value, args []Value) Value {
			return c.CreateInstance(args...)
		},
	})
	if err := c.ExtendNative(nc.Base, native); err != nil {
		return nil, err
	}

	err := c.Link(&Definition{
		Initialize: NewFunction("initialize", func(this Value, _ []Value) Value {
			if o, ok := this.(*Object); ok {
				o.DefineProperty(publicMessage, Property{Value: ""})
			}
			return Undefined
		}, nil),
		Properties: map[string]Property{
			abc.PublicQualifiedName("toString"): {
				Value: NewFunction("toString", func(this Value, _ []Value) Value {
					o, ok := this.(*Object)
					if !ok {
						return "Error"
					}
					if msg, ok := o.Get(publicMessage).(string); ok && msg != "" {
						return "Error: " + msg
					}
					return "Error"
				}, nil),
				Hidden: true,
			},
		},
		Glue: &Glue{
			Instance: &GlueSet{Names: map[string]string{"message": "public message"}},
		},
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

package vm

import (
	"strings"

	"github.com/chazu/avm2/abc"
)

// Interface is the runtime form of a script interface. It has no delegation
// layers and is never instantiated; it carries a merged instance trait table
// and answers instance-of tests.
type Interface struct {
	name           abc.Multiname
	classInfo      *abc.ClassInfo
	super          *Interface
	instanceTraits *InstanceTraits
}

// CreateInterface builds the interface described by ci. An interface may
// extend at most one interface, which must already be registered.
func (d *Domain) CreateInterface(ci *abc.ClassInfo) (*Interface, error) {
	ii := ci.Instance
	if !ii.IsInterface() {
		return nil, invariant(ViolationStructuralMismatch, ii.Name.String(), "not an interface")
	}

	if len(ii.Interfaces) > 0 {
		names := make([]string, len(ii.Interfaces))
		for i, n := range ii.Interfaces {
			names[i] = n.Name
		}
		d.tracef("Creating Interface %s implements %s", ii.Name, strings.Join(names, ", "))
	} else {
		d.tracef("Creating Interface %s", ii.Name)
	}

	if len(ii.Interfaces) > 1 {
		return nil, invariant(ViolationMultipleSuperInterfaces, ii.Name.String(),
			"%d super-interfaces declared", len(ii.Interfaces))
	}

	iface := &Interface{name: ii.Name, classInfo: ci}
	var parent *InstanceTraits
	if len(ii.Interfaces) == 1 {
		t, err := d.Resolve(ii.Interfaces[0])
		if err != nil {
			return nil, err
		}
		super, ok := t.(*Interface)
		if !ok {
			return nil, invariant(ViolationUnresolvedType, ii.Interfaces[0].QualifiedName(),
				"%s extends a non-interface", ii.Name)
		}
		iface.super = super
		parent = super.instanceTraits
	}

	it, err := NewInstanceTraits(parent, ii, d)
	if err != nil {
		return nil, err
	}
	iface.instanceTraits = it
	return iface, nil
}

// Name returns the qualified name of the interface.
func (i *Interface) Name() abc.Multiname {
	return i.name
}

// ClassInfo returns the interface's metadata.
func (i *Interface) ClassInfo() *abc.ClassInfo {
	return i.classInfo
}

// Super returns the interface this one extends, or nil.
func (i *Interface) Super() *Interface {
	return i.super
}

// InstanceTraits returns the merged member table.
func (i *Interface) InstanceTraits() *InstanceTraits {
	return i.instanceTraits
}

// IsInstance returns true if v is an object whose class implements this
// interface.
func (i *Interface) IsInstance(v Value) bool {
	o, ok := v.(*Object)
	if !ok || o == nil {
		return false
	}
	c := o.Class()
	if c == nil {
		return false
	}
	return c.ImplementsInterface(i.name.QualifiedName())
}

// Call returns its argument: coercing to an interface is a no-op.
func (i *Interface) Call(_ Value, args ...Value) Value {
	return firstArg(args)
}

// Apply returns the first argument.
func (i *Interface) Apply(_ Value, args []Value) Value {
	return firstArg(args)
}

// String implements the Stringer interface.
func (i *Interface) String() string {
	return "[interface " + i.name.Name + "]"
}

// Trace writes the interface's member table.
func (i *Interface) Trace(w *TraceWriter) {
	w.Enter("interface " + i.name.Name + " {")
	w.Enter("instanceTraits: ")
	i.instanceTraits.Trace(w)
	w.Outdent()
	w.Outdent()
	w.Leave("}")
}

package vm

import "github.com/chazu/avm2/abc"

// CreateClass constructs the class described by ci under base in the
// enclosing scope. base and every implemented interface must already be
// constructed and registered. On error nothing is returned and nothing has
// been registered.
func (d *Domain) CreateClass(ci *abc.ClassInfo, base *Class, scope *Scope) (*Class, error) {
	ii := ci.Instance
	className := ii.Name.Name

	var builder NativeBuilder
	isNative := ci.IsNative()
	if isNative {
		b, ok := d.natives.Lookup(ci.Native.Class)
		if !ok {
			return nil, invariant(ViolationUnregisteredNative, ci.Native.Class, "no native for class %s", className)
		}
		builder = b
		// The root class has no base but its body needs the Class class.
		if base == nil {
			scope = NewScope(scope, d.metaClass)
		}
	}

	classScope := NewScope(scope, nil)
	ctor := d.synth.CreateFunction(ii.Init, classScope)

	var cls *Class
	if isNative {
		c, err := builder(&NativeContext{
			Domain:      d,
			Scope:       classScope,
			Constructor: ctor,
			Base:        base,
			ClassInfo:   ci,
		})
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, invariant(ViolationStructuralMismatch, ci.Native.Class, "native builder returned no class")
		}
		cls = c
	} else {
		cls = NewClass(className, ctor, nil)
		cls.callable = d.coercion(cls)
	}
	d.tracef("Creating class %s", className)

	cls.classInfo = ci
	cls.scope = classScope
	if err := classScope.Bind(cls); err != nil {
		return nil, err
	}
	cls.self.SetDelegate(d.metaClass.Prototype)

	var classNatives, instanceNatives map[string]*NativeHook
	if isNative {
		if cls.native != nil {
			classNatives = cls.native.Static
			instanceNatives = cls.native.Instance
		}
	} else if err := cls.Extend(base); err != nil {
		return nil, err
	}

	cls.classTraits = NewClassTraits(ci)

	var parent *InstanceTraits
	if base != nil {
		parent = base.instanceTraits
	}
	it, err := NewInstanceTraits(parent, ii, d)
	if err != nil {
		return nil, err
	}
	cls.instanceTraits = it

	ifaces, err := d.collectInterfaces(base, ii)
	if err != nil {
		return nil, err
	}
	cls.implementedInterfaces = ifaces

	if cls.instanceConstructor != nil {
		if cls.traitsPrototype == nil {
			return nil, invariant(ViolationStructuralMismatch, className, "class has no trait layer")
		}
		b, err := d.installer.ApplyInstanceTraits(cls.traitsPrototype, classScope, ii.Traits, instanceNatives)
		if err != nil {
			return nil, err
		}
		cls.instanceBindings = b
	}

	b, err := d.installer.ApplyClassTraits(cls.self, classScope, ci.Traits, classNatives)
	if err != nil {
		return nil, err
	}
	cls.classBindings = b

	cls.self.DefineReadOnly(isClassKey, cls)
	return cls, nil
}

// collectInterfaces computes the implemented-interfaces record: everything
// the base implements, plus each declared interface and the interfaces it
// extends.
func (d *Domain) collectInterfaces(base *Class, ii *abc.InstanceInfo) (map[string]*Interface, error) {
	result := make(map[string]*Interface)
	if base != nil {
		for qn, iface := range base.implementedInterfaces {
			result[qn] = iface
		}
	}
	for _, name := range ii.Interfaces {
		t, err := d.Resolve(name)
		if err != nil {
			return nil, err
		}
		iface, ok := t.(*Interface)
		if !ok {
			return nil, invariant(ViolationUnresolvedType, name.QualifiedName(),
				"%s implements a non-interface", ii.Name)
		}
		for cur := iface; cur != nil; cur = cur.super {
			result[cur.name.QualifiedName()] = cur
		}
	}
	return result, nil
}

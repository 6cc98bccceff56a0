package vm

import (
	"sort"

	"github.com/chazu/avm2/abc"
)

// ---------------------------------------------------------------------------
// Delegation chain linking
// ---------------------------------------------------------------------------

func (c *Class) setDefaultProperties() {
	c.dynamicPrototype.DefineHidden(constructorKey, c)
	c.traitsPrototype.DefineReadOnly(classKey, c)
	c.instanceConstructor.DefineReadOnly(classKey, c)
	c.traitsPrototype.DefineReadOnly(shapeKey, nextShapeID.Add(1))
}

// SetDefaultProperties installs the back-references and markers every linked
// class carries. Native builders that wire their own layers call it last.
func (c *Class) SetDefaultProperties() error {
	if c.dynamicPrototype == nil || c.traitsPrototype == nil || c.instanceConstructor == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "class is not linked")
	}
	c.setDefaultProperties()
	return nil
}

// wrapConstructor replaces the instance constructor with one that runs the
// initializer chain before the original body.
func (c *Class) wrapConstructor() {
	noInit := c.instanceConstructor
	wrapped := NewFunction(noInit.name, func(this Value, args []Value) Value {
		if obj, ok := this.(*Object); ok {
			c.InitializeInstance(obj)
		}
		return noInit.Apply(this, args)
	}, noInit.Prototype)
	wrapped.DefineReadOnly(classKey, noInit.Class())
	c.instanceConstructor = wrapped
}

// Extend links an ordinary script class under base: a fresh dynamic layer
// delegating to base's dynamic layer and a fresh trait layer below it.
func (c *Class) Extend(base *Class) error {
	if base == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "extend requires a base class")
	}
	if c.instanceConstructor == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "class has no instance constructor")
	}
	c.baseClass = base
	c.dynamicPrototype = NewObject(base.dynamicPrototype)
	if base.hasInitialize != 0 {
		c.wrapConstructor()
		c.hasInitialize |= SuperInitialize
	}
	c.traitsPrototype = NewObject(c.dynamicPrototype)
	c.instanceConstructor.Prototype = c.traitsPrototype
	c.instanceConstructorNoInitialize.Prototype = c.traitsPrototype
	c.setDefaultProperties()
	return nil
}

// ExtendNative links a class whose native implementation already owns its
// object shape. The native's template becomes the trait layer and the
// template's delegate the dynamic layer.
func (c *Class) ExtendNative(base *Class, native *Function) error {
	if native == nil || native.Prototype == nil || native.Prototype.Delegate() == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "native has no delegating template")
	}
	if c.instanceConstructor == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "class has no instance constructor")
	}
	c.baseClass = base
	c.dynamicPrototype = native.Prototype.Delegate()
	c.traitsPrototype = native.Prototype
	c.instanceConstructor.Prototype = native.Prototype
	c.instanceConstructorNoInitialize.Prototype = native.Prototype
	c.setDefaultProperties()
	return nil
}

// ExtendBuiltin links a foundational builtin whose constructor template serves
// as both the dynamic and the trait layer. Script-added properties and
// trait-installed members then share one object, which is not exactly the
// separation Extend gives ordinary classes. A template without a delegate is
// chained under base's dynamic layer.
func (c *Class) ExtendBuiltin(base *Class) error {
	if base == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "builtin requires a base class")
	}
	if c.instanceConstructor == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "class has no instance constructor")
	}
	template := c.instanceConstructor.Prototype
	if template.Delegate() == nil && template != base.dynamicPrototype {
		template.SetDelegate(base.dynamicPrototype)
	}
	c.baseClass = base
	c.dynamicPrototype = template
	c.traitsPrototype = template
	c.setDefaultProperties()
	return nil
}

// ---------------------------------------------------------------------------
// Native definitions
// ---------------------------------------------------------------------------

// Definition is a native implementation bundle merged onto a class.
type Definition struct {
	// Properties overwrite same-named dynamic-layer properties.
	Properties map[string]Property
	// Initialize, if set, runs on every new instance before the constructor.
	Initialize *Function
	Glue       *Glue
}

// Glue mirrors script members onto short names usable from host code and
// carries the native hook tables.
type Glue struct {
	Instance *GlueSet
	Static   *GlueSet
	Native   *NativeBindings
}

// GlueSet selects the members to mirror. Names maps a short name to a simple
// name such as "public message". All mirrors every public member.
type GlueSet struct {
	All   bool
	Names map[string]string
}

// Link merges def onto the dynamic layer. A declared initializer makes the
// class carry its own initializer, wrapping the constructor if no ancestor
// already forced a wrapper.
func (c *Class) Link(def *Definition) error {
	if def == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "link requires a definition")
	}
	if c.dynamicPrototype == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "link before extend")
	}

	if def.Initialize != nil {
		if c.hasInitialize == 0 {
			c.wrapConstructor()
		}
		c.hasInitialize |= OwnInitialize
		c.dynamicPrototype.DefineHidden(initializeKey, def.Initialize)
	}

	for _, key := range sortedKeys(def.Properties) {
		c.dynamicPrototype.DefineProperty(key, def.Properties[key])
	}

	if def.Glue == nil {
		return nil
	}
	if g := def.Glue.Instance; g != nil {
		props := g.Names
		if g.All {
			if c.classInfo == nil {
				return invariant(ViolationStructuralMismatch, c.debugName, "glue for all members needs class metadata")
			}
			props = publicGlueNames(c.classInfo.Instance.Traits)
		}
		if err := glueProperties(c.dynamicPrototype, props); err != nil {
			return err
		}
	}
	if g := def.Glue.Static; g != nil {
		props := g.Names
		if g.All {
			if c.classInfo == nil {
				return invariant(ViolationStructuralMismatch, c.debugName, "glue for all members needs class metadata")
			}
			props = publicGlueNames(c.classInfo.Traits)
		}
		if err := glueProperties(c.self, props); err != nil {
			return err
		}
	}
	return nil
}

// LinkNatives records the native hook tables consulted when the class's
// traits are installed.
func (c *Class) LinkNatives(def *Definition) {
	if def == nil || def.Glue == nil {
		return
	}
	c.native = def.Glue.Native
}

// glueProperties defines each short name on obj as an accessor forwarding to
// the qualified member. An existing getter on the member is reused as is.
func glueProperties(obj *Object, props map[string]string) error {
	for _, short := range sortedKeys(props) {
		mn, err := abc.ParseSimpleName(props[short])
		if err != nil {
			return invariant(ViolationStructuralMismatch, short, "bad glue name: %v", err)
		}
		qn := mn.QualifiedName()
		if p, ok := obj.OwnProperty(qn); ok && p.Getter != nil {
			obj.DefineProperty(short, *p)
			continue
		}
		obj.DefineProperty(short, Property{
			Getter: NewFunction("get "+short, func(this Value, _ []Value) Value {
				if o := receiverObject(this); o != nil {
					return o.Get(qn)
				}
				return Undefined
			}, nil),
			Setter: NewFunction("set "+short, func(this Value, args []Value) Value {
				if o := receiverObject(this); o != nil {
					o.Set(qn, firstArg(args))
				}
				return Undefined
			}, nil),
		})
	}
	return nil
}

func receiverObject(this Value) *Object {
	if c, ok := this.(*Class); ok {
		return c.self
	}
	return AsObject(this)
}

func publicGlueNames(traits []*abc.Trait) map[string]string {
	props := make(map[string]string)
	for _, t := range traits {
		if !t.Name.IsPublic() {
			continue
		}
		props[t.Name.Name] = "public " + t.Name.Name
	}
	return props
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStrings(s []string) []string {
	sort.Strings(s)
	return s
}

// ---------------------------------------------------------------------------
// Verification
// ---------------------------------------------------------------------------

// Verify checks the structural relationships between constructor, trait
// layer and dynamic layer.
func (c *Class) Verify() error {
	ctor := c.instanceConstructor
	tP := c.traitsPrototype
	dP := c.dynamicPrototype
	if ctor == nil || tP == nil || dP == nil {
		return invariant(ViolationStructuralMismatch, c.debugName, "class is missing a constructor or a layer")
	}
	if tP != ctor.Prototype {
		return invariant(ViolationStructuralMismatch, c.debugName, "trait layer is not the constructor's instance template")
	}
	if dP != ctor.Prototype && dP != ctor.Prototype.Delegate() {
		return invariant(ViolationStructuralMismatch, c.debugName, "dynamic layer is neither the template nor its delegate")
	}
	if !IsClass(c) {
		return invariant(ViolationStructuralMismatch, c.debugName, "class marker is missing")
	}
	if c.baseClass != nil {
		if !tP.HasOwn(classKey) {
			return invariant(ViolationStructuralMismatch, c.debugName, "trait layer has no class back-reference")
		}
		if !tP.HasOwn(shapeKey) {
			return invariant(ViolationStructuralMismatch, c.debugName, "classes should have a shape ID")
		}
	}
	if ctor.Class() != c {
		return invariant(ViolationStructuralMismatch, c.debugName, "constructor does not refer back to its class")
	}
	return nil
}

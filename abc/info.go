package abc

import "fmt"

// ---------------------------------------------------------------------------
// Traits
// ---------------------------------------------------------------------------

// TraitKind identifies what a trait materializes as.
type TraitKind string

const (
	TraitSlot     TraitKind = "slot"
	TraitConst    TraitKind = "const"
	TraitMethod   TraitKind = "method"
	TraitGetter   TraitKind = "getter"
	TraitSetter   TraitKind = "setter"
	TraitClass    TraitKind = "class"
	TraitFunction TraitKind = "function"
)

// Trait describes one class or instance member. Traits are owned by the
// metadata that lists them; trait tables only reference them.
type Trait struct {
	Name       Multiname   `cbor:"name" yaml:"name"`
	Kind       TraitKind   `cbor:"kind" yaml:"kind"`
	Final      bool        `cbor:"final,omitempty" yaml:"final,omitempty"`
	Override   bool        `cbor:"override,omitempty" yaml:"override,omitempty"`
	SlotID     int         `cbor:"slot,omitempty" yaml:"slot,omitempty"`
	Type       *Multiname  `cbor:"type,omitempty" yaml:"type,omitempty"`
	Value      any         `cbor:"value,omitempty" yaml:"value,omitempty"`
	Method     *MethodInfo `cbor:"method,omitempty" yaml:"method,omitempty"`
	ClassIndex int         `cbor:"class,omitempty" yaml:"class,omitempty"`
}

func (t *Trait) IsSlot() bool     { return t.Kind == TraitSlot }
func (t *Trait) IsConst() bool    { return t.Kind == TraitConst }
func (t *Trait) IsMethod() bool   { return t.Kind == TraitMethod }
func (t *Trait) IsGetter() bool   { return t.Kind == TraitGetter }
func (t *Trait) IsSetter() bool   { return t.Kind == TraitSetter }
func (t *Trait) IsClass() bool    { return t.Kind == TraitClass }
func (t *Trait) IsFunction() bool { return t.Kind == TraitFunction }
func (t *Trait) IsFinal() bool    { return t.Final }
func (t *Trait) IsOverride() bool { return t.Override }

// IsProtected reports whether the trait is declared in a protected namespace.
func (t *Trait) IsProtected() bool {
	return t.Name.Namespace.Kind == NamespaceProtected
}

// KindName returns a display name for the trait kind.
func (t *Trait) KindName() string {
	switch t.Kind {
	case TraitSlot:
		return "Slot"
	case TraitConst:
		return "Const"
	case TraitMethod:
		return "Method"
	case TraitGetter:
		return "Getter"
	case TraitSetter:
		return "Setter"
	case TraitClass:
		return "Class"
	case TraitFunction:
		return "Function"
	}
	return "Unknown"
}

// String implements the Stringer interface.
func (t *Trait) String() string {
	s := ""
	if t.Final {
		s += "final "
	}
	if t.Override {
		s += "override "
	}
	return fmt.Sprintf("%s%s %s", s, t.Name.QualifiedName(), t.KindName())
}

// TraitKey returns the member key for a trait stored under the qualified
// name qn. Getters and setters sharing a base name get distinct keys from
// each other and from a data member of the same name.
func TraitKey(qn string, t *Trait) string {
	if t.IsGetter() {
		return "get " + qn
	}
	if t.IsSetter() {
		return "set " + qn
	}
	return qn
}

// ---------------------------------------------------------------------------
// Methods, instances, classes
// ---------------------------------------------------------------------------

// MethodInfo is a reference to a method body. The body itself is opaque to
// the class model and is turned into a callable by a function synthesizer.
type MethodInfo struct {
	Name       string `cbor:"name" yaml:"name"`
	ParamCount int    `cbor:"params,omitempty" yaml:"params,omitempty"`
	Native     bool   `cbor:"native,omitempty" yaml:"native,omitempty"`
	Body       []byte `cbor:"body,omitempty" yaml:"body,omitempty"`
}

// InstanceInfo describes the instance side of a class or interface.
type InstanceInfo struct {
	Name        Multiname   `cbor:"name" yaml:"name"`
	SuperName   *Multiname  `cbor:"super,omitempty" yaml:"super,omitempty"`
	ProtectedNs *Namespace  `cbor:"protectedNs,omitempty" yaml:"protectedNs,omitempty"`
	Interface   bool        `cbor:"interface,omitempty" yaml:"interface,omitempty"`
	Sealed      bool        `cbor:"sealed,omitempty" yaml:"sealed,omitempty"`
	Final       bool        `cbor:"final,omitempty" yaml:"final,omitempty"`
	Interfaces  []Multiname `cbor:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Init        *MethodInfo `cbor:"init,omitempty" yaml:"init,omitempty"`
	Traits      []*Trait    `cbor:"traits,omitempty" yaml:"traits,omitempty"`
}

// IsInterface reports whether the instance info describes an interface.
func (ii *InstanceInfo) IsInterface() bool {
	return ii.Interface
}

// String implements the Stringer interface.
func (ii *InstanceInfo) String() string {
	return ii.Name.String()
}

// NativeInfo names the native builder responsible for a class.
type NativeInfo struct {
	Class string `cbor:"cls" yaml:"cls"`
}

// ClassInfo describes the static side of a class and owns its instance info.
type ClassInfo struct {
	Instance *InstanceInfo `cbor:"instance" yaml:"instance"`
	Init     *MethodInfo   `cbor:"init,omitempty" yaml:"init,omitempty"`
	Traits   []*Trait      `cbor:"traits,omitempty" yaml:"traits,omitempty"`
	Native   *NativeInfo   `cbor:"native,omitempty" yaml:"native,omitempty"`
}

// IsNative reports whether the class is implemented by a native builder.
func (ci *ClassInfo) IsNative() bool {
	return ci.Native != nil && ci.Native.Class != ""
}

// IsInterface reports whether the class info describes an interface.
func (ci *ClassInfo) IsInterface() bool {
	return ci.Instance != nil && ci.Instance.Interface
}

// Name returns the instance name, which is the class's name.
func (ci *ClassInfo) Name() Multiname {
	if ci == nil || ci.Instance == nil {
		return Multiname{}
	}
	return ci.Instance.Name
}

// String implements the Stringer interface.
func (ci *ClassInfo) String() string {
	return ci.Name().String() + "$"
}

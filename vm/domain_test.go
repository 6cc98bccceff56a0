package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/avm2/abc"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func pub(name string) abc.Multiname {
	return abc.PublicName(name)
}

func protectedNs(uri string) *abc.Namespace {
	return &abc.Namespace{Kind: abc.NamespaceProtected, URI: uri}
}

func method(name string) *abc.Trait {
	return &abc.Trait{Name: pub(name), Kind: abc.TraitMethod, Method: &abc.MethodInfo{Name: name}}
}

func slot(name string, value any) *abc.Trait {
	return &abc.Trait{Name: pub(name), Kind: abc.TraitSlot, Value: value}
}

func getter(name string) *abc.Trait {
	return &abc.Trait{Name: pub(name), Kind: abc.TraitGetter, Method: &abc.MethodInfo{Name: "get " + name}}
}

func setter(name string) *abc.Trait {
	return &abc.Trait{Name: pub(name), Kind: abc.TraitSetter, Method: &abc.MethodInfo{Name: "set " + name}}
}

func final(t *abc.Trait) *abc.Trait {
	t.Final = true
	return t
}

func override(t *abc.Trait) *abc.Trait {
	t.Override = true
	return t
}

// classInfo describes a script class. An empty super makes a root.
func classInfo(name, super string, traits ...*abc.Trait) *abc.ClassInfo {
	ii := &abc.InstanceInfo{
		Name:        pub(name),
		ProtectedNs: protectedNs(name),
		Init:        &abc.MethodInfo{Name: name},
		Traits:      traits,
	}
	if super != "" {
		s := pub(super)
		ii.SuperName = &s
	}
	return &abc.ClassInfo{Instance: ii}
}

func interfaceInfo(name string, supers []string, traits ...*abc.Trait) *abc.ClassInfo {
	ii := &abc.InstanceInfo{
		Name:      pub(name),
		Interface: true,
		Traits:    traits,
	}
	for _, s := range supers {
		ii.Interfaces = append(ii.Interfaces, pub(s))
	}
	return &abc.ClassInfo{Instance: ii}
}

func implements(ci *abc.ClassInfo, names ...string) *abc.ClassInfo {
	for _, n := range names {
		ci.Instance.Interfaces = append(ci.Instance.Interfaces, pub(n))
	}
	return ci
}

func nativeInfo(ci *abc.ClassInfo, native string) *abc.ClassInfo {
	ci.Native = &abc.NativeInfo{Class: native}
	return ci
}

// rootBundle is the smallest library a script class can extend.
func rootBundle() *abc.Bundle {
	prototype := getter("prototype")
	prototype.Method.Native = true
	return &abc.Bundle{
		Name: "root",
		Classes: []*abc.ClassInfo{
			nativeInfo(classInfo("Object", "", getter("length")), NativeObject),
			nativeInfo(classInfo("Class", "Object", prototype), NativeClass),
			nativeInfo(classInfo("Error", "Object"), NativeError),
		},
	}
}

func newTestDomain(t *testing.T, opts Options) (*Domain, *BodyTable) {
	t.Helper()
	bodies := NewBodyTable()
	natives := NewNativeCatalog()
	RegisterBuiltins(natives)
	d := NewDomain(Config{Options: opts, Natives: natives, Synthesizer: bodies})
	if _, err := d.LoadBundle(rootBundle(), NewScope(nil, nil)); err != nil {
		t.Fatalf("LoadBundle(root) failed: %v", err)
	}
	return d, bodies
}

func defineClass(t *testing.T, d *Domain, ci *abc.ClassInfo) *Class {
	t.Helper()
	typ, err := d.Define(ci, NewScope(nil, nil))
	if err != nil {
		t.Fatalf("Define(%s) failed: %v", ci.Name(), err)
	}
	c, ok := typ.(*Class)
	if !ok {
		t.Fatalf("Define(%s) = %T, want *Class", ci.Name(), typ)
	}
	return c
}

func wantViolation(t *testing.T, err error, v Violation) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %q error, got nil", v)
	}
	if !errors.Is(err, &InvariantError{Violation: v}) {
		t.Fatalf("error = %v, want violation %q", err, v)
	}
}

// ---------------------------------------------------------------------------
// Registry tests
// ---------------------------------------------------------------------------

func TestNewDomain(t *testing.T) {
	d := NewDomain(Config{})
	if d.ID() == "" {
		t.Error("domain should have an ID")
	}
	if other := NewDomain(Config{}); other.ID() == d.ID() {
		t.Error("two domains share an ID")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
	if d.Natives() == nil || d.MetaClass() == nil {
		t.Error("defaults should be filled in")
	}
}

func TestDomainRegisterLookup(t *testing.T) {
	d, _ := newTestDomain(t, Options{Verify: true})

	object := d.Class("public$Object")
	if object == nil {
		t.Fatal("Object not registered")
	}
	if d.Lookup("public$Object") != Type(object) {
		t.Error("Lookup and Class disagree")
	}
	if d.Interface("public$Object") != nil {
		t.Error("Object is not an interface")
	}
	if d.Class("public$Nothing") != nil {
		t.Error("unknown name should return nil")
	}

	if old := d.Register(object); old != Type(object) {
		t.Errorf("re-Register returned %v, want the previous type", old)
	}
	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
}

func TestDomainResolveUnknown(t *testing.T) {
	d := NewDomain(Config{})
	_, err := d.Resolve(pub("Missing"))
	wantViolation(t, err, ViolationUnresolvedType)
}

// ---------------------------------------------------------------------------
// Bundle loading tests
// ---------------------------------------------------------------------------

func TestLoadBundleOrdersDependencies(t *testing.T) {
	d, _ := newTestDomain(t, Options{Verify: true})

	// Dependents listed before their dependencies.
	b := &abc.Bundle{
		Name: "shapes",
		Classes: []*abc.ClassInfo{
			classInfo("Square", "Rect"),
			implements(classInfo("Rect", "Shape", method("draw")), "IDrawable"),
			classInfo("Shape", "Object"),
			interfaceInfo("IDrawable", nil, method("draw")),
		},
	}

	created, err := d.LoadBundle(b, NewScope(nil, nil))
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("created %d types, want 4", len(created))
	}

	pos := make(map[string]int)
	for i, typ := range created {
		pos[typ.Name().Name] = i
	}
	if pos["Shape"] > pos["Rect"] || pos["Rect"] > pos["Square"] {
		t.Errorf("bases must come first, got order %v", pos)
	}
	if pos["IDrawable"] > pos["Rect"] {
		t.Errorf("interface must precede implementer, got order %v", pos)
	}

	square := d.Class("public$Square")
	if !square.ImplementsInterface("public$IDrawable") {
		t.Error("Square should inherit IDrawable from Rect")
	}
}

func TestLoadBundleCycle(t *testing.T) {
	d, _ := newTestDomain(t, Options{})
	b := &abc.Bundle{
		Name: "cycle",
		Classes: []*abc.ClassInfo{
			classInfo("A", "B"),
			classInfo("B", "A"),
		},
	}
	_, err := d.LoadBundle(b, NewScope(nil, nil))
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("LoadBundle error = %v, want inheritance cycle", err)
	}
	if d.Class("public$A") != nil || d.Class("public$B") != nil {
		t.Error("nothing from a cyclic bundle should be registered")
	}
}

func TestLoadBundleUnresolvedBase(t *testing.T) {
	d, _ := newTestDomain(t, Options{})
	b := &abc.Bundle{
		Name:    "orphan",
		Classes: []*abc.ClassInfo{classInfo("Orphan", "Missing")},
	}
	_, err := d.LoadBundle(b, NewScope(nil, nil))
	wantViolation(t, err, ViolationUnresolvedType)
}

func TestDefineUnregisteredNative(t *testing.T) {
	d, _ := newTestDomain(t, Options{})
	_, err := d.Define(nativeInfo(classInfo("Vector", "Object"), "VectorClass"), NewScope(nil, nil))
	wantViolation(t, err, ViolationUnregisteredNative)
	if d.Class("public$Vector") != nil {
		t.Error("failed class should not be registered")
	}
}

func TestDefineNativeMethodWithoutHook(t *testing.T) {
	d, _ := newTestDomain(t, Options{})
	m := method("hash")
	m.Method.Native = true
	_, err := d.Define(classInfo("Hashed", "Object", m), NewScope(nil, nil))
	wantViolation(t, err, ViolationUnregisteredNative)
}

func TestDefineExtendsInterface(t *testing.T) {
	d, _ := newTestDomain(t, Options{})
	defineInterface(t, d, interfaceInfo("IThing", nil))
	_, err := d.Define(classInfo("Thing", "IThing"), NewScope(nil, nil))
	wantViolation(t, err, ViolationUnresolvedType)
}

func TestDefineImplementsClass(t *testing.T) {
	d, _ := newTestDomain(t, Options{})
	_, err := d.Define(implements(classInfo("Thing", "Object"), "Object"), NewScope(nil, nil))
	wantViolation(t, err, ViolationUnresolvedType)
}

func TestDomainTypesOrder(t *testing.T) {
	d, _ := newTestDomain(t, Options{})
	var names []string
	for _, typ := range d.Types() {
		names = append(names, typ.Name().Name)
	}
	if got := strings.Join(names, ","); got != "Object,Class,Error" {
		t.Errorf("Types() = %s, want Object,Class,Error", got)
	}
}

func TestDomainTrace(t *testing.T) {
	d, _ := newTestDomain(t, Options{TraceExecution: true})
	defineClass(t, d, classInfo("Point", "Object", slot("x", 0)))

	var buf bytes.Buffer
	d.Trace(NewTraceWriter(&buf))
	out := buf.String()

	for _, want := range []string{
		"domain " + d.ID(),
		"class Point extends Object {",
		"  dynamicPrototype === traitsPrototype: false",
		"Slot: public$x -> public$x Slot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trace missing %q:\n%s", want, out)
		}
	}
}

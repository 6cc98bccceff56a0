package vm

import (
	"reflect"
	"testing"

	"github.com/chazu/avm2/abc"
)

func TestNativeCatalog(t *testing.T) {
	cat := NewNativeCatalog()
	b1 := func(nc *NativeContext) (*Class, error) { return nil, nil }

	if old := cat.Register("B", b1); old != nil {
		t.Error("first Register should return nil")
	}
	cat.Register("A", b1)
	if old := cat.Register("B", b1); old == nil {
		t.Error("re-Register should return the previous builder")
	}
	if got := cat.Names(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Names() = %v, want [A B]", got)
	}
	if _, ok := cat.Lookup("C"); ok {
		t.Error("Lookup(C) should fail")
	}
}

func TestNativeBuilderReturningNil(t *testing.T) {
	cat := NewNativeCatalog()
	cat.Register("Broken", func(nc *NativeContext) (*Class, error) { return nil, nil })
	d := NewDomain(Config{Natives: cat})

	_, err := d.Define(nativeInfo(classInfo("Broken", ""), "Broken"), NewScope(nil, nil))
	wantViolation(t, err, ViolationStructuralMismatch)
}

func TestNativeHooksReplaceBodies(t *testing.T) {
	d, _ := newTestDomain(t, Options{Verify: true})
	d.Natives().Register("CounterClass", func(nc *NativeContext) (*Class, error) {
		c := nc.NewClass(nil)
		if err := c.Extend(nc.Base); err != nil {
			return nil, err
		}
		c.LinkNatives(&Definition{Glue: &Glue{Native: &NativeBindings{
			Instance: map[string]*NativeHook{
				"next": {Method: func(Value, []Value) Value { return 42 }},
			},
			Static: map[string]*NativeHook{
				"zero": {Get: func(Value, []Value) Value { return 0 }},
			},
		}}})
		return c, nil
	})

	next := method("next")
	next.Method.Native = true
	ci := nativeInfo(classInfo("Counter", "Object", next), "CounterClass")
	zero := getter("zero")
	zero.Method.Native = true
	ci.Traits = []*abc.Trait{zero}
	counter := defineClass(t, d, ci)

	fn, ok := counter.CreateInstance().Get("public$next").(*Function)
	if !ok {
		t.Fatal("native method not installed")
	}
	if got := fn.Call(nil); got != 42 {
		t.Errorf("next() = %v, want 42", got)
	}
	if got := counter.Properties().Get("public$zero"); got != 0 {
		t.Errorf("zero = %v, want 0", got)
	}
}

func TestInstallUnknownTraitKind(t *testing.T) {
	in := &DefaultInstaller{Synthesizer: NewBodyTable()}
	bad := &abc.Trait{Name: pub("odd"), Kind: "bogus"}
	_, err := in.ApplyInstanceTraits(NewObject(nil), nil, []*abc.Trait{bad}, nil)
	wantViolation(t, err, ViolationStructuralMismatch)
}

func TestInstallClassTrait(t *testing.T) {
	in := &DefaultInstaller{Synthesizer: NewBodyTable()}
	obj := NewObject(nil)
	nested := &abc.Trait{Name: pub("Inner"), Kind: abc.TraitClass}
	b, err := in.ApplyClassTraits(obj, nil, []*abc.Trait{nested, method("noBody")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := obj.OwnProperty("public$Inner"); !ok || p.Value != nil {
		t.Error("class trait should install a null slot")
	}
	if len(b.Slots) != 1 || !reflect.DeepEqual(b.Keys, []string{"public$Inner", "public$noBody"}) {
		t.Errorf("bindings = %+v", b)
	}
	fn, ok := obj.Get("public$noBody").(*Function)
	if !ok || !IsUndefined(fn.Call(nil)) {
		t.Error("method with an unknown body should be an empty function")
	}
}

package abc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func sampleBundle() *Bundle {
	super := PublicName("Object")
	return &Bundle{
		Name: "sample",
		Classes: []*ClassInfo{
			{
				Instance: &InstanceInfo{
					Name:        PublicName("Point"),
					SuperName:   &super,
					ProtectedNs: &Namespace{Kind: NamespaceProtected, URI: "Point"},
					Init:        &MethodInfo{Name: "Point", ParamCount: 2},
					Traits: []*Trait{
						{Name: PublicName("x"), Kind: TraitSlot, SlotID: 1, Value: "zero"},
						{Name: PublicName("norm"), Kind: TraitMethod, Final: true, Method: &MethodInfo{Name: "Point.norm"}},
					},
				},
				Traits: []*Trait{
					{Name: PublicName("origin"), Kind: TraitConst},
				},
			},
		},
	}
}

func TestMarshalBundleDeterministic(t *testing.T) {
	a, err := MarshalBundle(sampleBundle())
	if err != nil {
		t.Fatalf("MarshalBundle failed: %v", err)
	}
	b, err := MarshalBundle(sampleBundle())
	if err != nil {
		t.Fatalf("MarshalBundle failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical bundles encoded to different bytes")
	}
}

func TestUnmarshalBundle(t *testing.T) {
	data, err := MarshalBundle(sampleBundle())
	if err != nil {
		t.Fatalf("MarshalBundle failed: %v", err)
	}
	b, err := UnmarshalBundle(data)
	if err != nil {
		t.Fatalf("UnmarshalBundle failed: %v", err)
	}

	ci := b.Lookup("public$Point")
	if ci == nil {
		t.Fatal("Lookup(public$Point) = nil")
	}
	if ci.Instance.SuperName == nil || ci.Instance.SuperName.Name != "Object" {
		t.Errorf("SuperName = %v, want Object", ci.Instance.SuperName)
	}
	if len(ci.Instance.Traits) != 2 {
		t.Fatalf("instance traits = %d, want 2", len(ci.Instance.Traits))
	}
	if !ci.Instance.Traits[1].Final {
		t.Error("norm should stay final")
	}
	if ci.Instance.Traits[1].Method.Name != "Point.norm" {
		t.Errorf("method name = %q, want Point.norm", ci.Instance.Traits[1].Method.Name)
	}
}

func TestUnmarshalBundleGarbage(t *testing.T) {
	if _, err := UnmarshalBundle([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("expected error for garbage input")
	}
}

const pointYAML = `
name: shapes
classes:
  - instance:
      name: {ns: {kind: public}, name: Shape}
      super: {ns: {kind: public}, name: Object}
      interfaces:
        - {ns: {kind: public}, name: IDrawable}
      traits:
        - name: {ns: {kind: public}, name: draw}
          kind: method
          method: {name: Shape.draw}
        - name: {ns: {kind: protected, uri: Shape}, name: area}
          kind: getter
          override: true
    native: {cls: ShapeClass}
`

func TestParseBundleYAML(t *testing.T) {
	b, err := ParseBundleYAML([]byte(pointYAML))
	if err != nil {
		t.Fatalf("ParseBundleYAML failed: %v", err)
	}
	if b.Name != "shapes" {
		t.Errorf("Name = %q, want shapes", b.Name)
	}
	ci := b.Lookup("public$Shape")
	if ci == nil {
		t.Fatal("Lookup(public$Shape) = nil")
	}
	if !ci.IsNative() || ci.Native.Class != "ShapeClass" {
		t.Errorf("Native = %v, want ShapeClass", ci.Native)
	}
	if len(ci.Instance.Interfaces) != 1 || ci.Instance.Interfaces[0].Name != "IDrawable" {
		t.Errorf("Interfaces = %v, want [IDrawable]", ci.Instance.Interfaces)
	}
	area := ci.Instance.Traits[1]
	if !area.IsGetter() || !area.IsOverride() || !area.IsProtected() {
		t.Errorf("area trait = %v, want protected override getter", area)
	}
	if got := area.Name.QualifiedName(); got != "protectedShape$area" {
		t.Errorf("area qualified name = %q", got)
	}
}

func TestParseBundleYAMLMissingInstance(t *testing.T) {
	_, err := ParseBundleYAML([]byte("name: broken\nclasses:\n  - traits: []\n"))
	if err == nil {
		t.Error("expected error for class without instance info")
	}
}

func TestLoadBundleFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "shapes.yaml")
	if err := os.WriteFile(yamlPath, []byte(pointYAML), 0644); err != nil {
		t.Fatal(err)
	}
	b, err := LoadBundleFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadBundleFile(yaml) failed: %v", err)
	}
	if len(b.Classes) != 1 {
		t.Errorf("classes = %d, want 1", len(b.Classes))
	}

	unnamed := sampleBundle()
	unnamed.Name = ""
	data, err := MarshalBundle(unnamed)
	if err != nil {
		t.Fatal(err)
	}
	cborPath := filepath.Join(dir, "points.cbor")
	if err := os.WriteFile(cborPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	b, err = LoadBundleFile(cborPath)
	if err != nil {
		t.Fatalf("LoadBundleFile(cbor) failed: %v", err)
	}
	if b.Name != "points" {
		t.Errorf("Name = %q, want points (from file name)", b.Name)
	}

	if _, err := LoadBundleFile(filepath.Join(dir, "missing.cbor")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarshalBundleYAML(t *testing.T) {
	data, err := MarshalBundleYAML(sampleBundle())
	if err != nil {
		t.Fatalf("MarshalBundleYAML failed: %v", err)
	}
	b, err := ParseBundleYAML(data)
	if err != nil {
		t.Fatalf("ParseBundleYAML failed: %v", err)
	}
	if b.Lookup("public$Point") == nil {
		t.Error("Point lost in YAML round trip")
	}
}

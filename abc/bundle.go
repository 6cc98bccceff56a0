package abc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Bundle is a unit of class metadata handed to a domain in one load.
type Bundle struct {
	Name    string       `cbor:"name" yaml:"name"`
	Classes []*ClassInfo `cbor:"classes" yaml:"classes"`
}

// Lookup returns the class info whose qualified name is qn, or nil.
func (b *Bundle) Lookup(qn string) *ClassInfo {
	for _, ci := range b.Classes {
		if ci.Name().QualifiedName() == qn {
			return ci
		}
	}
	return nil
}

// Canonical CBOR so that identical metadata always encodes to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("abc: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalBundle serializes a Bundle to CBOR bytes.
func MarshalBundle(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// UnmarshalBundle deserializes a Bundle from CBOR bytes.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("abc: unmarshal bundle: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ParseBundleYAML parses a human-written YAML bundle.
func ParseBundleYAML(data []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("abc: parse yaml bundle: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// MarshalBundleYAML serializes a Bundle to YAML.
func MarshalBundleYAML(b *Bundle) ([]byte, error) {
	return yaml.Marshal(b)
}

// LoadBundleFile reads a bundle from disk. Files ending in .yaml or .yml are
// parsed as YAML, everything else as CBOR.
func LoadBundleFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var b *Bundle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = ParseBundleYAML(data)
	default:
		b, err = UnmarshalBundle(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if b.Name == "" {
		b.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return b, nil
}

// validate rejects bundles the class model cannot start from. Deeper checks
// are the verifier's job and happen before metadata gets here.
func (b *Bundle) validate() error {
	for i, ci := range b.Classes {
		if ci == nil || ci.Instance == nil {
			return fmt.Errorf("abc: class %d in bundle %q has no instance info", i, b.Name)
		}
		if ci.Instance.Name.Name == "" {
			return fmt.Errorf("abc: class %d in bundle %q has no name", i, b.Name)
		}
	}
	return nil
}

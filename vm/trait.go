package vm

import (
	"github.com/chazu/avm2/abc"
)

// ---------------------------------------------------------------------------
// Traits: member key -> trait descriptor
// ---------------------------------------------------------------------------

// Traits maps member keys (see abc.TraitKey) to trait descriptors. Keys are
// unique; inserting an existing key replaces its trait in place.
type Traits struct {
	m    map[string]*abc.Trait
	keys []string
}

func newTraits() Traits {
	return Traits{m: make(map[string]*abc.Trait)}
}

// Insert adds or replaces the trait stored under key.
func (t *Traits) Insert(key string, trait *abc.Trait) {
	if _, ok := t.m[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.m[key] = trait
}

// Lookup returns the trait stored under key.
func (t *Traits) Lookup(key string) (*abc.Trait, bool) {
	trait, ok := t.m[key]
	return trait, ok
}

// Has returns true if key is present.
func (t *Traits) Has(key string) bool {
	_, ok := t.m[key]
	return ok
}

// Len returns the number of keys.
func (t *Traits) Len() int {
	return len(t.keys)
}

// Keys returns all keys in insertion order.
func (t *Traits) Keys() []string {
	result := make([]string, len(t.keys))
	copy(result, t.keys)
	return result
}

// Each calls fn for every entry in insertion order.
func (t *Traits) Each(fn func(key string, trait *abc.Trait)) {
	for _, k := range t.keys {
		fn(k, t.m[k])
	}
}

// Trace writes one line per entry.
func (t *Traits) Trace(w *TraceWriter) {
	t.Each(func(key string, trait *abc.Trait) {
		w.WriteLn(trait.KindName() + ": " + key + " -> " + trait.String())
	})
}

// ---------------------------------------------------------------------------
// ClassTraits: static members
// ---------------------------------------------------------------------------

// ClassTraits is the static member table of one class. Static members are not
// inherited, so it only ever holds the class's own traits.
type ClassTraits struct {
	Traits
	classInfo *abc.ClassInfo
}

// NewClassTraits builds the static member table for ci.
func NewClassTraits(ci *abc.ClassInfo) *ClassTraits {
	ct := &ClassTraits{Traits: newTraits(), classInfo: ci}
	for _, trait := range ci.Traits {
		ct.Insert(abc.TraitKey(trait.Name.QualifiedName(), trait), trait)
	}
	return ct
}

// ClassInfo returns the metadata the table was built from.
func (ct *ClassTraits) ClassInfo() *abc.ClassInfo {
	return ct.classInfo
}

// ---------------------------------------------------------------------------
// InstanceTraits: merged, override-checked instance members
// ---------------------------------------------------------------------------

// InstanceTraits is the flattened instance member table of a class or
// interface: inherited traits, own traits and implemented-interface aliases.
type InstanceTraits struct {
	Traits
	parent       *InstanceTraits
	instanceInfo *abc.InstanceInfo
}

// legacyLengthName may be replaced by a subclass without the override flag.
// The root Object class of the builtin library declares a length member that
// Array and friends redefine; the bootstrap order of that library predates
// override checking.
const legacyLengthName = "length"

// NewInstanceTraits builds the instance member table for ii on top of the
// parent class's table (nil for a root). resolver is consulted for the tables
// of implemented interfaces.
func NewInstanceTraits(parent *InstanceTraits, ii *abc.InstanceInfo, resolver TypeResolver) (*InstanceTraits, error) {
	it := &InstanceTraits{Traits: newTraits(), parent: parent, instanceInfo: ii}
	if err := it.extend(resolver); err != nil {
		return nil, err
	}
	return it, nil
}

// Parent returns the table this one was derived from.
func (it *InstanceTraits) Parent() *InstanceTraits {
	return it.parent
}

// InstanceInfo returns the metadata the table was built from.
func (it *InstanceTraits) InstanceInfo() *abc.InstanceInfo {
	return it.instanceInfo
}

// String implements the Stringer interface.
func (it *InstanceTraits) String() string {
	return it.instanceInfo.String()
}

func protectedKey(ns abc.Namespace, trait *abc.Trait) string {
	return abc.TraitKey(abc.QualifiedName(ns, trait.Name.Name), trait)
}

func (it *InstanceTraits) extend(resolver TypeResolver) error {
	ii := it.instanceInfo

	// Inherit parent traits. Protected ones are also reachable through this
	// class's own protected namespace.
	if it.parent != nil {
		for _, key := range it.parent.keys {
			trait := it.parent.m[key]
			it.Insert(key, trait)
			if trait.IsProtected() && ii.ProtectedNs != nil {
				it.Insert(protectedKey(*ii.ProtectedNs, trait), trait)
			}
		}
	}

	// Own traits.
	for _, trait := range ii.Traits {
		key := abc.TraitKey(trait.Name.QualifiedName(), trait)
		if err := it.writeOrOverwrite(key, trait); err != nil {
			return err
		}
		if trait.IsProtected() {
			// Refresh aliases an ancestor's protected namespace already has.
			for anc := it.parent; anc != nil; anc = anc.parent {
				if anc.instanceInfo.ProtectedNs == nil {
					continue
				}
				pk := protectedKey(*anc.instanceInfo.ProtectedNs, trait)
				if it.Has(pk) {
					it.Insert(pk, trait)
				}
			}
		}
	}

	if ii.IsInterface() {
		return nil
	}

	// Interface keys alias whatever the class resolves the public name to.
	for _, name := range ii.Interfaces {
		t, err := resolver.Resolve(name)
		if err != nil {
			return err
		}
		iface, ok := t.(*Interface)
		if !ok {
			return invariant(ViolationUnresolvedType, name.QualifiedName(),
				"%s implements %s, which is not an interface", ii.Name, name)
		}
		iface.instanceTraits.Each(func(ikey string, itrait *abc.Trait) {
			pkey := abc.TraitKey(abc.PublicQualifiedName(itrait.Name.Name), itrait)
			if impl, ok := it.Lookup(pkey); ok {
				it.Insert(ikey, impl)
			}
		})
	}
	return nil
}

func (it *InstanceTraits) writeOrOverwrite(key string, trait *abc.Trait) error {
	if old, ok := it.Lookup(key); ok {
		if old.IsFinal() {
			return invariant(ViolationRedefineFinal, trait.String(), "in %s", it.instanceInfo.Name)
		}
		if !trait.IsOverride() && trait.Name.Name != legacyLengthName {
			return invariant(ViolationSpuriousOverride, trait.String(), "in %s", it.instanceInfo.Name)
		}
	} else if trait.IsOverride() {
		return invariant(ViolationMissingOverride, trait.String(), "in %s", it.instanceInfo.Name)
	}
	it.Insert(key, trait)
	return nil
}

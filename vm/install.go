package vm

import "github.com/chazu/avm2/abc"

// TraitInstaller materializes traits as concrete properties of a
// delegation-layer object, substituting native hooks where present.
type TraitInstaller interface {
	ApplyInstanceTraits(obj *Object, scope *Scope, traits []*abc.Trait, natives map[string]*NativeHook) (*Bindings, error)
	ApplyClassTraits(obj *Object, scope *Scope, traits []*abc.Trait, natives map[string]*NativeHook) (*Bindings, error)
}

// DefaultInstaller installs slots and constants as data properties, methods
// and functions as hidden function values, and getters/setters as accessor
// pairs keyed by the member's qualified name.
type DefaultInstaller struct {
	Synthesizer FunctionSynthesizer
}

// ApplyInstanceTraits implements TraitInstaller.
func (in *DefaultInstaller) ApplyInstanceTraits(obj *Object, scope *Scope, traits []*abc.Trait, natives map[string]*NativeHook) (*Bindings, error) {
	return in.apply(obj, scope, traits, natives)
}

// ApplyClassTraits implements TraitInstaller.
func (in *DefaultInstaller) ApplyClassTraits(obj *Object, scope *Scope, traits []*abc.Trait, natives map[string]*NativeHook) (*Bindings, error) {
	return in.apply(obj, scope, traits, natives)
}

func (in *DefaultInstaller) apply(obj *Object, scope *Scope, traits []*abc.Trait, natives map[string]*NativeHook) (*Bindings, error) {
	b := &Bindings{}
	for _, trait := range traits {
		qn := trait.Name.QualifiedName()
		hook := natives[trait.Name.Name]

		switch trait.Kind {
		case abc.TraitSlot, abc.TraitConst:
			var v Value = Undefined
			if trait.Value != nil {
				v = trait.Value
			}
			obj.DefineProperty(qn, Property{Value: v})
			b.Slots = append(b.Slots, trait)

		case abc.TraitClass:
			// Bound to the class value once the domain defines it.
			obj.DefineProperty(qn, Property{Value: nil})
			b.Slots = append(b.Slots, trait)

		case abc.TraitMethod, abc.TraitFunction:
			fn, err := in.function(trait, hookFunc(hook, trait), scope)
			if err != nil {
				return nil, err
			}
			obj.DefineHidden(qn, fn)

		case abc.TraitGetter, abc.TraitSetter:
			fn, err := in.function(trait, hookFunc(hook, trait), scope)
			if err != nil {
				return nil, err
			}
			p := Property{Hidden: true}
			if old, ok := obj.OwnProperty(qn); ok && old.IsAccessor() {
				p = *old
			}
			if trait.IsGetter() {
				p.Getter = fn
			} else {
				p.Setter = fn
			}
			obj.DefineProperty(qn, p)

		default:
			return nil, invariant(ViolationStructuralMismatch, trait.String(), "unknown trait kind %q", trait.Kind)
		}
		b.Keys = append(b.Keys, abc.TraitKey(qn, trait))
	}
	return b, nil
}

func hookFunc(hook *NativeHook, trait *abc.Trait) NativeFunc {
	if hook == nil {
		return nil
	}
	switch trait.Kind {
	case abc.TraitGetter:
		return hook.Get
	case abc.TraitSetter:
		return hook.Set
	}
	return hook.Method
}

func (in *DefaultInstaller) function(trait *abc.Trait, native NativeFunc, scope *Scope) (*Function, error) {
	if native != nil {
		return NewFunction(trait.Name.Name, native, nil), nil
	}
	if trait.Method == nil {
		return NewFunction(trait.Name.Name, nil, nil), nil
	}
	if trait.Method.Native {
		return nil, invariant(ViolationUnregisteredNative, trait.String(), "no native hook for method")
	}
	return in.Synthesizer.CreateFunction(trait.Method, scope), nil
}

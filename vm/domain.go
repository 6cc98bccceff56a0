package vm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/avm2/abc"
)

var log = commonlog.GetLogger("avm2.vm")

// Type is a registered class or interface.
type Type interface {
	Name() abc.Multiname
	InstanceTraits() *InstanceTraits
	IsInstance(v Value) bool
	Call(this Value, args ...Value) Value
	Apply(this Value, args []Value) Value
	Trace(w *TraceWriter)
	String() string
}

// TypeResolver resolves a name to an already constructed type.
type TypeResolver interface {
	Resolve(name abc.Multiname) (Type, error)
}

// Options control optional domain behavior.
type Options struct {
	// TraceExecution logs class and interface creation at info level.
	TraceExecution bool
	// Verify runs the structural verifier on every class before registering it.
	Verify bool
}

// Config carries the collaborators a domain builds classes with. Nil fields
// get defaults.
type Config struct {
	Options     Options
	Natives     *NativeCatalog
	Synthesizer FunctionSynthesizer
	Installer   TraitInstaller
	Coercion    CoercionBuilder
}

// ---------------------------------------------------------------------------
// Domain: class registry and construction authority
// ---------------------------------------------------------------------------

// Domain owns every class and interface loaded into it and decides the order
// they are constructed in: base before derived, interfaces before
// implementers.
type Domain struct {
	id uuid.UUID

	mu    sync.RWMutex
	types map[string]Type
	order []string

	opts      Options
	natives   *NativeCatalog
	synth     FunctionSynthesizer
	installer TraitInstaller
	coercion  CoercionBuilder

	// metaClass is the Class-of-classes; every class object delegates to its
	// template.
	metaClass *Function
}

// NewDomain creates an empty domain.
func NewDomain(cfg Config) *Domain {
	d := &Domain{
		id:        uuid.New(),
		types:     make(map[string]Type),
		opts:      cfg.Options,
		natives:   cfg.Natives,
		synth:     cfg.Synthesizer,
		installer: cfg.Installer,
		coercion:  cfg.Coercion,
	}
	if d.natives == nil {
		d.natives = NewNativeCatalog()
	}
	if d.synth == nil {
		d.synth = NewBodyTable()
	}
	if d.installer == nil {
		d.installer = &DefaultInstaller{Synthesizer: d.synth}
	}
	if d.coercion == nil {
		d.coercion = CoerceCallable
	}
	d.metaClass = NewFunction("Class", func(_ Value, args []Value) Value {
		return firstArg(args)
	}, nil)
	return d
}

// ID returns the unique identity of this domain.
func (d *Domain) ID() string {
	return d.id.String()
}

// Options returns the domain options.
func (d *Domain) Options() Options {
	return d.opts
}

// Natives returns the native catalog.
func (d *Domain) Natives() *NativeCatalog {
	return d.natives
}

// MetaClass returns the Class-of-classes function.
func (d *Domain) MetaClass() *Function {
	return d.metaClass
}

func (d *Domain) tracef(format string, args ...any) {
	if d.opts.TraceExecution {
		log.Infof(format, args...)
	} else {
		log.Debugf(format, args...)
	}
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Register adds a type to the domain. Returns the previous type with the
// same qualified name, or nil.
func (d *Domain) Register(t Type) Type {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := t.Name().QualifiedName()
	old, ok := d.types[key]
	if !ok {
		d.order = append(d.order, key)
	}
	d.types[key] = t
	return old
}

// Lookup finds a type by qualified name.
func (d *Domain) Lookup(qn string) Type {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.types[qn]
}

// Resolve implements TypeResolver.
func (d *Domain) Resolve(name abc.Multiname) (Type, error) {
	qn := name.QualifiedName()
	if t := d.Lookup(qn); t != nil {
		return t, nil
	}
	return nil, invariant(ViolationUnresolvedType, qn, "%s is not defined in domain %s", name, d.ID())
}

// Class finds a class by qualified name, or nil.
func (d *Domain) Class(qn string) *Class {
	c, _ := d.Lookup(qn).(*Class)
	return c
}

// Interface finds an interface by qualified name, or nil.
func (d *Domain) Interface(qn string) *Interface {
	i, _ := d.Lookup(qn).(*Interface)
	return i
}

// Types returns every registered type in registration order.
func (d *Domain) Types() []Type {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Type, 0, len(d.order))
	for _, key := range d.order {
		result = append(result, d.types[key])
	}
	return result
}

// Len returns the number of registered types.
func (d *Domain) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.types)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Define constructs the type described by ci in scope and registers it. The
// base class and implemented interfaces must already be registered.
func (d *Domain) Define(ci *abc.ClassInfo, scope *Scope) (Type, error) {
	if ci.IsInterface() {
		iface, err := d.CreateInterface(ci)
		if err != nil {
			return nil, err
		}
		d.Register(iface)
		return iface, nil
	}

	var base *Class
	if super := ci.Instance.SuperName; super != nil {
		t, err := d.Resolve(*super)
		if err != nil {
			return nil, err
		}
		c, ok := t.(*Class)
		if !ok {
			return nil, invariant(ViolationUnresolvedType, super.QualifiedName(),
				"%s extends a non-class", ci.Name())
		}
		base = c
	}

	cls, err := d.CreateClass(ci, base, scope)
	if err != nil {
		return nil, err
	}
	if d.opts.Verify {
		if err := cls.Verify(); err != nil {
			return nil, err
		}
	}
	d.Register(cls)
	return cls, nil
}

// LoadBundle defines every class of b in dependency order. It stops at the
// first failure; types defined before it stay registered.
func (d *Domain) LoadBundle(b *abc.Bundle, scope *Scope) ([]Type, error) {
	order, err := d.sortBundle(b)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", b.Name, err)
	}

	var created []Type
	for _, ci := range order {
		t, err := d.Define(ci, scope)
		if err != nil {
			return created, fmt.Errorf("load %s: %w", b.Name, err)
		}
		created = append(created, t)
	}
	log.Infof("loaded %d types from %s into domain %s", len(created), b.Name, d.ID())
	return created, nil
}

// sortBundle orders the classes of b so every base class and interface comes
// before its dependents. Names outside the bundle must already be registered.
func (d *Domain) sortBundle(b *abc.Bundle) ([]*abc.ClassInfo, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	byName := make(map[string]*abc.ClassInfo, len(b.Classes))
	for _, ci := range b.Classes {
		byName[ci.Name().QualifiedName()] = ci
	}

	var order []*abc.ClassInfo
	var visit func(ci *abc.ClassInfo) error
	visit = func(ci *abc.ClassInfo) error {
		qn := ci.Name().QualifiedName()
		switch state[qn] {
		case visiting:
			return fmt.Errorf("inheritance cycle through %s", ci.Name())
		case done:
			return nil
		}
		state[qn] = visiting

		var deps []abc.Multiname
		if ci.Instance.SuperName != nil {
			deps = append(deps, *ci.Instance.SuperName)
		}
		deps = append(deps, ci.Instance.Interfaces...)
		for _, dep := range deps {
			if next, ok := byName[dep.QualifiedName()]; ok {
				if err := visit(next); err != nil {
					return err
				}
				continue
			}
			if d.Lookup(dep.QualifiedName()) == nil {
				return invariant(ViolationUnresolvedType, dep.QualifiedName(),
					"%s depends on undefined %s", ci.Name(), dep)
			}
		}

		state[qn] = done
		order = append(order, ci)
		return nil
	}

	for _, ci := range b.Classes {
		if err := visit(ci); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Trace writes every registered type, sorted by qualified name.
func (d *Domain) Trace(w *TraceWriter) {
	types := d.Types()
	sort.Slice(types, func(i, j int) bool {
		return types[i].Name().QualifiedName() < types[j].Name().QualifiedName()
	})
	w.Enter("domain " + d.ID() + " {")
	for _, t := range types {
		t.Trace(w)
	}
	w.Leave("}")
}

package vm

import (
	"sort"
	"sync"

	"github.com/chazu/avm2/abc"
)

// ---------------------------------------------------------------------------
// Native hooks
// ---------------------------------------------------------------------------

// NativeHook is the host implementation of one member. Only the field
// matching the trait kind is consulted.
type NativeHook struct {
	Method NativeFunc
	Get    NativeFunc
	Set    NativeFunc
}

// NativeBindings maps local member names to host hooks, separately for the
// static and the instance side.
type NativeBindings struct {
	Static   map[string]*NativeHook
	Instance map[string]*NativeHook
}

// ---------------------------------------------------------------------------
// NativeCatalog: native class builders
// ---------------------------------------------------------------------------

// NativeContext is what a native builder gets to construct its class from.
type NativeContext struct {
	Domain      *Domain
	Scope       *Scope
	Constructor *Function
	Base        *Class
	ClassInfo   *abc.ClassInfo
}

// NewClass creates the class for the builder with the synthesized
// constructor. The metadata is attached up front so Link can see it.
func (nc *NativeContext) NewClass(callable *Callable) *Class {
	c := NewClass(nc.ClassInfo.Instance.Name.Name, nc.Constructor, callable)
	c.classInfo = nc.ClassInfo
	return c
}

// NativeBuilder constructs a natively implemented class. It is responsible
// for linking the delegation layers (Extend, ExtendNative or ExtendBuiltin)
// and may Link a definition and LinkNatives hook tables.
type NativeBuilder func(nc *NativeContext) (*Class, error)

// NativeCatalog maps native identifiers to builders. It must be fully
// populated before the first class is created from it.
type NativeCatalog struct {
	mu       sync.RWMutex
	builders map[string]NativeBuilder
}

// NewNativeCatalog creates an empty catalog.
func NewNativeCatalog() *NativeCatalog {
	return &NativeCatalog{
		builders: make(map[string]NativeBuilder),
	}
}

// Register adds a builder. Returns the previous builder for name, or nil.
func (nc *NativeCatalog) Register(name string, b NativeBuilder) NativeBuilder {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	old := nc.builders[name]
	nc.builders[name] = b
	return old
}

// Lookup finds the builder registered under name.
func (nc *NativeCatalog) Lookup(name string) (NativeBuilder, bool) {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	b, ok := nc.builders[name]
	return b, ok
}

// Has returns true if a builder is registered under name.
func (nc *NativeCatalog) Has(name string) bool {
	_, ok := nc.Lookup(name)
	return ok
}

// Names returns the registered identifiers, sorted.
func (nc *NativeCatalog) Names() []string {
	nc.mu.RLock()
	defer nc.mu.RUnlock()

	result := make([]string, 0, len(nc.builders))
	for name := range nc.builders {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of registered builders.
func (nc *NativeCatalog) Len() int {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	return len(nc.builders)
}

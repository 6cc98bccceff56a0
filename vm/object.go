package vm

import (
	"errors"
	"sort"
)

// ErrReadOnlyProperty is returned when a write targets a read-only property
// or an accessor without a setter.
var ErrReadOnlyProperty = errors.New("vm: property is read-only")

// Property is one own property of an Object. A property with a Getter or
// Setter is an accessor and its Value is ignored.
type Property struct {
	Value    Value
	Getter   *Function
	Setter   *Function
	ReadOnly bool
	Hidden   bool // not enumerable
}

// IsAccessor returns true if the property is a getter/setter pair.
func (p *Property) IsAccessor() bool {
	return p.Getter != nil || p.Setter != nil
}

// Object is a host object: an ordered set of own properties plus at most one
// delegate. Lookups that miss on an object are retried on its delegate.
type Object struct {
	delegate *Object
	props    map[string]*Property
	keys     []string
}

// NewObject creates an empty object delegating to delegate (which may be nil).
func NewObject(delegate *Object) *Object {
	return &Object{
		delegate: delegate,
		props:    make(map[string]*Property),
	}
}

// NewObjectFromMap creates an object holding the given values as own data
// properties. Keys are added in sorted order.
func NewObjectFromMap(delegate *Object, values map[string]Value) *Object {
	obj := NewObject(delegate)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		obj.DefineProperty(k, Property{Value: values[k]})
	}
	return obj
}

// Delegate returns the object lookups fall back to.
func (o *Object) Delegate() *Object {
	return o.delegate
}

// SetDelegate replaces the delegate.
func (o *Object) SetDelegate(d *Object) {
	o.delegate = d
}

// ---------------------------------------------------------------------------
// Own properties
// ---------------------------------------------------------------------------

// DefineProperty defines or replaces an own property.
func (o *Object) DefineProperty(key string, p Property) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	prop := p
	o.props[key] = &prop
}

// DefineReadOnly defines a hidden, read-only data property.
func (o *Object) DefineReadOnly(key string, v Value) {
	o.DefineProperty(key, Property{Value: v, ReadOnly: true, Hidden: true})
}

// DefineHidden defines a writable data property that is not enumerable.
func (o *Object) DefineHidden(key string, v Value) {
	o.DefineProperty(key, Property{Value: v, Hidden: true})
}

// OwnProperty returns the own property stored under key.
func (o *Object) OwnProperty(key string) (*Property, bool) {
	p, ok := o.props[key]
	return p, ok
}

// HasOwn returns true if key is an own property.
func (o *Object) HasOwn(key string) bool {
	_, ok := o.props[key]
	return ok
}

// DeleteOwn removes an own property. Returns false if it did not exist.
func (o *Object) DeleteOwn(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// OwnKeys returns all own property keys in definition order.
func (o *Object) OwnKeys() []string {
	result := make([]string, len(o.keys))
	copy(result, o.keys)
	return result
}

// Keys returns the enumerable own property keys in definition order.
func (o *Object) Keys() []string {
	var result []string
	for _, k := range o.keys {
		if !o.props[k].Hidden {
			result = append(result, k)
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Delegation chain access
// ---------------------------------------------------------------------------

// Lookup walks the delegation chain for key and returns the property and the
// object that owns it.
func (o *Object) Lookup(key string) (*Property, *Object) {
	for cur := o; cur != nil; cur = cur.delegate {
		if p, ok := cur.props[key]; ok {
			return p, cur
		}
	}
	return nil, nil
}

// Has returns true if key resolves anywhere along the chain.
func (o *Object) Has(key string) bool {
	p, _ := o.Lookup(key)
	return p != nil
}

// Get resolves key along the chain. Getters run with o as the receiver.
// Returns Undefined when nothing is found.
func (o *Object) Get(key string) Value {
	p, _ := o.Lookup(key)
	if p == nil {
		return Undefined
	}
	if p.IsAccessor() {
		if p.Getter == nil {
			return Undefined
		}
		return p.Getter.Call(o)
	}
	return p.Value
}

// Set assigns key. A setter found along the chain runs with o as the
// receiver; otherwise the value lands as an own data property of o.
func (o *Object) Set(key string, v Value) error {
	p, owner := o.Lookup(key)
	if p != nil {
		if p.IsAccessor() {
			if p.Setter == nil {
				return ErrReadOnlyProperty
			}
			p.Setter.Call(o, v)
			return nil
		}
		if p.ReadOnly {
			return ErrReadOnlyProperty
		}
		if owner == o {
			p.Value = v
			return nil
		}
	}
	o.DefineProperty(key, Property{Value: v})
	return nil
}

// IsDelegateOf returns true if o appears on v's delegation chain (not
// counting v itself).
func (o *Object) IsDelegateOf(v *Object) bool {
	if v == nil {
		return false
	}
	for cur := v.delegate; cur != nil; cur = cur.delegate {
		if cur == o {
			return true
		}
	}
	return false
}

// Class returns the class recorded by the nearest "class" marker on the
// chain, or nil.
func (o *Object) Class() *Class {
	c, _ := o.Get(classKey).(*Class)
	return c
}

// String implements the Stringer interface.
func (o *Object) String() string {
	if o == nil {
		return "null"
	}
	if c := o.Class(); c != nil {
		return "[object " + c.debugName + "]"
	}
	return "[object Object]"
}

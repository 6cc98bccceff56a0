package vm

import (
	"errors"
	"strings"
)

// ErrScopeBound is returned when a scope's object is bound a second time.
var ErrScopeBound = errors.New("vm: scope object already bound")

// Scope is one link of a lexical scope chain. A class scope is created empty
// and bound to its class once the class exists, which lets method bodies of
// the class name their own class.
type Scope struct {
	parent *Scope
	object Value
	bound  bool
}

// NewScope creates a scope. A nil object leaves the scope unbound.
func NewScope(parent *Scope, object Value) *Scope {
	return &Scope{
		parent: parent,
		object: object,
		bound:  object != nil,
	}
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Object returns the value this scope resolves names against.
func (s *Scope) Object() Value {
	return s.object
}

// Bind sets the scope object. It may only happen once, before any other
// read of the scope.
func (s *Scope) Bind(object Value) error {
	if s.bound {
		return ErrScopeBound
	}
	s.object = object
	s.bound = true
	return nil
}

// IsBound returns true once the scope has an object.
func (s *Scope) IsBound() bool {
	return s.bound
}

// FindClass returns the innermost class on the scope chain, or nil.
func (s *Scope) FindClass() *Class {
	for cur := s; cur != nil; cur = cur.parent {
		if c, ok := cur.object.(*Class); ok {
			return c
		}
	}
	return nil
}

// Depth returns the number of links above this scope.
func (s *Scope) Depth() int {
	depth := 0
	for cur := s.parent; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}

// String implements the Stringer interface.
func (s *Scope) String() string {
	var parts []string
	for cur := s; cur != nil; cur = cur.parent {
		parts = append(parts, debugName(cur.object))
	}
	return "[scope " + strings.Join(parts, " -> ") + "]"
}

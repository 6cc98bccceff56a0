package vm

import (
	"errors"
	"strings"
	"testing"
)

func TestScopeBindOnce(t *testing.T) {
	s := NewScope(nil, nil)
	if s.IsBound() {
		t.Error("scope without object should start unbound")
	}
	if err := s.Bind("x"); err != nil {
		t.Fatalf("first Bind failed: %v", err)
	}
	if err := s.Bind("y"); !errors.Is(err, ErrScopeBound) {
		t.Errorf("second Bind = %v, want ErrScopeBound", err)
	}
	if s.Object() != "x" {
		t.Errorf("Object() = %v, want x", s.Object())
	}
	if err := NewScope(nil, "g").Bind("z"); !errors.Is(err, ErrScopeBound) {
		t.Error("scope created with an object is already bound")
	}
}

func TestScopeChain(t *testing.T) {
	global := NewScope(nil, "global")
	outer := NewScope(global, nil)
	inner := NewScope(outer, "local")

	if inner.Depth() != 2 || global.Depth() != 0 {
		t.Errorf("Depth() = %d/%d, want 2/0", inner.Depth(), global.Depth())
	}
	if inner.Parent() != outer {
		t.Error("Parent() mismatch")
	}
	if inner.FindClass() != nil {
		t.Error("no class on the chain yet")
	}
	if got := inner.String(); !strings.Contains(got, "local -> null -> global") {
		t.Errorf("String() = %q", got)
	}
}

func TestClassScopeSeenByMethods(t *testing.T) {
	d, bodies := newTestDomain(t, Options{})
	bodies.Register("Widget.self", func(scope *Scope, _ Value, _ []Value) Value {
		return scope.FindClass()
	})
	widget := defineClass(t, d, classInfo("Widget", "Object", method("Widget.self")))

	fn, ok := widget.CreateInstance().Get("public$Widget.self").(*Function)
	if !ok {
		t.Fatal("method not installed")
	}
	if got := fn.Call(nil); got != widget {
		t.Errorf("method scope class = %v, want Widget", got)
	}
	if err := widget.Scope().Bind(nil); !errors.Is(err, ErrScopeBound) {
		t.Error("class scope should already be bound")
	}
}

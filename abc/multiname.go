// Package abc holds the immutable class and instance metadata produced by the
// bytecode loader, together with the qualified-name rules used to key members.
package abc

import (
	"fmt"
	"strings"
)

// NamespaceKind identifies the visibility class of a namespace.
type NamespaceKind string

const (
	NamespacePublic          NamespaceKind = "public"
	NamespaceProtected       NamespaceKind = "protected"
	NamespaceStaticProtected NamespaceKind = "staticprotected"
	NamespacePrivate         NamespaceKind = "private"
	NamespaceInternal        NamespaceKind = "internal"
	NamespaceExplicit        NamespaceKind = "namespace"
)

// Namespace is a kind plus URI pair. Two namespaces are equal when both
// fields are equal.
type Namespace struct {
	Kind NamespaceKind `cbor:"kind" yaml:"kind"`
	URI  string        `cbor:"uri,omitempty" yaml:"uri,omitempty"`
}

// PublicNamespace is the unnamed public namespace.
var PublicNamespace = Namespace{Kind: NamespacePublic}

// IsPublic reports whether members in ns are publicly visible.
func (ns Namespace) IsPublic() bool {
	return ns.Kind == NamespacePublic || ns.Kind == ""
}

// Prefix returns the mangled namespace part of a qualified name.
func (ns Namespace) Prefix() string {
	kind := ns.Kind
	if kind == "" {
		kind = NamespacePublic
	}
	return string(kind) + ns.URI
}

// String implements the Stringer interface.
func (ns Namespace) String() string {
	if ns.URI == "" {
		return string(ns.Kind)
	}
	return string(ns.Kind) + " " + ns.URI
}

// Multiname is a name resolved to a single namespace.
type Multiname struct {
	Namespace Namespace `cbor:"ns" yaml:"ns"`
	Name      string    `cbor:"name" yaml:"name"`
}

// NewMultiname creates a multiname in the given namespace.
func NewMultiname(ns Namespace, name string) Multiname {
	return Multiname{Namespace: ns, Name: name}
}

// PublicName creates a multiname in the public namespace.
func PublicName(name string) Multiname {
	return Multiname{Namespace: PublicNamespace, Name: name}
}

// QualifiedName returns the mangled string used as a property key.
func (m Multiname) QualifiedName() string {
	return QualifiedName(m.Namespace, m.Name)
}

// IsPublic reports whether the multiname lives in a public namespace.
func (m Multiname) IsPublic() bool {
	return m.Namespace.IsPublic()
}

// String implements the Stringer interface.
func (m Multiname) String() string {
	if m.Namespace.URI == "" {
		return m.Name
	}
	return m.Namespace.URI + ":" + m.Name
}

// QualifiedName mangles a namespace and a local name into a property key.
func QualifiedName(ns Namespace, name string) string {
	return ns.Prefix() + "$" + name
}

// PublicQualifiedName returns the key of name in the public namespace.
func PublicQualifiedName(name string) string {
	return QualifiedName(PublicNamespace, name)
}

// ParseSimpleName parses the "<kind> <name>" form used by native glue
// declarations, e.g. "public message". A bare name is public.
func ParseSimpleName(s string) (Multiname, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return PublicName(fields[0]), nil
	case 2:
		kind := NamespaceKind(fields[0])
		switch kind {
		case NamespacePublic, NamespaceProtected, NamespaceStaticProtected,
			NamespacePrivate, NamespaceInternal, NamespaceExplicit:
			return Multiname{Namespace: Namespace{Kind: kind}, Name: fields[1]}, nil
		}
		return Multiname{}, fmt.Errorf("abc: unknown namespace kind %q in %q", fields[0], s)
	default:
		return Multiname{}, fmt.Errorf("abc: malformed simple name %q", s)
	}
}

package vm

import "fmt"

// Violation identifies which class-model invariant was broken.
type Violation int

const (
	// ViolationRedefineFinal: a derived class replaces a final inherited trait.
	ViolationRedefineFinal Violation = iota + 1
	// ViolationMissingOverride: a trait is marked override but nothing is
	// inherited at its key.
	ViolationMissingOverride
	// ViolationSpuriousOverride: a trait replaces an inherited entry without
	// being marked override.
	ViolationSpuriousOverride
	// ViolationMultipleSuperInterfaces: an interface extends more than one
	// interface.
	ViolationMultipleSuperInterfaces
	// ViolationUnregisteredNative: the native catalog has no builder or hook
	// for a native class or method.
	ViolationUnregisteredNative
	// ViolationStructuralMismatch: constructor, trait layer and dynamic layer
	// are not wired the way the class model requires.
	ViolationStructuralMismatch
	// ViolationUnresolvedType: metadata names a base class or interface that
	// is not registered in the domain.
	ViolationUnresolvedType
)

var violationNames = map[Violation]string{
	ViolationRedefineFinal:           "cannot redefine a final trait",
	ViolationMissingOverride:         "trait marked override must override another trait",
	ViolationSpuriousOverride:        "overriding a trait that is not marked for override",
	ViolationMultipleSuperInterfaces: "interfaces may extend at most one interface",
	ViolationUnregisteredNative:      "no native registered",
	ViolationStructuralMismatch:      "class structure is inconsistent",
	ViolationUnresolvedType:          "unresolved type",
}

// String implements the Stringer interface.
func (v Violation) String() string {
	if s, ok := violationNames[v]; ok {
		return s
	}
	return fmt.Sprintf("violation(%d)", int(v))
}

// InvariantError reports a broken invariant in trusted class metadata. It is
// fatal to the construction of the class being built.
type InvariantError struct {
	Violation Violation
	Subject   string // offending trait, class or native name
	Detail    string
}

func (e *InvariantError) Error() string {
	msg := "avm2: " + e.Violation.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	return msg
}

// Is matches any *InvariantError carrying the same violation, so callers can
// write errors.Is(err, &InvariantError{Violation: ViolationRedefineFinal}).
func (e *InvariantError) Is(target error) bool {
	t, ok := target.(*InvariantError)
	return ok && t.Violation == e.Violation
}

func invariant(v Violation, subject string, format string, args ...any) *InvariantError {
	return &InvariantError{
		Violation: v,
		Subject:   subject,
		Detail:    fmt.Sprintf(format, args...),
	}
}

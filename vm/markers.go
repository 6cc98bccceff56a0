package vm

import "github.com/chazu/avm2/abc"

// ---------------------------------------------------------------------------
// Well-known property keys installed by the class model
// ---------------------------------------------------------------------------
//
// These keys are written onto delegation-layer objects, constructors and
// class objects. Runtime type tests and the structural verifier read them
// back, so they must stay stable.

const (
	// classKey is the read-only back-reference from a trait layer or
	// constructor to its class.
	classKey = "class"

	// shapeKey carries the object shape ID of a trait layer.
	shapeKey = "shape"

	// isClassKey marks a class object as a class.
	isClassKey = "__isClass__"

	// initializeKey is where a native definition stores its initializer.
	initializeKey = "initialize"

	// symbolKey holds the auxiliary symbol payload of an instance.
	symbolKey = "symbol"

	// prototypeKey is the script-visible name of a class's dynamic layer.
	prototypeKey = "prototype"
)

// constructorKey is the public "constructor" back-reference on a dynamic layer.
var constructorKey = abc.PublicQualifiedName("constructor")

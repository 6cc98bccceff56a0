package vm

// Coercer is a type that can coerce a value to itself.
type Coercer interface {
	Coerce(v Value) Value
}

// CoercionBuilder produces the call/apply pair a class uses when it is
// invoked as a function.
type CoercionBuilder func(t Coercer) Callable

// CoerceCallable is the default coercion builder: both call and apply coerce
// their first argument with t.
func CoerceCallable(t Coercer) Callable {
	return Callable{
		Call: func(_ Value, args ...Value) Value {
			return t.Coerce(firstArg(args))
		},
		Apply: func(_ Value, args []Value) Value {
			return t.Coerce(firstArg(args))
		},
	}
}

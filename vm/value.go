package vm

// Value is any script-visible value. Objects are *Object, functions are
// *Function, classes are *Class and interfaces are *Interface. Go nil is the
// script null; Undefined is the script undefined.
type Value = any

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined is the value of a missing property.
var Undefined Value = undefinedValue{}

// IsUndefined returns true if v is the undefined sentinel.
func IsUndefined(v Value) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// IsNullish returns true for null and undefined.
func IsNullish(v Value) bool {
	return v == nil || IsUndefined(v)
}

// AsObject returns the host object behind v, or nil if v is not an object.
// Functions count as objects.
func AsObject(v Value) *Object {
	switch o := v.(type) {
	case *Object:
		return o
	case *Function:
		return o.Object
	}
	return nil
}

// ToBoolean converts a value with the script truthiness rules.
func ToBoolean(v Value) bool {
	switch x := v.(type) {
	case nil, undefinedValue:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0 && x == x
	}
	return true
}

// firstArg returns args[0], or Undefined when args is empty.
func firstArg(args []Value) Value {
	if len(args) == 0 {
		return Undefined
	}
	return args[0]
}

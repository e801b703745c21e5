// Package boundary is the generic invocation layer between native Go code
// and a managed application runtime. It resolves classes, methods and fields
// by name and signature, calls them with typed arguments, and converts the
// runtime's per-thread pending-error flag into ordinary Go errors immediately
// after every crossing.
//
// The runtime itself is an external collaborator supplied through the Env
// interface. This package never assumes a particular implementation — the
// same code drives a live runtime attachment or the in-memory simulation
// used by tests and the CLI.
package boundary

import "fmt"

// Kind tags a Value crossing the boundary. The tag determines which
// primitive caller or accessor the runtime uses for the crossing.
type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindByte
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindObject
	KindNull
)

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var kindNames = [...]string{
	"void", "boolean", "byte", "char", "short", "int",
	"long", "float", "double", "string", "object", "null",
}

// ObjectRef is an opaque, scope-owned reference to a managed object.
// The zero value is the null reference.
type ObjectRef uint64

// NullRef is the null object reference.
const NullRef ObjectRef = 0

// ClassRef is an opaque handle to a resolved type descriptor.
// Class handles are ordinary local references and must be released
// like any other transient handle.
type ClassRef uint64

// MethodID identifies a resolved method within its class.
type MethodID uint64

// FieldID identifies a resolved field within its class.
type FieldID uint64

// Value is the tagged union representing every argument and return value
// that crosses the boundary.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	ref  ObjectRef
}

// Void returns the void value.
func Void() Value { return Value{kind: KindVoid} }

// Null returns the null reference value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Byte wraps an 8-bit integer.
func Byte(v int8) Value { return Value{kind: KindByte, i: int64(v)} }

// Char wraps a 16-bit unsigned character.
func Char(v uint16) Value { return Value{kind: KindChar, i: int64(v)} }

// Short wraps a 16-bit integer.
func Short(v int16) Value { return Value{kind: KindShort, i: int64(v)} }

// Int wraps a 32-bit integer.
func Int(v int32) Value { return Value{kind: KindInt, i: int64(v)} }

// Long wraps a 64-bit integer.
func Long(v int64) Value { return Value{kind: KindLong, i: v} }

// Float wraps a 32-bit float.
func Float(v float32) Value { return Value{kind: KindFloat, f: float64(v)} }

// Double wraps a 64-bit float.
func Double(v float64) Value { return Value{kind: KindDouble, f: v} }

// String wraps a managed string handle.
func String(ref ObjectRef) Value {
	if ref == NullRef {
		return Null()
	}
	return Value{kind: KindString, ref: ref}
}

// Object wraps a generic object reference.
func Object(ref ObjectRef) Value {
	if ref == NullRef {
		return Null()
	}
	return Value{kind: KindObject, ref: ref}
}

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null reference.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool unpacks a boolean value.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, &ValueError{Op: "AsBool", Want: KindBool, Got: v.kind}
	}
	return v.b, nil
}

// AsInt unpacks a 32-bit integer value.
func (v Value) AsInt() (int32, error) {
	if v.kind != KindInt {
		return 0, &ValueError{Op: "AsInt", Want: KindInt, Got: v.kind}
	}
	return int32(v.i), nil
}

// AsLong unpacks a 64-bit integer value.
func (v Value) AsLong() (int64, error) {
	if v.kind != KindLong {
		return 0, &ValueError{Op: "AsLong", Want: KindLong, Got: v.kind}
	}
	return v.i, nil
}

// AsDouble unpacks a 64-bit float value.
func (v Value) AsDouble() (float64, error) {
	if v.kind != KindDouble {
		return 0, &ValueError{Op: "AsDouble", Want: KindDouble, Got: v.kind}
	}
	return v.f, nil
}

// AsRef unpacks a reference value. Null yields NullRef without error;
// a comparison against an absent value is the caller's concern.
func (v Value) AsRef() (ObjectRef, error) {
	switch v.kind {
	case KindObject, KindString:
		return v.ref, nil
	case KindNull:
		return NullRef, nil
	default:
		return NullRef, &ValueError{Op: "AsRef", Want: KindObject, Got: v.kind}
	}
}

package boundary

// Env is the raw surface the managed runtime must expose. It mirrors the
// runtime's own calling convention: operations do not return Go errors —
// failure is communicated out-of-band through the per-thread pending-error
// flag, which the invocation layer drains after every crossing.
//
// An Env and every handle minted by it are bound to one thread of the
// runtime. Nothing here may be shared across goroutines.
type Env interface {
	// Resolution. A failed lookup returns the zero handle and sets the
	// pending-error flag.
	FindClass(name string) ClassRef
	GetObjectClass(obj ObjectRef) ClassRef
	GetMethodID(cls ClassRef, name, sig string) MethodID
	GetStaticMethodID(cls ClassRef, name, sig string) MethodID
	GetFieldID(cls ClassRef, name, sig string) FieldID
	GetStaticFieldID(cls ClassRef, name, sig string) FieldID

	// Invocation. The ret tag selects the runtime's primitive caller;
	// args are packed slots matching the target signature.
	CallMethod(obj ObjectRef, mid MethodID, ret Kind, args []Value) Value
	CallStaticMethod(cls ClassRef, mid MethodID, ret Kind, args []Value) Value
	NewObject(cls ClassRef, ctor MethodID, args []Value) ObjectRef

	// Field access.
	GetField(obj ObjectRef, fid FieldID, kind Kind) Value
	GetStaticField(cls ClassRef, fid FieldID, kind Kind) Value
	SetField(obj ObjectRef, fid FieldID, v Value)

	// String conversion.
	NewString(s string) ObjectRef
	StringChars(ref ObjectRef) string

	// Reference arrays.
	ArrayLength(arr ObjectRef) int
	ArrayElement(arr ObjectRef, i int) ObjectRef

	// Local reference lifetime. Exactly one release per acquisition.
	DeleteLocalRef(ref ObjectRef)

	// Per-thread pending-error flag.
	ExceptionPending() bool
	ExceptionOccurred() ObjectRef
	ExceptionDescribe() string
	ExceptionClear()
}

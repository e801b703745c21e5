package boundary

import "math"

// Member uniquely identifies a method or field within its owning class.
// Immutable once resolved.
type Member struct {
	Class  ClassRef
	Name   string
	Sig    string
	Static bool

	method MethodID
	field  FieldID
}

// FindClass resolves a class by fully-qualified slash-separated name.
// The handle is tracked by sc and released with it.
func FindClass(env Env, sc *Scope, name string) (ClassRef, error) {
	cls := env.FindClass(name)
	if err := Drain(env); err != nil {
		return 0, &ResolutionError{What: "class", Name: name, Cause: err}
	}
	return sc.TrackClass(cls), nil
}

// MethodOf resolves an instance method on cls.
func MethodOf(env Env, cls ClassRef, name, sig string) (Member, error) {
	mid := env.GetMethodID(cls, name, sig)
	if err := Drain(env); err != nil {
		return Member{}, &ResolutionError{What: "method", Name: name, Sig: sig, Cause: err}
	}
	return Member{Class: cls, Name: name, Sig: sig, method: mid}, nil
}

// StaticMethodOf resolves a static method on cls.
func StaticMethodOf(env Env, cls ClassRef, name, sig string) (Member, error) {
	mid := env.GetStaticMethodID(cls, name, sig)
	if err := Drain(env); err != nil {
		return Member{}, &ResolutionError{What: "method", Name: name, Sig: sig, Cause: err}
	}
	return Member{Class: cls, Name: name, Sig: sig, Static: true, method: mid}, nil
}

// FieldOf resolves an instance field on cls.
func FieldOf(env Env, cls ClassRef, name, sig string) (Member, error) {
	fid := env.GetFieldID(cls, name, sig)
	if err := Drain(env); err != nil {
		return Member{}, &ResolutionError{What: "field", Name: name, Sig: sig, Cause: err}
	}
	return Member{Class: cls, Name: name, Sig: sig, field: fid}, nil
}

// StaticFieldOf resolves a static field on cls.
func StaticFieldOf(env Env, cls ClassRef, name, sig string) (Member, error) {
	fid := env.GetStaticFieldID(cls, name, sig)
	if err := Drain(env); err != nil {
		return Member{}, &ResolutionError{What: "field", Name: name, Sig: sig, Cause: err}
	}
	return Member{Class: cls, Name: name, Sig: sig, Static: true, field: fid}, nil
}

// Call invokes the member with recv as receiver (ignored for static
// members). Arguments are marshaled by their native Go type; the return
// value is dispatched on ret through the kind table and drained before it
// is handed back. Reference returns are tracked by sc.
func (m Member) Call(env Env, sc *Scope, recv ObjectRef, ret Kind, args ...any) (Value, error) {
	slots, err := marshalArgs(env, sc, args)
	if err != nil {
		return Value{}, err
	}
	var v Value
	if m.Static {
		v = env.CallStaticMethod(m.Class, m.method, ret, slots)
	} else {
		v = env.CallMethod(recv, m.method, ret, slots)
	}
	if err := Drain(env); err != nil {
		return Value{}, err
	}
	v, err = checkReturn(ret, v)
	if err != nil {
		return Value{}, err
	}
	return sc.TrackValue(v), nil
}

// Get reads the field from recv (ignored for static fields).
func (m Member) Get(env Env, sc *Scope, recv ObjectRef, kind Kind) (Value, error) {
	if err := checkField(kind); err != nil {
		return Value{}, err
	}
	var v Value
	if m.Static {
		v = env.GetStaticField(m.Class, m.field, kind)
	} else {
		v = env.GetField(recv, m.field, kind)
	}
	if err := Drain(env); err != nil {
		return Value{}, err
	}
	v, err := checkReturn(kind, v)
	if err != nil {
		return Value{}, err
	}
	return sc.TrackValue(v), nil
}

// Set writes an instance field on recv.
func (m Member) Set(env Env, recv ObjectRef, v Value) error {
	if err := checkField(v.Kind()); err != nil {
		return err
	}
	env.SetField(recv, m.field, v)
	return Drain(env)
}

// CallMethod resolves an instance method on obj's class and invokes it.
// The class handle is transient and released with sc.
func CallMethod(env Env, sc *Scope, obj ObjectRef, name, sig string, ret Kind, args ...any) (Value, error) {
	cls := env.GetObjectClass(obj)
	if err := Drain(env); err != nil {
		return Value{}, &ResolutionError{What: "class", Name: "<object class>", Cause: err}
	}
	sc.TrackClass(cls)
	m, err := MethodOf(env, cls, name, sig)
	if err != nil {
		return Value{}, err
	}
	return m.Call(env, sc, obj, ret, args...)
}

// CallStaticMethod resolves className and invokes a static method on it.
func CallStaticMethod(env Env, sc *Scope, className, name, sig string, ret Kind, args ...any) (Value, error) {
	cls, err := FindClass(env, sc, className)
	if err != nil {
		return Value{}, err
	}
	m, err := StaticMethodOf(env, cls, name, sig)
	if err != nil {
		return Value{}, err
	}
	return m.Call(env, sc, NullRef, ret, args...)
}

// GetField reads an instance field from obj by name and signature.
func GetField(env Env, sc *Scope, obj ObjectRef, name, sig string, kind Kind) (Value, error) {
	cls := env.GetObjectClass(obj)
	if err := Drain(env); err != nil {
		return Value{}, &ResolutionError{What: "class", Name: "<object class>", Cause: err}
	}
	sc.TrackClass(cls)
	m, err := FieldOf(env, cls, name, sig)
	if err != nil {
		return Value{}, err
	}
	return m.Get(env, sc, obj, kind)
}

// GetStaticField reads a static field from className by name and signature.
func GetStaticField(env Env, sc *Scope, className, name, sig string, kind Kind) (Value, error) {
	cls, err := FindClass(env, sc, className)
	if err != nil {
		return Value{}, err
	}
	m, err := StaticFieldOf(env, cls, name, sig)
	if err != nil {
		return Value{}, err
	}
	return m.Get(env, sc, NullRef, kind)
}

// NewObject resolves className and its constructor by signature, then
// constructs an instance. The handle is tracked by sc.
func NewObject(env Env, sc *Scope, className, ctorSig string, args ...any) (ObjectRef, error) {
	cls, err := FindClass(env, sc, className)
	if err != nil {
		return NullRef, err
	}
	ctor, err := MethodOf(env, cls, "<init>", ctorSig)
	if err != nil {
		return NullRef, &ResolutionError{What: "constructor", Name: className, Sig: ctorSig, Cause: err}
	}
	slots, err := marshalArgs(env, sc, args)
	if err != nil {
		return NullRef, err
	}
	obj := env.NewObject(cls, ctor.method, slots)
	if err := Drain(env); err != nil {
		return NullRef, err
	}
	return sc.Track(obj), nil
}

// GoString converts a managed string handle to a native string.
// A null handle converts to the empty string.
func GoString(env Env, ref ObjectRef) (string, error) {
	if ref == NullRef {
		return "", nil
	}
	s := env.StringChars(ref)
	if err := Drain(env); err != nil {
		return "", err
	}
	return s, nil
}

// NewString allocates a managed string from a native one; the handle is
// tracked by sc.
func NewString(env Env, sc *Scope, s string) (ObjectRef, error) {
	ref := env.NewString(s)
	if err := Drain(env); err != nil {
		return NullRef, err
	}
	return sc.Track(ref), nil
}

// ArrayLen returns the length of a reference array.
func ArrayLen(env Env, arr ObjectRef) (int, error) {
	n := env.ArrayLength(arr)
	if err := Drain(env); err != nil {
		return 0, err
	}
	return n, nil
}

// ArrayElement returns element i of a reference array, tracked by sc.
func ArrayElement(env Env, sc *Scope, arr ObjectRef, i int) (ObjectRef, error) {
	ref := env.ArrayElement(arr, i)
	if err := Drain(env); err != nil {
		return NullRef, err
	}
	return sc.Track(ref), nil
}

// marshalArgs converts heterogeneous native arguments into the homogeneous
// slot array a call crossing expects. Primitive kinds map by static Go type;
// strings allocate a transient managed string owned by sc; references and
// already-tagged values pass through. The layer does not verify arity or
// signature compatibility beyond what the Go types imply — mismatches
// surface as boundary errors.
func marshalArgs(env Env, sc *Scope, args []any) ([]Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	slots := make([]Value, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case nil:
			slots[i] = Null()
		case Value:
			slots[i] = v
		case bool:
			slots[i] = Bool(v)
		case int8:
			slots[i] = Byte(v)
		case uint16:
			slots[i] = Char(v)
		case int16:
			slots[i] = Short(v)
		case int32:
			slots[i] = Int(v)
		case int:
			// A plain int only fits the 32-bit slot when its value does.
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, &MarshalError{Index: i, Arg: a}
			}
			slots[i] = Int(int32(v))
		case int64:
			slots[i] = Long(v)
		case float32:
			slots[i] = Float(v)
		case float64:
			slots[i] = Double(v)
		case string:
			ref, err := NewString(env, sc, v)
			if err != nil {
				return nil, err
			}
			slots[i] = String(ref)
		case ObjectRef:
			slots[i] = Object(v)
		case ClassRef:
			slots[i] = Object(ObjectRef(v))
		default:
			return nil, &MarshalError{Index: i, Arg: a}
		}
	}
	return slots, nil
}

package boundary

// dispatchEntry describes one return kind: its signature letter and how a
// crossing's result is validated against the kind the caller asked for.
// Reference kinds have no single-letter signature; they use the L-form
// written out by the caller.
type dispatchEntry struct {
	sig      string
	callable bool // usable as a call return kind
	settable bool // usable as a field kind
}

// dispatch is the kind-indexed table driving return-value selection.
// The enumerated tag replaces the per-type caller specializations of a
// templated design: one entry per primitive or reference kind.
var dispatch = [...]dispatchEntry{
	KindVoid:   {sig: "V", callable: true},
	KindBool:   {sig: "Z", callable: true, settable: true},
	KindByte:   {sig: "B", callable: true, settable: true},
	KindChar:   {sig: "C", callable: true, settable: true},
	KindShort:  {sig: "S", callable: true, settable: true},
	KindInt:    {sig: "I", callable: true, settable: true},
	KindLong:   {sig: "J", callable: true, settable: true},
	KindFloat:  {sig: "F", callable: true, settable: true},
	KindDouble: {sig: "D", callable: true, settable: true},
	KindString: {sig: "Ljava/lang/String;", callable: true, settable: true},
	KindObject: {sig: "Ljava/lang/Object;", callable: true, settable: true},
	KindNull:   {},
}

// Signature returns the default type signature for the kind, or "" when
// the kind has none (null, unknown).
func (k Kind) Signature() string {
	if int(k) < len(dispatch) {
		return dispatch[k].sig
	}
	return ""
}

// checkReturn validates that a crossing produced a value compatible with
// the kind the caller dispatched on. Unknown or mismatched kinds are a
// reportable local error, never a silent default.
func checkReturn(want Kind, got Value) (Value, error) {
	if int(want) >= len(dispatch) || !dispatch[want].callable {
		return Value{}, &ValueError{Op: "call", Want: want, Got: got.kind}
	}
	switch want {
	case KindObject, KindString:
		// Reference returns may legitimately be null.
		if got.kind == KindNull || got.kind == want {
			return got, nil
		}
		// A string handle satisfies a generic object request.
		if want == KindObject && got.kind == KindString {
			return got, nil
		}
	default:
		if got.kind == want {
			return got, nil
		}
	}
	return Value{}, &ValueError{Op: "call", Want: want, Got: got.kind}
}

// checkField validates a field access kind before the crossing.
func checkField(kind Kind) error {
	if int(kind) >= len(dispatch) || !dispatch[kind].settable {
		return &ValueError{Op: "field", Want: kind, Got: kind}
	}
	return nil
}

package boundary

import "testing"

func TestKindSignatures(t *testing.T) {
	cases := []struct {
		kind Kind
		sig  string
	}{
		{KindVoid, "V"},
		{KindBool, "Z"},
		{KindByte, "B"},
		{KindChar, "C"},
		{KindShort, "S"},
		{KindInt, "I"},
		{KindLong, "J"},
		{KindFloat, "F"},
		{KindDouble, "D"},
		{KindString, "Ljava/lang/String;"},
		{KindObject, "Ljava/lang/Object;"},
		{KindNull, ""},
	}
	for _, c := range cases {
		if got := c.kind.Signature(); got != c.sig {
			t.Errorf("%s.Signature() = %q, want %q", c.kind, got, c.sig)
		}
	}
}

func TestCheckReturnAcceptsMatchingKind(t *testing.T) {
	if _, err := checkReturn(KindInt, Int(1)); err != nil {
		t.Errorf("int return: %v", err)
	}
	if _, err := checkReturn(KindVoid, Void()); err != nil {
		t.Errorf("void return: %v", err)
	}
}

func TestCheckReturnReferenceKinds(t *testing.T) {
	// Reference returns may be null.
	if _, err := checkReturn(KindObject, Null()); err != nil {
		t.Errorf("null object return: %v", err)
	}
	if _, err := checkReturn(KindString, Null()); err != nil {
		t.Errorf("null string return: %v", err)
	}
	// A string handle satisfies a generic object request, not vice versa.
	if _, err := checkReturn(KindObject, String(3)); err != nil {
		t.Errorf("string as object: %v", err)
	}
	if _, err := checkReturn(KindString, Object(3)); err == nil {
		t.Error("object as string: expected error")
	}
}

func TestCheckReturnRejectsMismatch(t *testing.T) {
	if _, err := checkReturn(KindInt, Long(1)); err == nil {
		t.Error("long as int: expected error")
	}
	if _, err := checkReturn(KindNull, Null()); err == nil {
		t.Error("null is not a callable return kind")
	}
}

func TestCheckFieldKinds(t *testing.T) {
	if err := checkField(KindString); err != nil {
		t.Errorf("string field: %v", err)
	}
	if err := checkField(KindVoid); err == nil {
		t.Error("void field: expected error")
	}
	if err := checkField(KindNull); err == nil {
		t.Error("null field: expected error")
	}
}

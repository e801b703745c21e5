package diag

import (
	"bytes"
	"testing"
)

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Infof("expected creator name: %s", "android.content.pm.PackageInfo$1")
	l.Errorf("creator name mismatch")

	want := "I/CheckBeer: expected creator name: android.content.pm.PackageInfo$1\n" +
		"E/CheckBeer: creator name mismatch\n"
	if got := buf.String(); got != want {
		t.Errorf("log output:\n%q\nwant:\n%q", got, want)
	}
}

func TestSeverityString(t *testing.T) {
	if Info.String() != "I" || Error.String() != "E" {
		t.Errorf("severity strings: %s %s", Info, Error)
	}
	if Severity(9).String() != "?" {
		t.Errorf("unknown severity: %s", Severity(9))
	}
}

func TestDiscardDropsLines(t *testing.T) {
	// Must not panic and must not write anywhere observable.
	Discard().Infof("dropped %d", 1)
}

package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eyad-hamdy98/CheckBeer/probe"
)

func sampleEntry(suspicious bool) Entry {
	return EntryFromReport(probe.AggregateReport{
		Suspicious: suspicious,
		Results: []probe.DetectorResult{
			{Detector: "creator-identity", Suspicious: suspicious},
			{Detector: "package-paths"},
		},
	}, "snap.yaml")
}

func TestRecordAndVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := log.Record(sampleEntry(i == 1)); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("chain invalid: line %d: %s", result.ErrorLine, result.Error)
	}
	if result.Lines != 3 {
		t.Errorf("lines = %d, want 3", result.Lines)
	}
}

func TestReopenContinuesChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Record(sampleEntry(false)); err != nil {
		t.Fatal(err)
	}
	log.Close()

	log, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := log.Record(sampleEntry(true)); err != nil {
		t.Fatal(err)
	}
	log.Close()

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("chain broke across reopen: line %d: %s", result.ErrorLine, result.Error)
	}
	if result.Lines != 2 {
		t.Errorf("lines = %d, want 2", result.Lines)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	log.Record(sampleEntry(true))
	log.Record(sampleEntry(false))
	log.Close()

	// Flip the recorded verdict on the first line.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.SplitN(string(data), "\n", 2)
	tampered := strings.Replace(lines[0], `"suspicious":true`, `"suspicious":false`, 1)
	if tampered == lines[0] {
		t.Fatal("test setup: verdict not found in first line")
	}
	if err := os.WriteFile(path, []byte(tampered+"\n"+lines[1]), 0o600); err != nil {
		t.Fatal(err)
	}

	result := Verify(path)
	if result.Valid {
		t.Fatal("tampered log verified as intact")
	}
	if result.ErrorLine != 2 {
		t.Errorf("break detected at line %d, want 2", result.ErrorLine)
	}
}

func TestVerifyRejectsForeignGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	line := `{"ts":"2026-01-01T00:00:00.000Z","suspicious":false,"detectors":[],"prev_hash":"sha256:abcd"}`
	if err := os.WriteFile(path, []byte(line+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	result := Verify(path)
	if result.Valid {
		t.Fatal("log with foreign genesis verified")
	}
	if result.ErrorLine != 1 {
		t.Errorf("break at line %d, want 1", result.ErrorLine)
	}
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		log.Record(sampleEntry(false))
	}
	log.Close()

	entries, err := Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Snapshot != "snap.yaml" || len(e.Detectors) != 2 {
			t.Errorf("entry lost data: %+v", e)
		}
	}
}

func TestEntryFromReportFlattensVerdicts(t *testing.T) {
	e := sampleEntry(true)
	if !e.Suspicious {
		t.Error("aggregate verdict lost")
	}
	if len(e.Detectors) != 2 {
		t.Fatalf("got %d verdicts", len(e.Detectors))
	}
	if e.Detectors[0].Detector != "creator-identity" || !e.Detectors[0].Suspicious {
		t.Errorf("first verdict: %+v", e.Detectors[0])
	}
	if e.Detectors[1].Suspicious {
		t.Errorf("second verdict: %+v", e.Detectors[1])
	}
}

package probe

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/eyad-hamdy98/CheckBeer/internal/diag"
)

func sampleReport() AggregateReport {
	return AggregateReport{
		Suspicious: true,
		Results: []DetectorResult{
			{
				Detector: "creator-identity",
				Lines: []Line{
					{Severity: diag.Info, Message: "creator name verification passed"},
				},
			},
			{
				Detector:   "package-paths",
				Suspicious: true,
				Lines: []Line{
					{Severity: diag.Error, Message: "path mismatch"},
				},
			},
		},
	}
}

func TestFormatText(t *testing.T) {
	out := FormatText(sampleReport())

	if !strings.Contains(out, "PASS  creator-identity") {
		t.Error("passing detector not rendered")
	}
	if !strings.Contains(out, "FAIL  package-paths") {
		t.Error("failing detector not rendered")
	}
	if !strings.Contains(out, "I  creator name verification passed") {
		t.Error("info line not rendered with severity")
	}
	if !strings.Contains(out, "E  path mismatch") {
		t.Error("error line not rendered with severity")
	}
	if !strings.Contains(out, "tampering suspected") {
		t.Error("verdict line missing")
	}
}

func TestFormatTextCleanVerdict(t *testing.T) {
	r := sampleReport()
	r.Suspicious = false
	r.Results = r.Results[:1]
	if !strings.Contains(FormatText(r), "no tampering detected") {
		t.Error("clean verdict line missing")
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	out, err := FormatJSON(sampleReport())
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}
	var decoded AggregateReport
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !decoded.Suspicious || len(decoded.Results) != 2 {
		t.Errorf("decoded report lost data: %+v", decoded)
	}
	if decoded.Results[1].Detector != "package-paths" {
		t.Errorf("detector name lost: %+v", decoded.Results[1])
	}
}

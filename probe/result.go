// Package probe is the integrity-check pipeline: six independent, read-only
// detectors built on the boundary invocation layer, each comparing live
// runtime state against the expected table and producing a diagnostic trace
// plus a suspicion verdict. The aggregator runs every detector
// unconditionally and OR-combines the verdicts.
//
// Every detector is fail-closed: a resolution failure, boundary error,
// filesystem error or absent observation is reported as suspicious, never
// silently passed, so the probe keeps producing a verdict even while an
// attacker is actively interfering with parts of the environment.
package probe

import (
	"fmt"

	"github.com/eyad-hamdy98/CheckBeer/internal/diag"
)

// Line is one diagnostic line with its severity.
type Line struct {
	Severity diag.Severity `json:"severity"`
	Message  string        `json:"message"`
}

// DetectorResult is the outcome of one detector invocation.
// Not mutated after it is returned.
type DetectorResult struct {
	Detector   string `json:"detector"`
	Suspicious bool   `json:"suspicious"`
	Lines      []Line `json:"lines"`
}

// AggregateReport is the ordered outcome of one full pipeline run.
// Suspicious is the logical OR of all detector verdicts.
type AggregateReport struct {
	Results    []DetectorResult `json:"results"`
	Suspicious bool             `json:"suspicious"`
}

// trace accumulates a detector's diagnostic lines while mirroring them to
// the log channel.
type trace struct {
	name       string
	log        *diag.Logger
	lines      []Line
	suspicious bool
}

func (t *trace) infof(format string, args ...any) {
	t.log.Infof(format, args...)
	t.lines = append(t.lines, Line{Severity: diag.Info, Message: fmt.Sprintf(format, args...)})
}

// errorf records an error-severity line without flagging the detector.
func (t *trace) errorf(format string, args ...any) {
	t.log.Errorf(format, args...)
	t.lines = append(t.lines, Line{Severity: diag.Error, Message: fmt.Sprintf(format, args...)})
}

// flagf marks the detector suspicious and records the finding.
func (t *trace) flagf(format string, args ...any) {
	t.suspicious = true
	t.errorf(format, args...)
}

// fail contains a local error inside the detector: logged and converted
// into a suspicious verdict, never propagated.
func (t *trace) fail(err error) {
	t.flagf("error while checking %s: %v", t.name, err)
}

func (t *trace) result() DetectorResult {
	return DetectorResult{Detector: t.name, Suspicious: t.suspicious, Lines: t.lines}
}

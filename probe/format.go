package probe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders an aggregate report as human-readable text.
func FormatText(r AggregateReport) string {
	var b strings.Builder

	for _, d := range r.Results {
		if d.Suspicious {
			fmt.Fprintf(&b, "  FAIL  %s\n", d.Detector)
		} else {
			fmt.Fprintf(&b, "  PASS  %s\n", d.Detector)
		}
		for _, line := range d.Lines {
			fmt.Fprintf(&b, "        %s  %s\n", line.Severity, line.Message)
		}
	}

	if r.Suspicious {
		b.WriteString("\ntampering suspected\n")
	} else {
		b.WriteString("\nno tampering detected\n")
	}

	return b.String()
}

// FormatJSON renders an aggregate report as JSON.
func FormatJSON(r AggregateReport) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("probe: marshal report: %w", err)
	}
	return string(data), nil
}

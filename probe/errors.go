package probe

import "fmt"

// MalformedObservationError reports an observed value that was absent or
// null where a comparison required one.
type MalformedObservationError struct {
	What string
}

func (e *MalformedObservationError) Error() string {
	return fmt.Sprintf("probe: %s is absent where a value is required", e.What)
}

// ProcessExecutionError reports that an external permission probe failed to
// launch or returned unexpectedly.
type ProcessExecutionError struct {
	Path  string
	Cause error
}

func (e *ProcessExecutionError) Error() string {
	return fmt.Sprintf("probe: permission probe on %s: %v", e.Path, e.Cause)
}

func (e *ProcessExecutionError) Unwrap() error { return e.Cause }

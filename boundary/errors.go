package boundary

import "fmt"

// ResolutionError is raised when a class, method, field or constructor
// cannot be resolved by name and signature.
type ResolutionError struct {
	What  string // "class", "method", "field", "constructor"
	Name  string
	Sig   string
	Cause error
}

func (e *ResolutionError) Error() string {
	if e.Sig != "" {
		return fmt.Sprintf("boundary: %s %q (%s) not found: %v", e.What, e.Name, e.Sig, e.Cause)
	}
	return fmt.Sprintf("boundary: %s %q not found: %v", e.What, e.Name, e.Cause)
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

// BoundaryError captures that the runtime raised an error during the last
// crossing. It is produced by draining (checking and clearing) the runtime's
// per-thread pending-error flag; the drain is what keeps the next unrelated
// crossing on the same thread from spuriously failing.
type BoundaryError struct {
	// Thrown names the error object raised by the runtime. The local
	// reference behind it is released during the drain; the field is
	// diagnostic identity only and must not be dereferenced.
	Thrown      ObjectRef
	Description string
}

func (e *BoundaryError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("boundary: runtime error: %s", e.Description)
	}
	return "boundary: runtime error"
}

// ValueError reports a kind mismatch or an unsupported kind in a typed
// crossing.
type ValueError struct {
	Op   string
	Want Kind
	Got  Kind
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("boundary: %s: want %s, got %s", e.Op, e.Want, e.Got)
}

// MarshalError reports an argument that cannot be converted to a Value.
type MarshalError struct {
	Index int
	Arg   any
}

func (e *MarshalError) Error() string {
	return fmt.Sprintf("boundary: argument %d: cannot marshal %T", e.Index, e.Arg)
}

// Drain checks the runtime's pending-error flag and, if set, clears it and
// returns the error as a BoundaryError. It must be called immediately after
// every crossing; an undrained error corrupts all subsequent crossings on
// the same thread.
func Drain(env Env) error {
	if !env.ExceptionPending() {
		return nil
	}
	thrown := env.ExceptionOccurred()
	desc := env.ExceptionDescribe()
	env.ExceptionClear()
	// The description is the useful content; the error object itself is a
	// transient handle owned by the drain and must not outlive it.
	env.DeleteLocalRef(thrown)
	return &BoundaryError{Thrown: thrown, Description: desc}
}

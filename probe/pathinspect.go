package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// DefaultProbeTimeout bounds each external permission probe. The probe is
// a blocking child process; a hang must convert to a fail-closed verdict
// instead of stalling the whole pipeline.
const DefaultProbeTimeout = 5 * time.Second

// PathStat is the filesystem state of one inspected path.
type PathStat struct {
	Mode fs.FileMode
	UID  int
}

// PathInspector inspects and attempts to mutate filesystem permissions on
// package paths. Chmod reports whether the change succeeded; a non-nil
// error means the probe itself could not run (launch failure or timeout),
// which callers treat as suspicious.
type PathInspector interface {
	Stat(path string) (PathStat, error)
	Chmod(ctx context.Context, path string, mode fs.FileMode) (bool, error)
}

// OSInspector probes the real filesystem. Permission changes are attempted
// through an external chmod process, matching how a hooked libc would be
// sidestepped on the target system.
type OSInspector struct {
	Timeout time.Duration
}

// NewOSInspector returns an inspector with the given probe timeout.
func NewOSInspector(timeout time.Duration) *OSInspector {
	return &OSInspector{Timeout: timeout}
}

var _ PathInspector = (*OSInspector)(nil)

// Stat returns the path's permission bits and owning uid.
func (i *OSInspector) Stat(path string) (PathStat, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return PathStat{}, err
	}
	st := PathStat{Mode: fi.Mode(), UID: -1}
	if sys, ok := fi.Sys().(*syscall.Stat_t); ok {
		st.UID = int(sys.Uid)
	}
	return st, nil
}

// Chmod attempts to change the path's mode via an external process.
// Returns (true, nil) when the change succeeded, (false, nil) when the
// system denied it, and a ProcessExecutionError when the probe could not
// run or timed out.
func (i *OSInspector) Chmod(ctx context.Context, path string, mode fs.FileMode) (bool, error) {
	timeout := i.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "chmod", fmt.Sprintf("%o", mode.Perm()), path)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	if ctx.Err() != nil {
		return false, &ProcessExecutionError{Path: path, Cause: ctx.Err()}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The process ran and was refused: the path held.
		return false, nil
	}
	return false, &ProcessExecutionError{Path: path, Cause: err}
}

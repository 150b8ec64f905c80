package stonesched

import (
	"errors"
	"fmt"
)

// Sentinel errors used by Build and by the IOPool.
var (
	// ErrNoWorkers is wrapped in the BootstrapError Build returns if the
	// worker count is still not positive after defaults are applied (a
	// Config.Workers of zero or less defaults to runtime.NumCPU()); a
	// scheduler with no workers can never make progress.
	ErrNoWorkers = errors.New("stonesched: worker count must be positive")

	// ErrBufMissing is the error reported in the file-op-failed signal for
	// a ReadFile whose Process does not implement FileBufferer: the IOPool
	// has nowhere to copy the bytes it would read. The process itself sees
	// ReadResult{BufMissing: true}, with no error value.
	ErrBufMissing = errors.New("stonesched: process has no file buffer")
)

// FileOpError wraps a failure that occurred servicing a ReadFile or
// WriteFile op, giving the process name and path alongside the
// underlying cause.
type FileOpError struct {
	Process string
	Path    string
	Op      string // "read" or "write"
	Err     error
}

func (e *FileOpError) Error() string {
	return fmt.Sprintf("stonesched: %s %s for %q: %v", e.Op, e.Path, e.Process, e.Err)
}

func (e *FileOpError) Unwrap() error { return e.Err }

// BootstrapError wraps a failure that prevented a Scheduler from
// starting. Build returns one when the Config leaves it with no workers.
type BootstrapError struct {
	Component string
	Err       error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("stonesched: %s failed to start: %v", e.Component, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

package enki

import "errors"

var (
	// ErrZeroThreads is returned by Initialize when asked to start a
	// scheduler with no worker threads at all.
	ErrZeroThreads = errors.New("enki: number of threads must be greater than zero")

	// ErrNotRunning is the panic value raised by AddTaskSet and
	// AddPinnedTask when called on a scheduler that has not been
	// initialized, or has already been shut down. Unlike ErrZeroThreads
	// this is not a constructor argument a caller passes in and can
	// check up front; it is a state precondition on the scheduler
	// itself at the moment of submission, so it panics like the
	// scheduler's other double-submission and out-of-range-thread
	// checks.
	ErrNotRunning = errors.New("enki: scheduler is not running")

	// ErrInvalidPriority is the panic value raised by AddTaskSet and
	// AddPinnedTask when a task set or pinned task names a priority
	// outside [0, PriorityCount).
	ErrInvalidPriority = errors.New("enki: priority out of range")

	// ErrInvalidThreadNum is the panic value raised by AddPinnedTask
	// when a pinned task names a worker thread outside
	// [0, GetNumTaskThreads()).
	ErrInvalidThreadNum = errors.New("enki: pinned task bound to out-of-range worker thread")
)

// errTaskSetAlreadyRunning backs the panic AddTaskSet raises on
// double submission of a TaskSet whose partitions have not all
// completed yet. This is a programmer error, not a runtime
// condition callers are expected to recover from, so it panics on
// the precondition rather than returning an error.
const errTaskSetAlreadyRunning = "enki: task set is already running (double submission)"

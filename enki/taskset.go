package enki

import "sync/atomic"

// Completable is the shared capability of TaskSet and PinnedTask: a
// piece of submitted work that a waiter can poll for completion. It
// mirrors ICompletable from the C++ original, where both task
// flavours derive from the same completion-tracking base.
type Completable interface {
	IsComplete() bool
}

// TaskSetPartition names a contiguous sub-range [Start, End) of a
// TaskSet's overall range, handed to one ExecuteRangeFunc call.
type TaskSetPartition struct {
	Start int32
	End   int32
}

func (p TaskSetPartition) size() int32 { return p.End - p.Start }

// ExecuteRangeFunc processes one partition of a TaskSet's range on
// worker threadNum. Nested submission from inside an ExecuteRangeFunc
// goes through AddTaskSetAsThread and WaitForTaskAsThread with that
// threadNum, since AddTaskSet and WaitForTask act as thread 0.
type ExecuteRangeFunc func(partition TaskSetPartition, threadNum uint32)

// TaskSet is a range of work that the scheduler splits across worker
// threads. Construct with NewTaskSet, submit with
// (*TaskScheduler).AddTaskSet, and poll or block on completion with
// IsComplete or (*TaskScheduler).WaitForTask.
//
// A TaskSet must not be resubmitted while a prior submission is still
// outstanding: AddTaskSet panics if runningCount has not settled back
// to zero.
type TaskSet struct {
	// Execute is called once per partition. Set it directly or via
	// NewTaskSet.
	Execute ExecuteRangeFunc

	setSize  int32
	minRange int32
	priority int

	// rangeToRun is computed by AddTaskSet from the scheduler's
	// shaping parameters at submission time and consulted by the
	// dispatch loop when it decides whether a popped partition still
	// needs splitting before it runs.
	rangeToRun int32

	runningCount atomic.Int32
}

// NewTaskSet builds a TaskSet covering the range [0, setSize) with
// the given per-partition function. minRange defaults to 1; call
// SetMinRange to change it.
func NewTaskSet(setSize int32, execute ExecuteRangeFunc) *TaskSet {
	return &TaskSet{
		Execute:  execute,
		setSize:  setSize,
		minRange: 1,
	}
}

// SetMinRange sets the smallest partition size the scheduler will
// produce when splitting this task set, either at submission or when
// a partition is stolen and re-split. A minRange larger than 1
// amortizes per-call overhead for cheap per-element work.
func (t *TaskSet) SetMinRange(minRange int32) {
	if minRange >= 1 {
		t.minRange = minRange
	}
}

// SetPriority sets which of the scheduler's priority pipes this task
// set is queued on. Defaults to 0, the highest priority.
func (t *TaskSet) SetPriority(priority int) { t.priority = priority }

// Priority reports the task set's configured priority.
func (t *TaskSet) Priority() int { return t.priority }

// SetSize reports the total range size the task set covers.
func (t *TaskSet) SetSize() int32 { return t.setSize }

// IsComplete reports whether every partition of this task set has
// finished executing.
func (t *TaskSet) IsComplete() bool { return t.runningCount.Load() == 0 }

// PinnedFunc is the body of a PinnedTask: a plain, non-partitioned
// unit of work.
type PinnedFunc func()

// PinnedTask is work that must run on one specific worker thread,
// rather than being freely partitioned and stolen. It is enqueued
// with (*TaskScheduler).AddPinnedTask and drained by that thread's
// dispatch loop (for thread 0: by its WaitFor calls or
// RunPinnedTasks).
//
// PinnedTask is an intrusive list node (see internal/pinnedlist): the
// "next" link lives on the struct itself, so a PinnedTask can only be
// a member of one list at a time.
type PinnedTask struct {
	// Execute is the work to run. Set directly or via NewPinnedTask.
	Execute PinnedFunc

	threadNum uint32
	priority  int

	runningCount atomic.Int32
	next         atomic.Pointer[PinnedTask]
}

// NewPinnedTask builds a PinnedTask bound to the given worker thread
// number.
func NewPinnedTask(threadNum uint32, execute PinnedFunc) *PinnedTask {
	return &PinnedTask{
		Execute:   execute,
		threadNum: threadNum,
	}
}

// SetPriority sets which of the scheduler's priority pinned-lists this
// task is queued on.
func (p *PinnedTask) SetPriority(priority int) { p.priority = priority }

// Priority reports the pinned task's configured priority.
func (p *PinnedTask) Priority() int { return p.priority }

// ThreadNum reports the worker thread this task is pinned to.
func (p *PinnedTask) ThreadNum() uint32 { return p.threadNum }

// IsComplete reports whether the pinned task has finished executing.
func (p *PinnedTask) IsComplete() bool { return p.runningCount.Load() == 0 }

// NextSlot implements pinnedlist.Linkable.
func (p *PinnedTask) NextSlot() *atomic.Pointer[PinnedTask] { return &p.next }

// subTaskSet is one partition of a TaskSet in flight through a pipe.
// It mirrors the C++ original's SubTaskSet exactly: a task pointer
// plus the partition it names. It is copied by value into and out of
// pipes so queuing a partition never heap-allocates.
type subTaskSet struct {
	task      *TaskSet
	partition TaskSetPartition
}

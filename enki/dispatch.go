package enki

import (
	"runtime"

	"github.com/MoonCollider/enkigo/internal/affinity"
	"github.com/MoonCollider/enkigo/internal/debug"
)

// spinCount is how many consecutive failed TryRunTask attempts a
// worker tolerates before it parks on the new-task condition
// variable.
const spinCount = 100

// spinBackoffMultiplier scales how many scheduler yields pauseHint
// spends on a given failed attempt, so the backoff grows with the
// number of consecutive misses instead of yielding a fixed amount
// every time. Go has no portable rdtsc-style pause instruction, so a
// scaled run of runtime.Gosched calls stands in for it.
const spinBackoffMultiplier = 10

func pauseHint(spins int) {
	n := spins * spinBackoffMultiplier
	for i := 0; i < n; i++ {
		runtime.Gosched()
	}
}

// taskingThreadFunction is the body of every worker goroutine except
// thread 0 (the caller). It pins its OS thread, announces itself to
// the profiler, and loops trying to find work until the scheduler is
// stopped.
func (s *TaskScheduler) taskingThreadFunction(threadNum int) {
	cleanup := affinity.Pin(threadNum)
	defer cleanup()

	s.numThreadsRunning.Add(1)
	s.profiler.callThreadStart(threadNum)
	defer func() {
		s.profiler.callThreadStop(threadNum)
		s.numThreadsRunning.Add(-1)
	}()

	spins := 0
	for s.running.Load() {
		if s.tryRunTask(threadNum, s.priorityCount-1) {
			spins = 0
			continue
		}
		if !s.running.Load() {
			return
		}
		spins++
		if spins > spinCount {
			s.profiler.callWaitStart(threadNum)
			s.waitForTasks(threadNum)
			s.profiler.callWaitStop(threadNum)
			spins = 0
		} else {
			pauseHint(spins)
		}
	}
}

// tryRunTask attempts to find and run one unit of work for threadNum,
// looking at every priority level from 0 (highest) up to and
// including priorityOfLowestToRun. It reports whether it ran
// something.
func (s *TaskScheduler) tryRunTask(threadNum int, priorityOfLowestToRun int) bool {
	for priority := 0; priority <= priorityOfLowestToRun; priority++ {
		if s.tryRunTaskAtPriority(threadNum, priority) {
			return true
		}
	}
	return false
}

func (s *TaskScheduler) tryRunTaskAtPriority(threadNum int, priority int) bool {
	s.runPinnedTasks(threadNum, priority)

	if st, ok := s.pipes[priority][threadNum].TryReadFront(); ok {
		s.runSubTask(threadNum, st)
		return true
	}

	hint := int(s.hints[threadNum].Load())
	for check := 0; check < s.numThreads; check++ {
		victim := (hint + check) % s.numThreads
		if victim == threadNum {
			continue
		}
		if st, ok := s.pipes[priority][victim].TryReadBack(); ok {
			s.hints[threadNum].Store(uint32(victim))
			s.runSubTask(threadNum, st)
			return true
		}
	}
	return false
}

// runSubTask executes a popped partition, re-splitting and requeuing
// the remainder first if the partition is still bigger than the task
// set's computed per-run range.
func (s *TaskScheduler) runSubTask(threadNum int, st subTaskSet) {
	task := st.task
	partition := st.partition

	if partition.size() > task.rangeToRun {
		toRun := TaskSetPartition{Start: partition.Start, End: partition.Start + task.rangeToRun}
		remainder := TaskSetPartition{Start: toRun.End, End: partition.End}
		s.splitAndAddTask(threadNum, task, remainder, task.rangeToRun)
		s.executePartition(task, toRun, threadNum)
	} else {
		s.executePartition(task, partition, threadNum)
	}
	task.runningCount.Add(-1)
}

func (s *TaskScheduler) executePartition(task *TaskSet, partition TaskSetPartition, threadNum int) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			debug.Logf("task set panic on thread %d: %v\n%s", threadNum, r, buf[:n])
		}
	}()
	task.Execute(partition, uint32(threadNum))
}

// runPinnedTasks drains and runs every pinned task queued for
// threadNum at the given priority. It reports whether it ran
// anything.
func (s *TaskScheduler) runPinnedTasks(threadNum int, priority int) bool {
	list := s.pinnedLists[priority][threadNum]
	ran := false
	for {
		t := list.PopFront()
		if t == nil {
			break
		}
		ran = true
		s.executePinned(t, threadNum)
		t.runningCount.Add(-1)
	}
	return ran
}

func (s *TaskScheduler) executePinned(t *PinnedTask, threadNum int) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			debug.Logf("pinned task panic on thread %d: %v\n%s", threadNum, r, buf[:n])
		}
	}()
	t.Execute()
}

// haveTasks reports whether any priority pipe on any thread has
// queued work, or threadNum's own pinned lists do.
func (s *TaskScheduler) haveTasks(threadNum int) bool {
	for p := 0; p < s.priorityCount; p++ {
		for t := 0; t < s.numThreads; t++ {
			if !s.pipes[p][t].IsEmpty() {
				return true
			}
		}
		if !s.pinnedLists[p][threadNum].IsEmpty() {
			return true
		}
	}
	return false
}

// waitForTasks blocks threadNum until wakeThreads is called or the
// scheduler stops. It increments numThreadsWaiting before checking
// haveTasks so a wakeThreads call that races the check can never be
// missed: either haveTasks already sees the new work, or wakeThreads
// sees this thread counted as waiting and broadcasts.
func (s *TaskScheduler) waitForTasks(threadNum int) {
	s.newTaskMu.Lock()
	s.numThreadsWaiting.Add(1)
	if !s.haveTasks(threadNum) && s.running.Load() {
		s.newTaskCond.Wait()
	}
	s.numThreadsWaiting.Add(-1)
	s.newTaskMu.Unlock()
}

// wakeThreads broadcasts on the new-task condition variable, but only
// if at least one worker is actually parked, to avoid taking the lock
// on every successful enqueue.
func (s *TaskScheduler) wakeThreads() {
	if s.numThreadsWaiting.Load() <= 0 {
		return
	}
	s.newTaskMu.Lock()
	s.newTaskCond.Broadcast()
	s.newTaskMu.Unlock()
}

package enki

import "runtime"

// WaitForTask blocks the calling goroutine (thread 0) until task
// completes, running other queued work in the meantime rather than
// idling. priorityOfLowestToRun, if given, limits which priority
// pipes thread 0 is willing to help drain while it waits; it defaults
// to the lowest configured priority.
func (s *TaskScheduler) WaitForTask(task Completable, priorityOfLowestToRun ...int) {
	s.waitForTaskAsThread(0, task, s.lowestPriorityArg(priorityOfLowestToRun))
}

// WaitForTaskAsThread is WaitForTask for a caller running inside
// another task's ExecuteRangeFunc on worker threadNum, supporting
// nested task-set composition.
func (s *TaskScheduler) WaitForTaskAsThread(threadNum uint32, task Completable, priorityOfLowestToRun ...int) {
	s.waitForTaskAsThread(int(threadNum), task, s.lowestPriorityArg(priorityOfLowestToRun))
}

func (s *TaskScheduler) waitForTaskAsThread(threadNum int, task Completable, priorityOfLowestToRun int) {
	if task == nil {
		s.tryRunTask(threadNum, priorityOfLowestToRun)
		return
	}
	for !task.IsComplete() {
		if !s.tryRunTask(threadNum, priorityOfLowestToRun) {
			runtime.Gosched()
		}
	}
}

// WaitForAll blocks the calling goroutine (thread 0) until every
// queued task set and pinned task, scheduler-wide, has finished.
func (s *TaskScheduler) WaitForAll() {
	s.waitForAllAsThread(0)
}

// WaitForAllAsThread is WaitForAll for a caller running on worker
// threadNum rather than thread 0.
func (s *TaskScheduler) WaitForAllAsThread(threadNum uint32) {
	s.waitForAllAsThread(int(threadNum))
}

func (s *TaskScheduler) waitForAllAsThread(threadNum int) {
	for {
		have := s.haveTasks(threadNum)
		allOthersIdle := s.numThreadsWaiting.Load() >= s.numThreadsRunning.Load()-1
		if !have && allOthersIdle {
			return
		}
		if !s.tryRunTask(threadNum, s.priorityCount-1) {
			runtime.Gosched()
		}
	}
}

// WaitForAllAndShutdown blocks until all outstanding work finishes,
// then stops every worker thread and waits for them to exit. The
// scheduler must be reinitialized before it can accept more work.
func (s *TaskScheduler) WaitForAllAndShutdown() {
	s.waitForAllAsThread(0)
	s.stopThreads(true)
}

func (s *TaskScheduler) lowestPriorityArg(args []int) int {
	if len(args) > 0 {
		return args[0]
	}
	return s.priorityCount - 1
}

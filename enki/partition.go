package enki

// AddTaskSet submits task for execution from thread 0 (the calling
// goroutine). It panics if task is already running: resubmitting a
// TaskSet whose partitions have not all finished is a programmer
// error the scheduler has no safe way to recover from, since it would
// corrupt the running count a prior submission is still decrementing.
func (s *TaskScheduler) AddTaskSet(task *TaskSet) {
	s.addTaskSet(0, task)
}

// AddTaskSetAsThread is AddTaskSet for callers running inside another
// task's ExecuteRangeFunc on a worker thread other than 0 - nested
// submission needs to know which pipe it owns.
func (s *TaskScheduler) AddTaskSetAsThread(threadNum uint32, task *TaskSet) {
	s.addTaskSet(int(threadNum), task)
}

func (s *TaskScheduler) addTaskSet(submitterThread int, task *TaskSet) {
	if !s.running.Load() {
		panic(ErrNotRunning)
	}
	if task.priority < 0 || task.priority >= s.priorityCount {
		panic(ErrInvalidPriority)
	}
	if task.runningCount.Load() != 0 {
		panic(errTaskSetAlreadyRunning)
	}
	task.runningCount.Store(0)

	setSize := task.setSize
	if setSize <= 0 {
		return
	}

	rangeToRun := setSize / s.numPartitions
	if rangeToRun < task.minRange {
		rangeToRun = task.minRange
	}
	task.rangeToRun = rangeToRun

	rangeToSplit := setSize / s.numInitialPartitions
	if rangeToSplit < task.minRange {
		rangeToSplit = task.minRange
	}

	s.splitAndAddTask(submitterThread, task, TaskSetPartition{Start: 0, End: setSize}, rangeToSplit)
}

// splitPiece carves a piece of at most rangeToSplit off the front of
// partition, advancing partition's start past it, and returns the
// piece.
func splitPiece(partition *TaskSetPartition, rangeToSplit int32) TaskSetPartition {
	rangeLeft := partition.size()
	if rangeToSplit > rangeLeft {
		rangeToSplit = rangeLeft
	}
	piece := TaskSetPartition{Start: partition.Start, End: partition.Start + rangeToSplit}
	partition.Start = piece.End
	return piece
}

// splitAndAddTask carves partition into pieces no larger than
// rangeToSplit and pushes each onto the submitting thread's own pipe
// at the task's priority. A piece that finds its pipe full (the pipe
// never grows) is trimmed down to the task's per-run range and
// executed inline immediately, with whatever it didn't cover folded
// back into partition for the loop to keep offering to the pipe -
// so a saturated pipe degrades to running fine-grained slices inline
// rather than serially executing whole coarse chunks. Parked workers
// are woken when a write fails after more than one piece has landed
// since the last failure, and once more after the last piece.
func (s *TaskScheduler) splitAndAddTask(submitterThread int, task *TaskSet, partition TaskSetPartition, rangeToSplit int32) {
	target := s.pipes[task.priority][submitterThread]

	numAdded := 0
	for partition.Start != partition.End {
		piece := splitPiece(&partition, rangeToSplit)
		numAdded++
		task.runningCount.Add(1)
		if target.TryWriteFront(subTaskSet{task: task, partition: piece}) {
			continue
		}

		if numAdded > 1 {
			s.wakeThreads()
		}
		numAdded = 0

		if task.rangeToRun < piece.size() {
			piece.End = piece.Start + task.rangeToRun
			partition.Start = piece.End
		}
		s.executePartition(task, piece, submitterThread)
		task.runningCount.Add(-1)
	}
	s.wakeThreads()
}

// AddPinnedTask queues task on its bound thread's pinned list at the
// task's priority. Any thread may call this; only the bound thread
// ever runs the task, when its dispatch loop or a WaitFor call next
// drains its pinned lists (thread 0 can also use RunPinnedTasks).
func (s *TaskScheduler) AddPinnedTask(task *PinnedTask) {
	if !s.running.Load() {
		panic(ErrNotRunning)
	}
	if int(task.threadNum) >= s.numThreads {
		panic(ErrInvalidThreadNum)
	}
	if task.priority < 0 || task.priority >= s.priorityCount {
		panic(ErrInvalidPriority)
	}
	task.runningCount.Store(1)
	s.pinnedLists[task.priority][task.threadNum].PushFront(task)
	s.wakeThreads()
}

// RunPinnedTasks drains and runs every pinned task queued for thread
// 0 (the calling goroutine) across all priorities. A worker's own
// dispatch loop already does this on every pass through
// tryRunTaskAtPriority; this is for a caller that wants to service
// its pinned queue without going through WaitForAll.
func (s *TaskScheduler) RunPinnedTasks() {
	for priority := 0; priority < s.priorityCount; priority++ {
		s.runPinnedTasks(0, priority)
	}
}

package enki

import (
	"sync/atomic"
	"testing"
	"time"
)

func newRunningScheduler(t *testing.T, numThreads int) *TaskScheduler {
	t.Helper()
	s := New()
	if err := s.InitializeThreads(numThreads); err != nil {
		t.Fatalf("InitializeThreads(%d): %v", numThreads, err)
	}
	t.Cleanup(s.WaitForAllAndShutdown)
	return s
}

func TestInitializeRejectsZeroThreads(t *testing.T) {
	s := New()
	if err := s.InitializeThreads(0); err != ErrZeroThreads {
		t.Fatalf("expected ErrZeroThreads, got %v", err)
	}
}

func TestSumOfRangeAcrossPartitions(t *testing.T) {
	const n = 1_000_003
	s := newRunningScheduler(t, 4)

	partials := make([]int64, s.GetNumTaskThreads())
	task := NewTaskSet(n, func(p TaskSetPartition, threadNum uint32) {
		var sum int64
		for i := p.Start; i < p.End; i++ {
			sum += int64(i)
		}
		partials[threadNum] += sum
	})
	s.AddTaskSet(task)
	s.WaitForTask(task)

	var total int64
	for _, p := range partials {
		total += p
	}

	var want int64
	for i := int64(0); i < n; i++ {
		want += i
	}
	if total != want {
		t.Fatalf("got %d, want %d", total, want)
	}
}

func TestEveryIndexTouchedExactlyOnce(t *testing.T) {
	const n = 200_000
	s := newRunningScheduler(t, 6)

	touched := make([]int32, n)
	task := NewTaskSet(n, func(p TaskSetPartition, threadNum uint32) {
		for i := p.Start; i < p.End; i++ {
			atomic.AddInt32(&touched[i], 1)
		}
	})
	s.AddTaskSet(task)
	s.WaitForTask(task)

	for i, c := range touched {
		if c != 1 {
			t.Fatalf("index %d touched %d times", i, c)
		}
	}
}

func TestMultipleTaskSetsCompleteIndependently(t *testing.T) {
	s := newRunningScheduler(t, 4)

	const sets = 20
	dones := make([]*TaskSet, sets)
	counts := make([]int32, sets)
	for i := 0; i < sets; i++ {
		i := i
		dones[i] = NewTaskSet(500, func(p TaskSetPartition, threadNum uint32) {
			atomic.AddInt32(&counts[i], p.End-p.Start)
		})
		s.AddTaskSet(dones[i])
	}
	for i := 0; i < sets; i++ {
		s.WaitForTask(dones[i])
		if counts[i] != 500 {
			t.Fatalf("task set %d: got count %d", i, counts[i])
		}
	}
}

func TestPinnedTaskForWorkerThreadCompletes(t *testing.T) {
	s := newRunningScheduler(t, 4)

	var ranOnThread uint32 = 999
	pinned := NewPinnedTask(2, func() {
		ranOnThread = 2
	})
	s.AddPinnedTask(pinned)
	s.WaitForTask(pinned)

	if ranOnThread != 2 {
		t.Fatalf("pinned task did not run, marker: %d", ranOnThread)
	}
}

func TestAddPinnedTaskWithOutOfRangeThreadPanics(t *testing.T) {
	s := newRunningScheduler(t, 2)

	pinned := NewPinnedTask(uint32(s.GetNumTaskThreads()), func() {})

	defer func() {
		if r := recover(); r != ErrInvalidThreadNum {
			t.Fatalf("expected ErrInvalidThreadNum panic, got %v", r)
		}
	}()
	s.AddPinnedTask(pinned)
}

func TestPriorityZeroDrainsBeforeLowerPriorityHelp(t *testing.T) {
	s := New(WithPriorityCount(2))
	if err := s.InitializeThreads(1); err != nil {
		t.Fatalf("InitializeThreads: %v", err)
	}
	defer s.WaitForAllAndShutdown()

	var order []int
	high := NewTaskSet(4, func(p TaskSetPartition, threadNum uint32) {
		order = append(order, 0)
	})
	high.SetMinRange(4)
	high.SetPriority(0)

	low := NewTaskSet(4, func(p TaskSetPartition, threadNum uint32) {
		order = append(order, 1)
	})
	low.SetMinRange(4)
	low.SetPriority(1)

	s.AddTaskSet(low)
	s.AddTaskSet(high)
	s.WaitForAll()

	if len(order) != 2 || order[0] != 0 {
		t.Fatalf("expected priority 0 first, got %v", order)
	}
}

func TestSingleWorkerFallsBackToInlineExecution(t *testing.T) {
	s := newRunningScheduler(t, 1)

	sum := 0
	task := NewTaskSet(100, func(p TaskSetPartition, threadNum uint32) {
		sum += int(p.End - p.Start)
	})
	s.AddTaskSet(task)
	s.WaitForTask(task)

	if sum != 100 {
		t.Fatalf("got %d, want 100", sum)
	}
	if s.GetNumTaskThreads() != 1 {
		t.Fatalf("expected single-thread scheduler")
	}
}

func TestSplitAndAddTaskDegradesToFineInlineSlicesUnderSaturation(t *testing.T) {
	s := newRunningScheduler(t, 1)

	const n = 2000
	var touched [n]int32
	task := NewTaskSet(n, func(p TaskSetPartition, threadNum uint32) {
		for i := p.Start; i < p.End; i++ {
			touched[i]++
		}
	})
	task.minRange = 1
	task.rangeToRun = 1 // forces the trim-to-rangeToRun path once the pipe fills

	// nothing drains pipes[0][0] concurrently (single-thread scheduler),
	// so carving 500 pieces of size 4 into a 256-slot pipe forces the
	// overflow branch of splitAndAddTask to run repeatedly.
	s.splitAndAddTask(0, task, TaskSetPartition{Start: 0, End: n}, 4)
	s.WaitForTask(task)

	if !task.IsComplete() {
		t.Fatalf("task should be complete, runningCount=%d", task.runningCount.Load())
	}
	for i, c := range touched {
		if c != 1 {
			t.Fatalf("index %d touched %d times", i, c)
		}
	}
}

func TestDoubleSubmissionOfRunningTaskSetPanics(t *testing.T) {
	s := New(WithPriorityCount(1))
	if err := s.InitializeThreads(2); err != nil {
		t.Fatalf("InitializeThreads: %v", err)
	}
	defer s.WaitForAllAndShutdown()

	release := make(chan struct{})
	task := NewTaskSet(2, func(p TaskSetPartition, threadNum uint32) {
		<-release
	})
	task.SetMinRange(1)
	s.AddTaskSet(task)

	defer func() {
		close(release)
		s.WaitForTask(task)
		if r := recover(); r == nil {
			t.Fatal("expected panic on double submission")
		}
	}()
	// give the first partition a moment to start running before resubmitting.
	time.Sleep(10 * time.Millisecond)
	s.AddTaskSet(task)
}

func TestShutdownDrainsRunningWorkers(t *testing.T) {
	s := New()
	if err := s.InitializeThreads(4); err != nil {
		t.Fatalf("InitializeThreads: %v", err)
	}

	task := NewTaskSet(10_000, func(p TaskSetPartition, threadNum uint32) {})
	s.AddTaskSet(task)
	s.WaitForAllAndShutdown()

	if s.numThreadsRunning.Load() != 1 {
		t.Fatalf("expected only thread 0 left running, got %d", s.numThreadsRunning.Load())
	}
}

func TestAddTaskSetOnStoppedSchedulerPanics(t *testing.T) {
	s := New()
	if err := s.InitializeThreads(2); err != nil {
		t.Fatalf("InitializeThreads: %v", err)
	}
	s.WaitForAllAndShutdown()

	defer func() {
		if r := recover(); r != ErrNotRunning {
			t.Fatalf("expected ErrNotRunning panic, got %v", r)
		}
	}()
	s.AddTaskSet(NewTaskSet(1, func(TaskSetPartition, uint32) {}))
}

func TestAddTaskSetWithOutOfRangePriorityPanics(t *testing.T) {
	s := newRunningScheduler(t, 2)

	task := NewTaskSet(1, func(TaskSetPartition, uint32) {})
	task.SetPriority(DefaultPriorityCount)

	defer func() {
		if r := recover(); r != ErrInvalidPriority {
			t.Fatalf("expected ErrInvalidPriority panic, got %v", r)
		}
	}()
	s.AddTaskSet(task)
}

func TestReinitializeStopsPreviousWorkers(t *testing.T) {
	s := New()
	if err := s.InitializeThreads(3); err != nil {
		t.Fatalf("InitializeThreads: %v", err)
	}
	if err := s.InitializeThreads(5); err != nil {
		t.Fatalf("InitializeThreads: %v", err)
	}
	defer s.WaitForAllAndShutdown()

	if s.GetNumTaskThreads() != 5 {
		t.Fatalf("expected 5 threads after reinitialize, got %d", s.GetNumTaskThreads())
	}
}

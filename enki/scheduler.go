package enki

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/MoonCollider/enkigo/internal/affinity"
	"github.com/MoonCollider/enkigo/internal/pinnedlist"
	"github.com/MoonCollider/enkigo/internal/pipe"
)

// pipeLog2Capacity sizes every per-thread, per-priority pipe at
// 2^pipeLog2Capacity queued partitions.
const pipeLog2Capacity = 8

// maxInitialPartitions caps how many pieces a freshly submitted task
// set is carved into up front, regardless of thread count.
const maxInitialPartitions = 8

type pinnedList = pinnedlist.List[PinnedTask, *PinnedTask]

// TaskScheduler owns a fixed pool of worker threads, one lock-free
// pipe per (priority, thread) pair for stealable TaskSet partitions,
// and one lock-free pinned list per (priority, thread) pair for work
// bound to that specific thread. The caller's own goroutine acts as
// thread 0: TaskScheduler never spawns a goroutine for it, so a
// program that only ever calls AddTaskSet/WaitForAll from its main
// goroutine gets that goroutine folded directly into the dispatch
// protocol rather than sitting outside it making blocking calls.
type TaskScheduler struct {
	cfg config

	numThreads    int
	priorityCount int

	pipes       [][]*pipe.Pipe[subTaskSet] // [priority][thread]
	pinnedLists [][]*pinnedList             // [priority][thread]
	hints       []atomic.Uint32             // [thread]

	numPartitions        int32
	numInitialPartitions int32

	running           atomic.Bool
	numThreadsRunning atomic.Int32
	numThreadsWaiting atomic.Int32

	newTaskMu   sync.Mutex
	newTaskCond *sync.Cond

	profiler ProfilerCallbacks

	group *errgroup.Group
}

// New builds a TaskScheduler. It does not start any worker threads;
// call Initialize or InitializeThreads before submitting work.
func New(opts ...Option) *TaskScheduler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &TaskScheduler{
		cfg:           cfg,
		priorityCount: cfg.priorityCount,
		profiler:      cfg.profiler,
	}
	s.newTaskCond = sync.NewCond(&s.newTaskMu)
	return s
}

// Initialize starts one worker thread per available CPU, or the count
// given via WithNumThreads if one was configured.
func (s *TaskScheduler) Initialize() error {
	n := s.cfg.numThreads
	if n <= 0 {
		n = affinity.Count()
	}
	return s.InitializeThreads(n)
}

// InitializeThreads (re)starts the scheduler with exactly numThreads
// worker threads, one of which is the calling goroutine itself.
// Calling it again on an already-running scheduler shuts the previous
// set of threads down first, mirroring the C++ original's behavior of
// always stopping before it starts.
func (s *TaskScheduler) InitializeThreads(numThreads int) error {
	if numThreads <= 0 {
		return ErrZeroThreads
	}
	s.stopThreads(true)
	return s.startThreads(numThreads)
}

func (s *TaskScheduler) startThreads(numThreads int) error {
	s.numThreads = numThreads
	s.pipes = make([][]*pipe.Pipe[subTaskSet], s.priorityCount)
	s.pinnedLists = make([][]*pinnedList, s.priorityCount)
	for p := 0; p < s.priorityCount; p++ {
		s.pipes[p] = make([]*pipe.Pipe[subTaskSet], numThreads)
		s.pinnedLists[p] = make([]*pinnedList, numThreads)
		for t := 0; t < numThreads; t++ {
			s.pipes[p][t] = pipe.New[subTaskSet](pipeLog2Capacity)
			s.pinnedLists[p][t] = &pinnedList{}
		}
	}

	s.hints = make([]atomic.Uint32, numThreads)
	for t := range s.hints {
		s.hints[t].Store(uint32((t + 1) % numThreads))
	}

	if numThreads == 1 {
		s.numPartitions = 1
		s.numInitialPartitions = 1
	} else {
		s.numPartitions = int32(numThreads * (numThreads - 1))
		initial := numThreads - 1
		if initial > maxInitialPartitions {
			initial = maxInitialPartitions
		}
		s.numInitialPartitions = int32(initial)
	}

	s.running.Store(true)
	s.numThreadsRunning.Store(1) // thread 0 is the caller
	s.numThreadsWaiting.Store(0)

	if numThreads > 1 {
		group := &errgroup.Group{}
		for t := 1; t < numThreads; t++ {
			threadNum := t
			group.Go(func() error {
				s.taskingThreadFunction(threadNum)
				return nil
			})
		}
		s.group = group
	} else {
		s.group = nil
	}
	return nil
}

// stopThreads signals every worker to exit and, if wait is true,
// blocks until all of them have. A single condvar broadcast can race
// a worker that hasn't entered Wait yet, so this rebroadcasts until
// the running count settles, the same shape as the original's
// StopThreads busy-loop.
func (s *TaskScheduler) stopThreads(wait bool) {
	if !s.running.Load() && s.group == nil {
		return
	}
	s.running.Store(false)
	for wait && s.numThreadsRunning.Load() > 1 {
		s.newTaskMu.Lock()
		s.newTaskCond.Broadcast()
		s.newTaskMu.Unlock()
		runtime.Gosched()
	}
	if s.group != nil {
		_ = s.group.Wait()
		s.group = nil
	}
}

// GetNumTaskThreads reports the total number of threads participating
// in the scheduler, including the calling goroutine (thread 0).
func (s *TaskScheduler) GetNumTaskThreads() int { return s.numThreads }

// GetProfilerCallbacks returns a pointer to the scheduler's profiler
// hook set so a caller can install or replace callbacks after
// construction.
func (s *TaskScheduler) GetProfilerCallbacks() *ProfilerCallbacks { return &s.profiler }

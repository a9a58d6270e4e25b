// Package enki implements a lock-free, work-stealing task scheduler
// for fine-grained, data-parallel work.
//
// A caller submits a TaskSet describing a range to process and a
// function to process a sub-range of it; the scheduler partitions the
// range across a fixed pool of worker threads (one per CPU core, by
// default), and any thread that runs out of its own work steals the
// oldest queued partition from a peer instead of sitting idle.
// PinnedTask is the complementary primitive for work that must run on
// one specific thread rather than being freely partitioned.
//
// Typical use:
//
//	ts := enki.New()
//	if err := ts.Initialize(); err != nil {
//		log.Fatal(err)
//	}
//	defer ts.WaitForAllAndShutdown()
//
//	sum := make([]int64, ts.GetNumTaskThreads())
//	task := enki.NewTaskSet(int32(len(data)), func(p enki.TaskSetPartition, threadNum uint32) {
//		var partial int64
//		for i := p.Start; i < p.End; i++ {
//			partial += data[i]
//		}
//		sum[threadNum] += partial
//	})
//	ts.AddTaskSet(task)
//	ts.WaitForTask(task)
//
// The scheduler carries no dependency graph, no priority inheritance,
// no cancellation, and no cross-process coordination: a TaskSet is a
// flat range, split into coarse pieces at submission time and re-split
// into finer ones as workers pick them up, and it is the caller's job
// to compose bigger workflows out of many small task sets (nested
// submission from inside a task goes through AddTaskSetAsThread and
// WaitForTaskAsThread).
package enki

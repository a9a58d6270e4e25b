// Command parallelsum sweeps the worker-thread count from 1 up to the
// machine's CPU count, running a summation task set with per-thread
// partial sums at each count and comparing it against a plain serial
// loop. It
// mirrors the thread-count sweep enkiTS's own Example.cpp runs,
// printed as a table instead of raw stdout lines.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/MoonCollider/enkigo/enki"
	"github.com/MoonCollider/enkigo/internal/telemetry"
)

const (
	dataSize   = 20_000_000
	warmupRuns = 3
	measured   = 10
)

func main() {
	data := make([]float64, dataSize)
	for i := range data {
		data[i] = float64(i%997) * 0.5
	}

	serialBaseline := serialDuration(data)

	maxThreads := runtime.NumCPU()
	bar := progressbar.NewOptions(maxThreads*(warmupRuns+measured),
		progressbar.OptionSetDescription("sweeping thread counts"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	type row struct {
		threads int
		avg     time.Duration
		speedup float64
	}
	rows := make([]row, 0, maxThreads)

	waitSampler := telemetry.NewSampler(2, 1, func(event string, threadNum int) {
		fmt.Fprintf(os.Stderr, "\n[thread %d] %s\n", threadNum, event)
	})

	for threads := 1; threads <= maxThreads; threads++ {
		s := enki.New(enki.WithProfilerCallbacks(enki.ProfilerCallbacks{
			WaitStart: func(threadNum int) { waitSampler.Record("wait start", threadNum) },
			WaitStop:  func(threadNum int) { waitSampler.Record("wait stop", threadNum) },
		}))
		if err := s.InitializeThreads(threads); err != nil {
			fmt.Fprintln(os.Stderr, "initialize:", err)
			os.Exit(1)
		}

		for i := 0; i < warmupRuns; i++ {
			runOnce(s, data)
			_ = bar.Add(1)
		}

		var total time.Duration
		for i := 0; i < measured; i++ {
			total += runOnce(s, data)
			_ = bar.Add(1)
		}
		avg := total / measured

		s.WaitForAllAndShutdown()

		rows = append(rows, row{
			threads: threads,
			avg:     avg,
			speedup: float64(serialBaseline) / float64(avg),
		})
	}
	fmt.Fprintln(os.Stderr)

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	bold.Println("parallel sum speedup vs serial baseline")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Threads", "Avg Time", "Speedup")
	for _, r := range rows {
		speedup := fmt.Sprintf("%.2fx", r.speedup)
		if r.speedup >= float64(r.threads)*0.75 {
			speedup = green.Sprintf("%.2fx", r.speedup)
		}
		_ = table.Append(fmt.Sprintf("%d", r.threads), r.avg.String(), speedup)
	}
	if err := table.Render(); err != nil {
		fmt.Fprintln(os.Stderr, "render table:", err)
		os.Exit(1)
	}
}

func runOnce(s *enki.TaskScheduler, data []float64) time.Duration {
	partials := make([]float64, s.GetNumTaskThreads())
	task := enki.NewTaskSet(int32(len(data)), func(p enki.TaskSetPartition, threadNum uint32) {
		var sum float64
		for i := p.Start; i < p.End; i++ {
			sum += data[i]
		}
		partials[threadNum] += sum
	})

	start := time.Now()
	s.AddTaskSet(task)
	s.WaitForTask(task)
	return time.Since(start)
}

func serialDuration(data []float64) time.Duration {
	start := time.Now()
	var total float64
	for _, v := range data {
		total += v
	}
	return time.Since(start)
}

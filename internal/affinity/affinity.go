// Package affinity pins a worker's OS thread to a CPU core. Each
// enkigo worker goroutine is intended to map 1:1 onto a real OS
// thread for the lifetime of the scheduler, so binding it to a core
// keeps its cache lines warm instead of letting the Go runtime bounce
// it across the machine.
//
// This is placement for cache locality, not NUMA-aware placement: it
// round-robins workers across logical CPUs and knows nothing about
// NUMA node topology.
package affinity

import "runtime"

// Count reports the number of logical CPUs available to the process,
// used by TaskScheduler's zero-argument Initialize.
func Count() int {
	return runtime.NumCPU()
}

// Pin locks the calling goroutine to its current OS thread and, where
// supported, binds that thread to cpuID mod the number of available
// CPUs. It returns a cleanup func that must be called before the
// goroutine exits.
func Pin(cpuID int) (cleanup func()) {
	runtime.LockOSThread()
	pinToCore(cpuID)
	return runtime.UnlockOSThread
}

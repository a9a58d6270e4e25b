//go:build linux

package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore binds the current OS thread to cpuID (wrapped into the
// valid CPU range). Must be called after runtime.LockOSThread().
func pinToCore(cpuID int) {
	numCPU := runtime.NumCPU()
	if numCPU == 0 {
		return
	}
	if cpuID < 0 || cpuID >= numCPU {
		cpuID = ((cpuID % numCPU) + numCPU) % numCPU
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)
	_ = unix.SchedSetaffinity(0, &mask) // 0 == current thread
}

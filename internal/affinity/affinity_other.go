//go:build !linux

package affinity

// pinToCore is a no-op on platforms without a portable CPU-affinity
// syscall reachable from golang.org/x/sys. The OS thread is still
// locked by the caller via runtime.LockOSThread.
func pinToCore(cpuID int) {}

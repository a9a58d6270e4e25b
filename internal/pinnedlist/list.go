// Package pinnedlist implements a lock-free, multi-writer, single-reader
// intrusive LIFO list. It backs the per-worker, per-priority queue of
// pinned tasks: any worker may push a task destined for worker w's
// list, but only worker w ever pops from it.
//
// The list is intrusive: the "next" pointer lives inside the node type
// itself rather than in a wrapper allocated by the list, matching how
// the enkiTS original threads its pinned-task list through a field on
// IPinnedTask. Go has no pointer-to-member, so the node type instead
// implements Linkable, exposing the address of its own link field.
package pinnedlist

import "sync/atomic"

// Linkable is implemented by *T for any node type stored in a List.
// NextSlot must return the address of a field embedded in T used
// exclusively by this list.
type Linkable[T any] interface {
	*T
	NextSlot() *atomic.Pointer[T]
}

// List is a Treiber-style lock-free stack: PushFront is safe from any
// number of concurrent goroutines, PopFront is written to also be
// safe for concurrent callers even though the scheduler only ever
// drains a given list from its owning worker.
type List[T any, PT Linkable[T]] struct {
	head atomic.Pointer[T]
}

// PushFront links n in as the new head of the list.
func (l *List[T, PT]) PushFront(n *T) {
	link := PT(n).NextSlot()
	for {
		old := l.head.Load()
		link.Store(old)
		if l.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// PopFront removes and returns the current head, or nil if the list is
// empty.
func (l *List[T, PT]) PopFront() *T {
	for {
		old := l.head.Load()
		if old == nil {
			return nil
		}
		next := PT(old).NextSlot().Load()
		if l.head.CompareAndSwap(old, next) {
			return old
		}
	}
}

// IsEmpty reports whether the list currently has no nodes. The result
// is a snapshot.
func (l *List[T, PT]) IsEmpty() bool {
	return l.head.Load() == nil
}

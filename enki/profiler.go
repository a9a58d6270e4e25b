package enki

// ProfilerCallbacks lets a caller observe scheduler-internal events
// without the scheduler taking a dependency on any particular tracing
// or metrics library. All fields are optional; a nil func is simply
// never called. Reserved is available for future callback slots
// without breaking this struct's field layout.
type ProfilerCallbacks struct {
	// ThreadStart fires once, from the worker goroutine itself, right
	// after it locks its OS thread and pins its CPU affinity.
	ThreadStart func(threadNum int)

	// ThreadStop fires once, from the worker goroutine itself, right
	// before it returns.
	ThreadStop func(threadNum int)

	// WaitStart fires every time a worker gives up spinning and is
	// about to block on the new-task condition variable.
	WaitStart func(threadNum int)

	// WaitStop fires immediately after a blocked worker wakes back up.
	WaitStop func(threadNum int)

	Reserved [2]func(threadNum int)
}

func (p *ProfilerCallbacks) callThreadStart(threadNum int) {
	if p != nil && p.ThreadStart != nil {
		p.ThreadStart(threadNum)
	}
}

func (p *ProfilerCallbacks) callThreadStop(threadNum int) {
	if p != nil && p.ThreadStop != nil {
		p.ThreadStop(threadNum)
	}
}

func (p *ProfilerCallbacks) callWaitStart(threadNum int) {
	if p != nil && p.WaitStart != nil {
		p.WaitStart(threadNum)
	}
}

func (p *ProfilerCallbacks) callWaitStop(threadNum int) {
	if p != nil && p.WaitStop != nil {
		p.WaitStop(threadNum)
	}
}

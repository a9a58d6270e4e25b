// Package telemetry provides a rate-limited sink for profiler-callback
// events. The scheduler's ProfilerCallbacks are plain fire-and-forget
// function values with no rate-limiting contract of their own; a demo
// or benchmark harness that wants to print on every thread-start or
// wait-start event risks flooding the console once a handful of
// worker threads are all firing callbacks concurrently. Sampler wraps
// a destination func with a token-bucket limiter so bursts collapse
// into an occasional line instead of a scroll storm.
package telemetry

import "golang.org/x/time/rate"

// Sampler rate-limits calls to an underlying event handler.
type Sampler struct {
	limiter *rate.Limiter
	emit    func(event string, threadNum int)
}

// NewSampler builds a Sampler allowing up to eventsPerSecond calls to
// emit through per second, with the given burst allowance.
func NewSampler(eventsPerSecond float64, burst int, emit func(event string, threadNum int)) *Sampler {
	return &Sampler{
		limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
		emit:    emit,
	}
}

// Record reports event for threadNum, forwarding it to the underlying
// handler only if the sampler's token bucket currently allows it.
func (s *Sampler) Record(event string, threadNum int) {
	if s == nil || s.emit == nil {
		return
	}
	if s.limiter.Allow() {
		s.emit(event, threadNum)
	}
}

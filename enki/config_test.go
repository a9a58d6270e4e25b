package enki

import "testing"

func TestDefaultPriorityCount(t *testing.T) {
	s := New()
	if s.priorityCount != DefaultPriorityCount {
		t.Fatalf("got %d, want %d", s.priorityCount, DefaultPriorityCount)
	}
}

func TestWithPriorityCountIgnoresNonPositive(t *testing.T) {
	s := New(WithPriorityCount(0), WithPriorityCount(-3))
	if s.priorityCount != DefaultPriorityCount {
		t.Fatalf("expected default to survive invalid options, got %d", s.priorityCount)
	}
	s2 := New(WithPriorityCount(5))
	if s2.priorityCount != 5 {
		t.Fatalf("got %d, want 5", s2.priorityCount)
	}
}

func TestWithProfilerCallbacksInstalled(t *testing.T) {
	called := false
	s := New(WithProfilerCallbacks(ProfilerCallbacks{
		ThreadStart: func(threadNum int) { called = true },
	}))
	s.GetProfilerCallbacks().callThreadStart(1)
	if !called {
		t.Fatal("expected ThreadStart to be wired through from options")
	}
}

package wait

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestUntil_ImmediatelyTrue(t *testing.T) {
	calls := 0
	start := time.Now()
	ok := Until(time.Second, func() bool {
		calls++
		return true
	})
	if !ok {
		t.Fatal("expected true")
	}
	if calls != 1 {
		t.Errorf("cond called %d times, want 1", calls)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("immediate success took %v", time.Since(start))
	}
}

func TestUntil_BecomesTrue(t *testing.T) {
	start := time.Now()
	ready := start.Add(500 * time.Millisecond)
	ok := Until(2*time.Second, func() bool {
		return time.Now().After(ready)
	}, WithPollInterval(200*time.Millisecond))
	elapsed := time.Since(start)

	if !ok {
		t.Fatal("expected true once the condition flips")
	}
	if elapsed >= 2*time.Second {
		t.Errorf("elapsed %v, want < 2s", elapsed)
	}
	// Detected on the first poll after the flip.
	if elapsed > 500*time.Millisecond+200*time.Millisecond+100*time.Millisecond {
		t.Errorf("elapsed %v, want within one interval of 500ms", elapsed)
	}
}

func TestUntil_NeverTrue(t *testing.T) {
	timeout := 600 * time.Millisecond
	interval := 200 * time.Millisecond

	start := time.Now()
	ok := Until(timeout, func() bool { return false }, WithPollInterval(interval))
	elapsed := time.Since(start)

	if ok {
		t.Fatal("expected false")
	}
	if elapsed < timeout {
		t.Errorf("elapsed %v, want >= %v", elapsed, timeout)
	}
	if elapsed >= timeout+interval {
		t.Errorf("elapsed %v, want < %v", elapsed, timeout+interval)
	}
}

func TestUntil_ShortensLastSleep(t *testing.T) {
	// Interval longer than the timeout: the only sleep ends at the deadline.
	timeout := 100 * time.Millisecond
	start := time.Now()
	Until(timeout, func() bool { return false }, WithPollInterval(time.Second))
	elapsed := time.Since(start)
	if elapsed < timeout || elapsed > timeout+80*time.Millisecond {
		t.Errorf("elapsed %v, want about %v", elapsed, timeout)
	}
}

func TestUntil_ZeroTimeoutChecksOnce(t *testing.T) {
	var calls atomic.Int32
	ok := Until(0, func() bool {
		calls.Add(1)
		return false
	})
	if ok {
		t.Error("expected false")
	}
	if calls.Load() != 1 {
		t.Errorf("cond called %d times, want 1", calls.Load())
	}
}

func TestUntil_FinalCheckAtDeadline(t *testing.T) {
	// The condition flips during the last sleep and is seen by the check at
	// the deadline.
	start := time.Now()
	ok := Until(300*time.Millisecond, func() bool {
		return time.Since(start) >= 250*time.Millisecond
	}, WithPollInterval(200*time.Millisecond))
	if !ok {
		t.Error("expected the check at the deadline to succeed")
	}
}

func TestWithPollInterval_Clamp(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, DefaultPollInterval},
		{-time.Second, DefaultPollInterval},
		{time.Millisecond, minPollInterval},
		{50 * time.Millisecond, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		o := options{pollInterval: DefaultPollInterval}
		WithPollInterval(tt.in)(&o)
		if o.pollInterval != tt.want {
			t.Errorf("WithPollInterval(%v): got %v, want %v", tt.in, o.pollInterval, tt.want)
		}
	}
}

func TestElapsed(t *testing.T) {
	if got := Elapsed(3*time.Second + 40*time.Millisecond); got != "3.0s" {
		t.Errorf("got %q, want %q", got, "3.0s")
	}
}

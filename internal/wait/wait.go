// Package wait provides the polling primitive behind every time-bounded
// assertion: evaluate a condition until it holds or the budget runs out.
package wait

import (
	"fmt"
	"time"
)

const (
	// DefaultPollInterval is the pause between condition checks.
	DefaultPollInterval = 200 * time.Millisecond
	minPollInterval     = 10 * time.Millisecond
)

type options struct {
	pollInterval time.Duration
}

// Option configures a single Until call.
type Option func(*options)

// WithPollInterval overrides the pause between checks. Values below 10ms are
// raised to 10ms; zero or negative values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d <= 0 {
			return
		}
		if d < minPollInterval {
			d = minPollInterval
		}
		o.pollInterval = d
	}
}

// Until evaluates cond immediately and then after every poll interval until
// it returns true or timeout has elapsed. It reports the final result and
// never fails on its own; callers decide what a timeout means.
//
// The last sleep is shortened so a failing wait returns within
// [timeout, timeout+interval). Elapsed time comes from the monotonic clock.
func Until(timeout time.Duration, cond func() bool, opts ...Option) bool {
	o := options{pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	for {
		if cond() {
			return true
		}
		remaining := timeout - time.Since(start)
		if remaining <= 0 {
			return false
		}
		pause := o.pollInterval
		if pause > remaining {
			pause = remaining
		}
		time.Sleep(pause)
	}
}

// Elapsed formats a duration the way results report it, e.g. "3.0s".
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

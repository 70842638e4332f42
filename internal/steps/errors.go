package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/websteps/internal/locator"
	"github.com/mj1618/websteps/internal/model"
	"github.com/mj1618/websteps/internal/platform"
)

// AssertionError is a step whose expectation did not hold.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string { return e.Message }

// TimeoutError is a polled condition that never held within its budget.
type TimeoutError struct {
	Elapsed   time.Duration
	Condition string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %.1fs waiting for %s", e.Elapsed.Seconds(), e.Condition)
}

// Assert returns an *AssertionError built from format unless cond holds.
func Assert(cond bool, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// Refute returns an *AssertionError built from format if cond holds.
func Refute(cond bool, format string, args ...interface{}) error {
	return Assert(!cond, format, args...)
}

// Failf returns an *AssertionError.
func Failf(format string, args ...interface{}) error {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// Scoped runs fn and turns element faults (stale or vanished elements) into
// assertion failures naming the cause. Session loss and typed step errors pass
// through unchanged.
func Scoped(fn func() error) error {
	err := fn()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, platform.ErrSessionGone):
		return err
	case errors.Is(err, platform.ErrStale):
		return &AssertionError{Message: fmt.Sprintf("element went stale: %v", err)}
	case errors.Is(err, platform.ErrNoSuchElement):
		return &AssertionError{Message: fmt.Sprintf("element is gone: %v", err)}
	}
	return err
}

// Classify converts a handler's error into a Result for step.
func Classify(step string, err error) model.Result {
	if err == nil {
		return model.Success(step)
	}
	if errors.Is(err, platform.ErrSessionGone) || errors.Is(err, context.Canceled) {
		return model.AdapterFault(step, err)
	}

	var te *TimeoutError
	if errors.As(err, &te) {
		return model.Timeout(step, te.Elapsed, te.Condition)
	}
	var nf *locator.NotFoundError
	if errors.As(err, &nf) {
		return model.LocatorNotFound(step, nf.Query)
	}
	var ae *AssertionError
	if errors.As(err, &ae) {
		return model.AssertionFailed(step, ae.Message)
	}
	return model.AssertionFailed(step, err.Error())
}

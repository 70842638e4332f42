package model

import (
	"fmt"
	"time"
)

// Status is the outcome category of a dispatched step.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusNoMatch         Status = "no_match"
	StatusAssertionFailed Status = "assertion_failed"
	StatusLocatorNotFound Status = "locator_not_found"
	StatusTimeout         Status = "timeout"
	StatusAdapterFault    Status = "adapter_fault"
)

// Result is the single outcome of dispatching one step.
type Result struct {
	Status    Status      `yaml:"status"              json:"status"`
	Step      string      `yaml:"step"                json:"step"`
	Message   string      `yaml:"message,omitempty"   json:"message,omitempty"`
	Query     *FieldQuery `yaml:"query,omitempty"     json:"query,omitempty"`
	Condition string      `yaml:"condition,omitempty" json:"condition,omitempty"`
	Elapsed   string      `yaml:"elapsed,omitempty"   json:"elapsed,omitempty"`
}

// OK reports whether the step passed.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Fatal reports whether the session can no longer be used.
func (r Result) Fatal() bool { return r.Status == StatusAdapterFault }

func (r Result) String() string {
	if r.Message == "" {
		return string(r.Status)
	}
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}

func Success(step string) Result {
	return Result{Status: StatusSuccess, Step: step}
}

func NoMatch(step string) Result {
	return Result{
		Status:  StatusNoMatch,
		Step:    step,
		Message: fmt.Sprintf("no step definition matches %q", step),
	}
}

func AssertionFailed(step, message string) Result {
	return Result{Status: StatusAssertionFailed, Step: step, Message: message}
}

func LocatorNotFound(step string, q FieldQuery) Result {
	return Result{
		Status:  StatusLocatorNotFound,
		Step:    step,
		Message: fmt.Sprintf("could not find %s", q),
		Query:   &q,
	}
}

// Timeout records a polled condition that never held.
func Timeout(step string, elapsed time.Duration, condition string) Result {
	return Result{
		Status:    StatusTimeout,
		Step:      step,
		Message:   fmt.Sprintf("timed out after %.1fs waiting for %s", elapsed.Seconds(), condition),
		Condition: condition,
		Elapsed:   fmt.Sprintf("%.1fs", elapsed.Seconds()),
	}
}

func AdapterFault(step string, err error) Result {
	return Result{Status: StatusAdapterFault, Step: step, Message: err.Error()}
}

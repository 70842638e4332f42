package steps

import (
	"math"
	"time"
)

// NewWebRegistry returns a registry holding the full web step vocabulary.
func NewWebRegistry() *Registry {
	r := NewRegistry()
	RegisterWeb(r)
	return r
}

// RegisterWeb adds the web step vocabulary to r.
func RegisterWeb(r *Registry) {
	registerNavigation(r)
	registerLinks(r)
	registerContent(r)
	registerForms(r)
	registerDialogs(r)
}

// maxSeconds is the longest wait a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// seconds converts a captured count to a duration, saturating instead of
// overflowing.
func seconds(n int) time.Duration {
	if int64(n) > maxSeconds {
		return time.Duration(maxSeconds) * time.Second
	}
	return time.Duration(n) * time.Second
}

package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrStale reports an element reference whose node is no longer attached
	// to the document. Callers treat it as a signal to recheck.
	ErrStale = errors.New("stale element reference")

	// ErrNoSuchElement reports an element that cannot be acted on because it
	// no longer exists or has no layout.
	ErrNoSuchElement = errors.New("no such element")

	// ErrNoDialog is returned by dialog operations when no dialog is showing
	// or the driver cannot report dialogs at all.
	ErrNoDialog = errors.New("no dialog is showing")

	// ErrSessionGone reports that the browser session is closed or lost.
	// It is the only fault that ends a run.
	ErrSessionGone = errors.New("browser session is gone")
)

// Session bundles a document tree with the optional capabilities of its driver.
type Session struct {
	Tree          Tree
	Dialogs       DialogHandler // nil when the driver has no dialog support
	Screenshotter Screenshotter // nil when the driver cannot capture
	Driver        string

	closeOnce sync.Once
	closer    func() error
	closeErr  error
}

// NewSession wraps a tree. closer may be nil.
func NewSession(driver string, tree Tree, closer func() error) *Session {
	return &Session{Tree: tree, Driver: driver, closer: closer}
}

// AcceptDialog accepts the showing dialog, or returns ErrNoDialog.
func (s *Session) AcceptDialog(ctx context.Context) error {
	if s.Dialogs == nil {
		return ErrNoDialog
	}
	return s.Dialogs.AcceptDialog(ctx)
}

// DismissDialog dismisses the showing dialog, or returns ErrNoDialog.
func (s *Session) DismissDialog(ctx context.Context) error {
	if s.Dialogs == nil {
		return ErrNoDialog
	}
	return s.Dialogs.DismissDialog(ctx)
}

// Close releases the session. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer()
		}
	})
	return s.closeErr
}

// DriverFunc opens a session for a registered driver.
type DriverFunc func(ctx context.Context, opts Options) (*Session, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]DriverFunc)
)

// RegisterDriver makes a driver available by name. Driver packages call it
// from init; see internal/platform/chrome and internal/platform/static.
func RegisterDriver(name string, fn DriverFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if fn == nil {
		panic("platform: RegisterDriver with nil func for " + name)
	}
	drivers[name] = fn
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnsupported is returned when no driver is registered under a name.
var ErrUnsupported = errors.New("unsupported driver")

// Open starts a session with the named driver.
func Open(ctx context.Context, name string, opts Options) (*Session, error) {
	driversMu.RLock()
	fn, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnsupported, name, strings.Join(Drivers(), ", "))
	}
	sess, err := fn(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s session: %w", name, err)
	}
	if sess.Driver == "" {
		sess.Driver = name
	}
	return sess, nil
}

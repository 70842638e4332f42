package platform

import (
	"context"
	"errors"
	"testing"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "no-such-driver", Options{})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestOpen_RegisteredDriver(t *testing.T) {
	var gotOpts Options
	RegisterDriver("test-open", func(ctx context.Context, opts Options) (*Session, error) {
		gotOpts = opts
		return NewSession("", nil, nil), nil
	})
	defer func() {
		driversMu.Lock()
		delete(drivers, "test-open")
		driversMu.Unlock()
	}()

	sess, err := Open(context.Background(), "test-open", Options{Headless: true, BrowserPath: "/bin/chrome"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Driver != "test-open" {
		t.Errorf("driver: got %q, want %q", sess.Driver, "test-open")
	}
	if !gotOpts.Headless || gotOpts.BrowserPath != "/bin/chrome" {
		t.Errorf("options not passed through: %+v", gotOpts)
	}
}

func TestOpen_DriverError(t *testing.T) {
	boom := errors.New("boom")
	RegisterDriver("test-fail", func(ctx context.Context, opts Options) (*Session, error) {
		return nil, boom
	})
	defer func() {
		driversMu.Lock()
		delete(drivers, "test-fail")
		driversMu.Unlock()
	}()

	_, err := Open(context.Background(), "test-fail", Options{})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped driver error, got: %v", err)
	}
}

func TestSession_DialogsWithoutHandler(t *testing.T) {
	sess := NewSession("x", nil, nil)
	if err := sess.AcceptDialog(context.Background()); !errors.Is(err, ErrNoDialog) {
		t.Errorf("AcceptDialog: expected ErrNoDialog, got %v", err)
	}
	if err := sess.DismissDialog(context.Background()); !errors.Is(err, ErrNoDialog) {
		t.Errorf("DismissDialog: expected ErrNoDialog, got %v", err)
	}
}

func TestSession_CloseOnce(t *testing.T) {
	calls := 0
	sess := NewSession("x", nil, func() error {
		calls++
		return nil
	})
	sess.Close()
	sess.Close()
	if calls != 1 {
		t.Errorf("closer called %d times, want 1", calls)
	}
}

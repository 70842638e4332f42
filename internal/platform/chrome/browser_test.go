package chrome

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/mj1618/websteps/internal/platform"
)

func TestNode(t *testing.T) {
	n := &cdp.Node{NodeID: 7, NodeName: "INPUT"}
	got, err := node(n)
	if err != nil || got != n {
		t.Fatalf("node(*cdp.Node) = %v, %v", got, err)
	}

	for _, ref := range []platform.ElementRef{nil, (*cdp.Node)(nil), "not a node"} {
		if _, err := node(ref); !errors.Is(err, platform.ErrNoSuchElement) {
			t.Errorf("node(%#v): got %v, want ErrNoSuchElement", ref, err)
		}
	}
}

func TestResolveParams(t *testing.T) {
	p := resolveParams(&cdp.Node{NodeID: 3, BackendNodeID: 42})
	if p.BackendNodeID != 42 || p.NodeID != 0 {
		t.Errorf("with backend id: %+v", p)
	}
	p = resolveParams(&cdp.Node{NodeID: 3})
	if p.NodeID != 3 || p.BackendNodeID != 0 {
		t.Errorf("without backend id: %+v", p)
	}
}

func TestOnObject(t *testing.T) {
	p := onObject("obj-1")(cdpruntime.CallFunctionOn(jsText))
	if p.ObjectID != "obj-1" || p.FunctionDeclaration != jsText {
		t.Errorf("params = %+v", p)
	}
}

// hangingBrowser writes an executable that never prints a DevTools address.
func hangingBrowser(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a shell script as the browser")
	}
	path := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen_StartupTimeout(t *testing.T) {
	opts := platform.Options{Headless: true, BrowserPath: hangingBrowser(t), Timeout: 200 * time.Millisecond}

	start := time.Now()
	sess, err := Open(context.Background(), opts)
	if err == nil {
		sess.Close()
		t.Fatal("expected a start-up error")
	}
	if !strings.Contains(err.Error(), "timed out after 200ms") {
		t.Errorf("got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Open returned after %v", elapsed)
	}
}

func TestOpen_ContextDone(t *testing.T) {
	opts := platform.Options{Headless: true, BrowserPath: hangingBrowser(t)}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Open(ctx, opts)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestOpen_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Open(ctx, platform.Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestOpen_MissingBrowser(t *testing.T) {
	opts := platform.Options{Headless: true, BrowserPath: filepath.Join(t.TempDir(), "no-such-browser"), Timeout: 5 * time.Second}
	sess, err := Open(context.Background(), opts)
	if err == nil {
		sess.Close()
		t.Fatal("expected an error for a missing browser binary")
	}
	if !strings.HasPrefix(err.Error(), "start browser:") {
		t.Errorf("got %v", err)
	}
}

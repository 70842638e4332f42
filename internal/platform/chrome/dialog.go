package chrome

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/mj1618/websteps/internal/platform"
)

// dialogWatcher tracks the JavaScript dialog showing in the tab. While a
// dialog is open the page does not answer input events, so actions that may
// open one are raced against the dialog appearing.
type dialogWatcher struct {
	mu      sync.Mutex
	open    bool
	message string
	opened  chan struct{} // closed when a dialog opens
}

func newDialogWatcher() *dialogWatcher {
	return &dialogWatcher{opened: make(chan struct{})}
}

func (w *dialogWatcher) listen(ev interface{}) {
	switch e := ev.(type) {
	case *page.EventJavascriptDialogOpening:
		w.mu.Lock()
		if !w.open {
			w.open = true
			w.message = e.Message
			close(w.opened)
		}
		w.mu.Unlock()
	case *page.EventJavascriptDialogClosed:
		w.mu.Lock()
		if w.open {
			w.open = false
			w.message = ""
			w.opened = make(chan struct{})
		}
		w.mu.Unlock()
	}
}

func (w *dialogWatcher) showing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// guard runs fn and returns early with nil if a dialog opens first. fn keeps
// running and completes once the dialog is handled.
func (w *dialogWatcher) guard(fn func() error) error {
	w.mu.Lock()
	opened := w.opened
	w.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-opened:
		return nil
	}
}

func (b *Browser) AcceptDialog(ctx context.Context) error {
	return b.handleDialog(ctx, true)
}

func (b *Browser) DismissDialog(ctx context.Context) error {
	return b.handleDialog(ctx, false)
}

func (b *Browser) handleDialog(ctx context.Context, accept bool) error {
	if !b.dialogs.showing() {
		return platform.ErrNoDialog
	}
	return b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return page.HandleJavaScriptDialog(accept).Do(ctx)
	}))
}

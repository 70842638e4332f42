// Package chrome drives a Chromium browser over the DevTools protocol.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/platform"
)

func init() {
	platform.RegisterDriver("chrome", Open)
}

// Browser is one browser tab.
type Browser struct {
	ctx         context.Context // chromedp tab context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	dialogs     *dialogWatcher
}

var (
	_ platform.Tree          = (*Browser)(nil)
	_ platform.DialogHandler = (*Browser)(nil)
	_ platform.Screenshotter = (*Browser)(nil)
)

// Open starts a browser and returns a session bound to its first tab. Start-up
// is bounded by ctx and opts.Timeout; after that the browser lives until the
// session is closed.
func Open(ctx context.Context, opts platform.Options) (*platform.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logging.New("chrome")

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BrowserPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			log.Warn(fmt.Sprintf(format, args...))
		}),
	)

	b := &Browser{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel, dialogs: newDialogWatcher()}
	chromedp.ListenTarget(tabCtx, b.dialogs.listen)

	// The first Run launches the browser.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case err := <-started:
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("start browser: %w", err)
		}
	case <-timeout:
		b.Close()
		return nil, fmt.Errorf("start browser: timed out after %s", opts.Timeout)
	case <-ctx.Done():
		b.Close()
		return nil, fmt.Errorf("start browser: %w", ctx.Err())
	}
	log.Info("browser started", "headless", opts.Headless)

	sess := platform.NewSession("chrome", b, b.Close)
	sess.Dialogs = b
	sess.Screenshotter = b
	return sess, nil
}

// Close shuts the tab and the browser process.
func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

// run executes actions on the tab after checking the caller's context.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return classify(chromedp.Run(b.ctx, actions...))
}

func (b *Browser) FindAll(ctx context.Context, q platform.Query) ([]platform.ElementRef, error) {
	var nodes []*cdp.Node
	if q.Within == nil {
		if err := b.run(ctx, chromedp.Nodes(XPath(q), &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
			return nil, err
		}
		return refs(nodes), nil
	}

	scope, err := node(q.Within)
	if err != nil {
		return nil, err
	}
	err = b.run(ctx, chromedp.Nodes(CSS(q), &nodes, chromedp.ByQueryAll, chromedp.FromNode(scope), chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}

	var out []platform.ElementRef
	for _, n := range nodes {
		if q.ChildrenOnly && n.ParentID != scope.NodeID {
			continue
		}
		if q.Text != "" || q.Contains != "" {
			text, err := b.Text(ctx, n)
			if errors.Is(err, platform.ErrStale) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if q.Text != "" && text != q.Text {
				continue
			}
			if q.Contains != "" && !strings.Contains(text, q.Contains) {
				continue
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func refs(nodes []*cdp.Node) []platform.ElementRef {
	out := make([]platform.ElementRef, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

func node(ref platform.ElementRef) (*cdp.Node, error) {
	n, ok := ref.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("chrome: foreign element reference %T: %w", ref, platform.ErrNoSuchElement)
	}
	return n, nil
}

// resolveParams asks for a remote object for n, preferring the backend id,
// which survives DOM domain resets.
func resolveParams(n *cdp.Node) *dom.ResolveNodeParams {
	if n.BackendNodeID != 0 {
		return dom.ResolveNode().WithBackendNodeID(n.BackendNodeID)
	}
	return dom.ResolveNode().WithNodeID(n.NodeID)
}

// onObject points a function call at a resolved remote object.
func onObject(id runtime.RemoteObjectID) chromedp.CallOption {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id)
	}
}

// call runs a JavaScript function with the element bound to this.
func (b *Browser) call(ctx context.Context, ref platform.ElementRef, fn string, res interface{}, args ...interface{}) error {
	n, err := node(ref)
	if err != nil {
		return err
	}
	return b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := resolveParams(n).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()
		return chromedp.CallFunctionOn(fn, res, onObject(obj.ObjectID), args...).Do(ctx)
	}))
}

func (b *Browser) Attribute(ctx context.Context, ref platform.ElementRef, name string) (string, bool, error) {
	var res struct {
		OK    bool   `json:"ok"`
		Value string `json:"value"`
	}
	if err := b.call(ctx, ref, jsAttribute, &res, name); err != nil {
		return "", false, err
	}
	return res.Value, res.OK, nil
}

func (b *Browser) Text(ctx context.Context, ref platform.ElementRef) (string, error) {
	var text string
	if err := b.call(ctx, ref, jsText, &text); err != nil {
		return "", err
	}
	return platform.NormalizeSpace(text), nil
}

func (b *Browser) IsVisible(ctx context.Context, ref platform.ElementRef) (bool, error) {
	var visible bool
	err := b.call(ctx, ref, jsVisible, &visible)
	return visible, err
}

func (b *Browser) IsSelected(ctx context.Context, ref platform.ElementRef) (bool, error) {
	var selected bool
	err := b.call(ctx, ref, jsSelected, &selected)
	return selected, err
}

// Click clicks the element. Options are selected by script since they have
// no box of their own. A click that opens a JavaScript dialog returns as soon
// as the dialog shows.
func (b *Browser) Click(ctx context.Context, ref platform.ElementRef) error {
	n, err := node(ref)
	if err != nil {
		return err
	}
	if strings.EqualFold(n.NodeName, "option") {
		return b.call(ctx, ref, jsSelectOption, nil)
	}
	return b.dialogs.guard(func() error {
		return b.run(ctx, chromedp.MouseClickNode(n))
	})
}

func (b *Browser) Type(ctx context.Context, ref platform.ElementRef, text string) error {
	n, err := node(ref)
	if err != nil {
		return err
	}
	return b.dialogs.guard(func() error {
		return b.run(ctx, chromedp.KeyEventNode(n, text))
	})
}

func (b *Browser) Clear(ctx context.Context, ref platform.ElementRef) error {
	return b.call(ctx, ref, jsClear, nil)
}

func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	var u string
	err := b.run(ctx, chromedp.Location(&u))
	return u, err
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *Browser) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := b.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

var staleMessages = []string{
	"Could not find node with given id",
	"No node with given id found",
	"Node is detached from document",
	"Cannot find context with specified id",
	"No node found for given backend id",
}

var missingMessages = []string{
	"Node does not have a layout object",
	"Could not compute box model",
	"node is not visible",
}

// classify maps DevTools failures onto the platform's sentinel errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, chromedp.ErrInvalidContext) {
		return fmt.Errorf("%w: %v", platform.ErrSessionGone, err)
	}
	msg := err.Error()
	for _, m := range staleMessages {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %v", platform.ErrStale, err)
		}
	}
	for _, m := range missingMessages {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %v", platform.ErrNoSuchElement, err)
		}
	}
	if strings.Contains(msg, "target closed") || strings.Contains(msg, "websocket: close") {
		return fmt.Errorf("%w: %v", platform.ErrSessionGone, err)
	}
	return err
}

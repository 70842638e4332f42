package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/mj1618/websteps/internal/content"
	"github.com/mj1618/websteps/internal/locator"
	"github.com/mj1618/websteps/internal/platform"
	"github.com/mj1618/websteps/internal/wait"
)

// Context is what a handler sees while it runs. A new one is built for every
// dispatched step.
type Context struct {
	Text      string
	Multiline []string // nil when the step carries no payload
	Session   *platform.Session
	Tree      platform.Tree
	Locator   *locator.Locator
	BaseURL   string
	Logger    *slog.Logger

	ctx          context.Context
	pollInterval time.Duration
}

// Ctx returns the context the step was dispatched with.
func (c *Context) Ctx() context.Context { return c.ctx }

// SiteURL resolves page against the configured base URL.
func (c *Context) SiteURL(page string) (string, error) {
	if c.BaseURL == "" {
		return "", Failf("no base URL configured for site page %q", page)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", c.BaseURL, err)
	}
	ref, err := url.Parse(page)
	if err != nil {
		return "", fmt.Errorf("parse page %q: %w", page, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Eventually polls check until it reports true or timeout elapses. Stale
// elements during a check count as "not yet"; any other error stops polling
// and is returned. On timeout it returns a *TimeoutError naming condition.
func (c *Context) Eventually(timeout time.Duration, condition string, check func() (bool, error)) error {
	var fault error
	start := time.Now()
	ok := wait.Until(timeout, func() bool {
		if err := c.ctx.Err(); err != nil {
			fault = err
			return true
		}
		held, err := check()
		if errors.Is(err, platform.ErrStale) {
			return false
		}
		if err != nil {
			fault = err
			return true
		}
		return held
	}, wait.WithPollInterval(c.pollInterval))
	if fault != nil {
		return fault
	}
	if !ok {
		return &TimeoutError{Elapsed: time.Since(start), Condition: condition}
	}
	return nil
}

// SeesText reports whether text is visible anywhere on the page.
func (c *Context) SeesText(text string) (bool, error) {
	return content.ContainsVisibleText(c.ctx, c.Tree, nil, text)
}

// FindAll runs q against the page.
func (c *Context) FindAll(q platform.Query) ([]platform.ElementRef, error) {
	return c.Tree.FindAll(c.ctx, q)
}

// Exists reports whether q matches anything.
func (c *Context) Exists(q platform.Query) (bool, error) {
	refs, err := c.FindAll(q)
	return len(refs) > 0, err
}

// ElementByID returns the first element with the given id, or nil.
func (c *Context) ElementByID(id string) (platform.ElementRef, error) {
	refs, err := c.FindAll(idQuery(id))
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	return refs[0], nil
}

// Click clicks ref, converting element faults into assertion failures.
func (c *Context) Click(ref platform.ElementRef) error {
	return Scoped(func() error { return c.Tree.Click(c.ctx, ref) })
}

func idQuery(id string) platform.Query {
	return platform.Query{}.WithAttr("id", id)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/mj1618/websteps/internal/config"
	"github.com/mj1618/websteps/internal/platform"
	"github.com/mj1618/websteps/internal/scenario"
	"github.com/mj1618/websteps/internal/steps"
)

// openSession starts a browser session with the configured driver.
func openSession(ctx context.Context, cfg *config.Config) (*platform.Session, error) {
	return platform.Open(ctx, cfg.Driver, platform.Options{
		Headless:    cfg.Headless,
		BrowserPath: cfg.BrowserPath,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
	})
}

// newDispatcher binds the web vocabulary to sess.
func newDispatcher(sess *platform.Session, cfg *config.Config, observers ...steps.Observer) *steps.Dispatcher {
	opts := []steps.Option{steps.WithBaseURL(cfg.BaseURL)}
	if cfg.PollInterval > 0 {
		opts = append(opts, steps.WithPollInterval(cfg.PollInterval))
	}
	for _, o := range observers {
		opts = append(opts, steps.WithObserver(o))
	}
	return steps.NewDispatcher(steps.NewWebRegistry(), sess, opts...)
}

// loadScenarios reads each file in paths, or one scenario from stdin when
// there are none.
func loadScenarios(paths []string, stdin io.Reader) ([]*scenario.Scenario, error) {
	if len(paths) == 0 {
		sc, err := scenario.Read(stdin, "stdin")
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return []*scenario.Scenario{sc}, nil
	}
	out := make([]*scenario.Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := scenario.Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// resolveURL resolves target against base when target is relative and base
// is set.
func resolveURL(base, target string) (string, error) {
	if base == "" {
		return target, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	t, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", target, err)
	}
	return b.ResolveReference(t).String(), nil
}

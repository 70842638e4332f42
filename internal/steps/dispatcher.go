package steps

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/websteps/internal/locator"
	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/model"
	"github.com/mj1618/websteps/internal/platform"
	"github.com/mj1618/websteps/internal/wait"
)

// Observer is told about every dispatched step.
type Observer interface {
	ObserveStep(res model.Result, d time.Duration)
}

// Dispatcher runs step sentences against one session.
type Dispatcher struct {
	registry     *Registry
	session      *platform.Session
	locator      *locator.Locator
	baseURL      string
	pollInterval time.Duration
	logger       *slog.Logger
	observers    []Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBaseURL sets the URL "site page" steps resolve against.
func WithBaseURL(u string) Option {
	return func(d *Dispatcher) { d.baseURL = u }
}

// WithPollInterval sets the pause between checks of "within N seconds" steps.
func WithPollInterval(p time.Duration) Option {
	return func(d *Dispatcher) { d.pollInterval = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithObserver adds an observer; observers run in the order added.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, o) }
}

func NewDispatcher(reg *Registry, sess *platform.Session, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:     reg,
		session:      sess,
		locator:      locator.New(sess.Tree),
		pollInterval: wait.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.New("steps")
	}
	return d
}

// Session returns the session steps run against.
func (d *Dispatcher) Session() *platform.Session { return d.session }

// Registry returns the step definitions the dispatcher matches against.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch runs one step and reports its outcome. It never returns an error:
// every failure is a Result.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, multiline []string) model.Result {
	start := time.Now()
	res := d.dispatch(ctx, text, multiline)
	elapsed := time.Since(start)

	attrs := []any{"step", text, "status", res.Status, "elapsed", wait.Elapsed(elapsed)}
	switch {
	case res.OK():
		d.logger.Debug("step passed", attrs...)
	case res.Fatal():
		d.logger.Error("step faulted", append(attrs, "error", res.Message)...)
	default:
		d.logger.Info("step failed", append(attrs, "error", res.Message)...)
	}
	for _, o := range d.observers {
		o.ObserveStep(res, elapsed)
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, text string, multiline []string) (res model.Result) {
	m, ok := d.registry.Match(text)
	if !ok {
		return model.NoMatch(text)
	}
	c := &Context{
		Text:         text,
		Multiline:    multiline,
		Session:      d.session,
		Tree:         d.session.Tree,
		Locator:      d.locator,
		BaseURL:      d.baseURL,
		Logger:       d.logger.With("step", text),
		ctx:          ctx,
		pollInterval: d.pollInterval,
	}
	defer func() {
		if r := recover(); r != nil {
			res = model.AssertionFailed(text, fmt.Sprintf("step panicked: %v", r))
		}
	}()
	return Classify(text, m.call(c))
}

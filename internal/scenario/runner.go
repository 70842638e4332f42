package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/model"
)

// Dispatcher runs a single step.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, multiline []string) model.Result
}

// FailureFunc is called after each failed step. index is zero-based.
type FailureFunc func(ctx context.Context, rep *Report, index int, res model.Result)

// Report is the outcome of one scenario run.
type Report struct {
	RunID     string         `yaml:"run_id"          json:"run_id"`
	Name      string         `yaml:"name,omitempty"  json:"name,omitempty"`
	OK        bool           `yaml:"ok"              json:"ok"`
	Steps     int            `yaml:"steps"           json:"steps"`
	Completed int            `yaml:"completed"       json:"completed"`
	Error     string         `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []model.Result `yaml:"results"         json:"results"`
}

// Runner executes scenarios step by step.
type Runner struct {
	Dispatcher Dispatcher

	// StopOnError ends the run at the first failed step. A session fault
	// always ends the run.
	StopOnError bool

	// OnFailure, if set, runs after each failed step.
	OnFailure FailureFunc

	Logger *slog.Logger
}

// NewRunner returns a runner that stops on the first failure.
func NewRunner(d Dispatcher) *Runner {
	return &Runner{Dispatcher: d, StopOnError: true}
}

// Run dispatches the scenario's steps in order.
func (r *Runner) Run(ctx context.Context, sc *Scenario) *Report {
	rep := &Report{
		RunID:   uuid.NewString(),
		Name:    sc.Name,
		Steps:   len(sc.Steps),
		Results: make([]model.Result, 0, len(sc.Steps)),
	}
	log := r.Logger
	if log == nil {
		log = logging.New("scenario")
	}
	log = log.With("run_id", rep.RunID, "scenario", sc.Name)
	log.Info("scenario started", "steps", rep.Steps)

	failed := false
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			rep.Error = fmt.Sprintf("step %d: %v", i+1, err)
			failed = true
			break
		}

		res := r.Dispatcher.Dispatch(ctx, st.Text, st.Lines)
		rep.Results = append(rep.Results, res)
		if res.OK() {
			rep.Completed++
			continue
		}

		failed = true
		if r.OnFailure != nil {
			r.OnFailure(ctx, rep, i, res)
		}
		if res.Fatal() || r.StopOnError {
			rep.Error = fmt.Sprintf("step %d: %s", i+1, res)
			break
		}
	}
	rep.OK = !failed

	log.Info("scenario finished", "ok", rep.OK, "completed", rep.Completed)
	return rep
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/websteps/internal/capture"
	"github.com/mj1618/websteps/internal/config"
	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/metrics"
	"github.com/mj1618/websteps/internal/model"
	"github.com/mj1618/websteps/internal/output"
	"github.com/mj1618/websteps/internal/scenario"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errScenarioFailed makes the process exit non-zero after the reports are
// printed.
var errScenarioFailed = errors.New("one or more scenarios failed")

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Run YAML step scenarios",
	Long: `Run scenarios from YAML files, or one scenario from stdin when no files
are given. Each file gets its own browser session; its steps run in order.

A scenario is a list of steps, or a mapping with a name and steps. A step is a
sentence, or a mapping with the sentence and lines for list steps.

Example:
  websteps run --driver static --base-url http://localhost:8080 <<'EOF'
  name: login
  steps:
    - I visit site page "/login"
    - I fill in "Email" with "ada@example.com"
    - I press "Sign in"
    - I should see "Welcome" within 5 seconds
  EOF`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("parallel", 1, "Number of scenario files to run at once")
	runCmd.Flags().Bool("stop-on-error", true, "Stop a scenario at its first failed step")
	runCmd.Flags().String("screenshot-dir", "", "Write an annotated screenshot of each failed step to this directory")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	runCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := *settings
	if cmd.Flags().Changed("stop-on-error") {
		cfg.StopOnError, _ = cmd.Flags().GetBool("stop-on-error")
	}
	if cmd.Flags().Changed("screenshot-dir") {
		cfg.ScreenshotDir, _ = cmd.Flags().GetString("screenshot-dir")
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}
	parallel, _ := cmd.Flags().GetInt("parallel")
	if parallel < 1 {
		return fmt.Errorf("--parallel must be at least 1, got %d", parallel)
	}

	scenarios, err := loadScenarios(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stepMetrics := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := stepMetrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.New("run").Error("metrics server failed", "error", err)
			}
		}()
	}

	reports := make([]*scenario.Report, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, sc := range scenarios {
		g.Go(func() error {
			rep, err := runScenario(gctx, &cfg, sc, stepMetrics)
			if err != nil {
				return fmt.Errorf("%s: %w", sc.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(reports) == 1 {
		err = output.Print(reports[0])
	} else {
		err = output.Print(reports)
	}
	if err != nil {
		return err
	}
	for _, rep := range reports {
		if !rep.OK {
			return errScenarioFailed
		}
	}
	return nil
}

// runScenario runs sc on a session of its own. Only a session that cannot
// be opened is an error; step failures are in the report.
func runScenario(ctx context.Context, cfg *config.Config, sc *scenario.Scenario, stepMetrics *metrics.Steps) (*scenario.Report, error) {
	sess, err := openSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	log := logging.New("run")
	r := scenario.NewRunner(newDispatcher(sess, cfg, stepMetrics))
	r.StopOnError = cfg.StopOnError

	if cfg.ScreenshotDir != "" {
		if sess.Screenshotter == nil {
			log.Warn("driver cannot take screenshots, none will be written", "driver", sess.Driver)
		} else {
			shots := &capture.FailureShots{Dir: cfg.ScreenshotDir, Scale: cfg.ScreenshotScale, Shots: sess.Screenshotter}
			r.OnFailure = func(ctx context.Context, rep *scenario.Report, index int, res model.Result) {
				if res.Fatal() {
					return
				}
				path, err := shots.Capture(ctx, rep.RunID, index, res)
				if err != nil {
					log.Warn("failure screenshot not written", "run_id", rep.RunID, "step", index+1, "error", err)
					return
				}
				log.Info("failure screenshot written", "run_id", rep.RunID, "step", index+1, "path", path)
			}
		}
	}
	return r.Run(ctx, sc), nil
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/metrics"
	"github.com/mj1618/websteps/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing websteps tools",
	Long: `Start a Model Context Protocol (MCP) server with one browser session for its
lifetime. Agents call the step, steps and scenario tools; calls run one at a
time.

Supported transports:
  stdio             Standard I/O (default, for local MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  websteps serve
  websteps serve --transport streamable-http --port 8080 --driver static`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Bool("stop-on-error", true, "Default for the scenario tool's stop_on_error")
	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	stopOnError := settings.StopOnError
	if cmd.Flags().Changed("stop-on-error") {
		stopOnError, _ = cmd.Flags().GetBool("stop-on-error")
	}
	metricsAddr := settings.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer sess.Close()

	stepMetrics := metrics.New()
	if metricsAddr != "" {
		go func() {
			if err := stepMetrics.Serve(ctx, metricsAddr); err != nil {
				logging.New("serve").Error("metrics server failed", "error", err)
			}
		}()
	}

	srv := server.New(newDispatcher(sess, settings, stepMetrics), stopOnError)
	return srv.Serve(ctx, server.Config{Transport: transport, Port: port})
}

package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mj1618/websteps/internal/output"
	"github.com/mj1618/websteps/internal/scenario"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("step",
			mcp.WithDescription("Run one step sentence against the browser session, e.g. 'I fill in \"Email\" with \"a@b.c\"'. Returns the result status and message."),
			mcp.WithString("text", mcp.Required(), mcp.Description("The step sentence")),
			mcp.WithArray("lines", mcp.Description("Multiline payload for steps that take a list"), mcp.WithStringItems()),
		),
		s.handleStep,
	)

	s.mcp.AddTool(
		mcp.NewTool("steps",
			mcp.WithDescription("List the step patterns this server understands, in match order"),
			mcp.WithString("filter", mcp.Description("Only list patterns containing this substring")),
		),
		s.handleSteps,
	)

	s.mcp.AddTool(
		mcp.NewTool("scenario",
			mcp.WithDescription("Run a YAML list of steps in order and return the report"),
			mcp.WithString("yaml", mcp.Required(), mcp.Description("Scenario document: a list of steps, or a mapping with name and steps")),
			mcp.WithBoolean("stop_on_error", mcp.Description("Stop at the first failed step (default true)")),
		),
		s.handleScenario,
	)
}

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) string {
	b, err := output.Marshal(v, output.FormatYAML, false)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	text := stringParam(params, "text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	lines := stringsParam(params, "lines")

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.dispatcher.Dispatch(ctx, text, lines)
	if !res.OK() {
		return mcp.NewToolResultError(toText(res)), nil
	}
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) handleSteps(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := stringParam(request.GetArguments(), "filter", "")
	var patterns []string
	for _, p := range s.dispatcher.Registry().Patterns() {
		if filter == "" || strings.Contains(p, filter) {
			patterns = append(patterns, p)
		}
	}
	return mcp.NewToolResultText(toText(patterns)), nil
}

func (s *Server) handleScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sc, err := scenario.Parse([]byte(stringParam(params, "yaml", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := scenario.NewRunner(s.dispatcher)
	r.StopOnError = boolParam(params, "stop_on_error", s.stopOnError)
	rep := r.Run(ctx, sc)
	if !rep.OK {
		return mcp.NewToolResultError(toText(rep)), nil
	}
	return mcp.NewToolResultText(toText(rep)), nil
}

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// stringsParam accepts a JSON array of strings or a single newline-separated
// string.
func stringsParam(params map[string]interface{}, key string) []string {
	switch v := params[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(strings.TrimRight(v, "\n"), "\n")
	}
	return nil
}

package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mj1618/websteps/internal/model"
	"github.com/mj1618/websteps/internal/platform"
)

// FailureShots writes an annotated screenshot for each failed step.
type FailureShots struct {
	Dir   string
	Scale float64
	Shots platform.Screenshotter
}

// Path returns where the screenshot of step index (zero-based) of run goes.
func (f *FailureShots) Path(runID string, index int) string {
	return filepath.Join(f.Dir, fmt.Sprintf("%s-step-%d.png", runID, index+1))
}

// Capture screenshots the page and writes it with res as the caption. It
// returns the file written.
func (f *FailureShots) Capture(ctx context.Context, runID string, index int, res model.Result) (string, error) {
	if f.Shots == nil {
		return "", fmt.Errorf("driver cannot take screenshots")
	}
	raw, err := f.Shots.CaptureScreenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}
	caption := []string{fmt.Sprintf("step %d: %s", index+1, res.Step), res.String()}
	data, err := Annotate(raw, caption, f.Scale)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", err
	}
	path := f.Path(runID, index)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

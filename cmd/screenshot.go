package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"

	"github.com/mj1618/websteps/internal/capture"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot <url>",
	Short: "Capture a screenshot of a page",
	Long:  "Open a browser session, visit the URL (relative URLs resolve against --base-url) and capture the viewport.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().String("format", "png", "Output format: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 1, "Scale factor 0.1-1.0 (for token efficiency)")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")
	scale, _ := cmd.Flags().GetFloat64("scale")
	if scale <= 0 || scale > 1 {
		return fmt.Errorf("--scale must be in (0, 1], got %g", scale)
	}

	target, err := resolveURL(settings.BaseURL, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx, settings)
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported by the %s driver", sess.Driver)
	}

	if err := sess.Tree.Navigate(ctx, target); err != nil {
		return fmt.Errorf("visit %s: %w", target, err)
	}
	raw, err := sess.Screenshotter.CaptureScreenshot(ctx)
	if err != nil {
		return err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}
	data, err := capture.Encode(capture.Scale(img, scale), format, quality)
	if err != nil {
		return err
	}

	// Output to file or stdout
	if output != "" {
		return os.WriteFile(output, data, 0644)
	}

	// Default: write to stdout as base64 for easy agent consumption
	out := cmd.OutOrStdout()
	encoder := base64.NewEncoder(base64.StdEncoding, out)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

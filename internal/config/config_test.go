package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "websteps.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
driver: static
base_url: http://localhost:8080/
poll_interval: 50ms
screenshot_dir: shots
`)
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Driver = "static"
	want.BaseURL = "http://localhost:8080/"
	want.PollInterval = 50 * time.Millisecond
	want.ScreenshotDir = "shots"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "driver: static\nheadless: true\n")
	t.Setenv("WEBSTEPS_DRIVER", "chrome")
	t.Setenv("WEBSTEPS_HEADLESS", "false")
	t.Setenv("WEBSTEPS_POLL_INTERVAL", "1s")

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Driver != "chrome" || got.Headless || got.PollInterval != time.Second {
		t.Errorf("got %+v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{"bad yaml", "driver: [", nil, "parsing YAML"},
		{"bad duration", "poll_interval: soon", nil, "parsing YAML"},
		{"negative poll", "poll_interval: -1s", nil, "poll_interval"},
		{"scale too big", "screenshot_scale: 2", nil, "screenshot_scale"},
		{"bad level", "log_level: loud", nil, "unknown log level"},
		{"bad format", "log_format: xml", nil, "log_format"},
		{"empty driver", `driver: ""`, nil, "driver must be set"},
		{"bad env bool", "", map[string]string{"WEBSTEPS_HEADLESS": "maybe"}, "WEBSTEPS_HEADLESS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// No file: defaults.
	got, err := Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	// websteps.yaml in the working directory is picked up.
	if err := os.WriteFile(DefaultFile, []byte("driver: static\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if got.Driver != "static" {
		t.Errorf("driver = %q, want static", got.Driver)
	}

	// An explicit path must exist.
	if _, err := Resolve("missing.yaml"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

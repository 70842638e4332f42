package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mj1618/websteps/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// execute runs the root command with args and returns what it printed.
// Flags are reset afterwards so tests do not leak into each other.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		output.Stdout = os.Stdout
		output.PrettyOutput = false
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"run", "steps", "serve", "screenshot", "version"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	tests := []struct {
		name     string
		flagType string
	}{
		{"config", "string"},
		{"format", "string"},
		{"driver", "string"},
		{"base-url", "string"},
		{"headless", "bool"},
		{"log-level", "string"},
		{"log-format", "string"},
	}
	for _, tt := range tests {
		f := flags.Lookup(tt.name)
		if f == nil {
			t.Errorf("expected flag %q not found", tt.name)
			continue
		}
		if f.Value.Type() != tt.flagType {
			t.Errorf("flag %q: expected type %q, got %q", tt.name, tt.flagType, f.Value.Type())
		}
	}
}

func TestLoadSettings_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "websteps.yaml")
	body := "driver: static\nbase_url: http://from-file.test/\nheadless: false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "--config", path, "version"); err != nil {
		t.Fatal(err)
	}
	if settings.Driver != "static" || settings.BaseURL != "http://from-file.test/" || settings.Headless {
		t.Errorf("file settings not applied: %+v", settings)
	}

	if _, err := execute(t, "", "--config", path, "--base-url", "http://from-flag.test/", "--headless", "version"); err != nil {
		t.Fatal(err)
	}
	if settings.BaseURL != "http://from-flag.test/" || !settings.Headless {
		t.Errorf("flags did not override: %+v", settings)
	}
	if settings.Driver != "static" {
		t.Errorf("unset flag overrode file: driver = %q", settings.Driver)
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"--format", "xml", "version"}, "unsupported output format"},
		{"bad log level", []string{"--log-level", "loud", "version"}, "unknown log level"},
		{"missing config", []string{"--config", "nope.yaml", "version"}, "nope.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	var got versionInfo
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"chrome", "static"}, got.Drivers); diff != "" {
		t.Errorf("drivers mismatch (-want +got):\n%s", diff)
	}
	if got.Version == "" || got.Go == "" {
		t.Errorf("incomplete version info: %+v", got)
	}
}

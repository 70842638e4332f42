package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mj1618/websteps/internal/model"
	"github.com/mj1618/websteps/internal/scenario"
)

// loginSite serves a sign-in form that greets whoever submits it.
func loginSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<form action="/session" method="post">
			<label for="email">Email</label><input id="email" name="email">
			<input type="submit" value="Sign in">
		</form>`)
	})
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<p>Welcome, %s</p>`, r.FormValue("email"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const loginScenario = `name: login
steps:
  - I visit site page "/login"
  - I fill in "Email" with "ada@example.com"
  - I press "Sign in"
  - I should see "Welcome, ada@example.com" within 2 seconds
`

func TestRunCommand_Flags(t *testing.T) {
	flags := runCmd.Flags()
	tests := []struct {
		name     string
		flagType string
	}{
		{"parallel", "int"},
		{"stop-on-error", "bool"},
		{"screenshot-dir", "string"},
		{"metrics-addr", "string"},
		{"pretty", "bool"},
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

func TestRunCommand_Login(t *testing.T) {
	srv := loginSite(t)
	path := writeScenario(t, t.TempDir(), "login.yaml", loginScenario)

	out, err := execute(t, "", "--driver", "static", "--base-url", srv.URL, "--format", "json", "run", path)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	var rep scenario.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !rep.OK || rep.Name != "login" || rep.Steps != 4 || rep.Completed != 4 {
		t.Errorf("report = %+v", rep)
	}
	if rep.RunID == "" {
		t.Error("report has no run id")
	}
}

func TestRunCommand_FailureExitsNonZero(t *testing.T) {
	srv := loginSite(t)
	path := writeScenario(t, t.TempDir(), "broken.yaml", `
- I visit site page "/login"
- I should see "Goodbye"
- I should see "Email"
`)

	out, err := execute(t, "", "--driver", "static", "--base-url", srv.URL, "--format", "json", "run", path)
	if !errors.Is(err, errScenarioFailed) {
		t.Fatalf("got %v, want errScenarioFailed", err)
	}
	var rep scenario.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if rep.OK || rep.Name != "broken" || len(rep.Results) != 2 {
		t.Fatalf("report = %+v", rep)
	}
	if got := rep.Results[1].Status; got != model.StatusAssertionFailed {
		t.Errorf("status = %s, want assertion_failed", got)
	}
	if !strings.HasPrefix(rep.Error, "step 2: ") {
		t.Errorf("error = %q", rep.Error)
	}
}

func TestRunCommand_KeepGoing(t *testing.T) {
	srv := loginSite(t)
	path := writeScenario(t, t.TempDir(), "broken.yaml", `
- I visit site page "/login"
- I should see "Goodbye"
- I should see "Email"
`)

	out, err := execute(t, "", "--driver", "static", "--base-url", srv.URL, "--format", "json", "run", "--stop-on-error=false", path)
	if !errors.Is(err, errScenarioFailed) {
		t.Fatalf("got %v, want errScenarioFailed", err)
	}
	var rep scenario.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(rep.Results) != 3 || rep.Completed != 2 {
		t.Errorf("report = %+v", rep)
	}
}

func TestRunCommand_Parallel(t *testing.T) {
	srv := loginSite(t)
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 3; i++ {
		paths = append(paths, writeScenario(t, dir, fmt.Sprintf("login-%d.yaml", i), strings.Replace(loginScenario, "name: login", fmt.Sprintf("name: login-%d", i), 1)))
	}

	args := append([]string{"--driver", "static", "--base-url", srv.URL, "--format", "json", "run", "--parallel", "2"}, paths...)
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	var reps []scenario.Report
	if err := json.Unmarshal([]byte(out), &reps); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(reps) != 3 {
		t.Fatalf("got %d reports, want 3", len(reps))
	}
	ids := map[string]bool{}
	for i, rep := range reps {
		if want := fmt.Sprintf("login-%d", i); rep.Name != want || !rep.OK {
			t.Errorf("report %d = %+v, want ok %s", i, rep, want)
		}
		ids[rep.RunID] = true
	}
	if len(ids) != 3 {
		t.Errorf("run ids are not unique: %v", ids)
	}
}

func TestRunCommand_Stdin(t *testing.T) {
	srv := loginSite(t)
	out, err := execute(t, loginScenario, "--driver", "static", "--base-url", srv.URL, "--format", "json", "run")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	var rep scenario.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !rep.OK || rep.Completed != 4 {
		t.Errorf("report = %+v", rep)
	}
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, "ok.yaml", "- I should see \"x\"\n")
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"empty stdin", "", []string{"--driver", "static", "run"}, "no steps"},
		{"missing file", "", []string{"--driver", "static", "run", filepath.Join(dir, "missing.yaml")}, "missing.yaml"},
		{"bad parallel", "", []string{"--driver", "static", "run", "--parallel", "0", good}, "--parallel"},
		{"unknown driver", "", []string{"--driver", "netscape", "run", good}, "unsupported driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestScreenshotCommand_StaticDriverCannotCapture(t *testing.T) {
	_, err := execute(t, "", "--driver", "static", "screenshot", "http://example.test/")
	if err == nil || !strings.Contains(err.Error(), "not supported by the static driver") {
		t.Errorf("got %v", err)
	}
}

func TestScreenshotCommand_Args(t *testing.T) {
	if _, err := execute(t, "", "--driver", "static", "screenshot"); err == nil {
		t.Error("expected an error without a URL")
	}
}

func TestServeCommand_UnknownTransport(t *testing.T) {
	_, err := execute(t, "", "--driver", "static", "serve", "--transport", "carrier-pigeon")
	if err == nil || !strings.Contains(err.Error(), "unsupported transport") {
		t.Errorf("got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, target, want string
	}{
		{"", "http://a.test/x", "http://a.test/x"},
		{"http://a.test/app/", "login", "http://a.test/app/login"},
		{"http://a.test/app/", "/login", "http://a.test/login"},
		{"http://a.test/", "http://b.test/", "http://b.test/"},
	}
	for _, tt := range tests {
		got, err := resolveURL(tt.base, tt.target)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.base, tt.target, got, tt.want)
		}
	}
}

package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestResult_OKAndFatal(t *testing.T) {
	tests := []struct {
		res   Result
		ok    bool
		fatal bool
	}{
		{Success("s"), true, false},
		{NoMatch("s"), false, false},
		{AssertionFailed("s", "m"), false, false},
		{LocatorNotFound("s", FieldQuery{Kind: KindText, Name: "x"}), false, false},
		{Timeout("s", time.Second, "c"), false, false},
		{AdapterFault("s", errors.New("gone")), false, true},
	}
	for _, tt := range tests {
		if tt.res.OK() != tt.ok {
			t.Errorf("%s: OK() = %v, want %v", tt.res.Status, tt.res.OK(), tt.ok)
		}
		if tt.res.Fatal() != tt.fatal {
			t.Errorf("%s: Fatal() = %v, want %v", tt.res.Status, tt.res.Fatal(), tt.fatal)
		}
	}
}

func TestLocatorNotFound_CarriesQuery(t *testing.T) {
	res := LocatorNotFound(`I fill in "user" with "x"`, FieldQuery{Kind: KindText, Name: "user"})
	if res.Query == nil || res.Query.Name != "user" {
		t.Fatalf("query not carried: %+v", res.Query)
	}
	if !strings.Contains(res.Message, `text-like "user"`) {
		t.Errorf("message: %q", res.Message)
	}
}

func TestTimeout_FormatsElapsed(t *testing.T) {
	res := Timeout("s", 3020*time.Millisecond, `text "Welcome"`)
	if res.Elapsed != "3.0s" {
		t.Errorf("elapsed: got %q", res.Elapsed)
	}
	if res.Condition != `text "Welcome"` {
		t.Errorf("condition: got %q", res.Condition)
	}
}

func TestResult_YAMLOmitEmpty(t *testing.T) {
	data, err := yaml.Marshal(Success("I visit \"/\""))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"message", "query", "condition", "elapsed"} {
		if _, ok := m[key]; ok {
			t.Errorf("empty %s should be omitted", key)
		}
	}
	if m["status"] != "success" {
		t.Errorf("status: got %v", m["status"])
	}
}

func TestFieldQuery_String(t *testing.T) {
	q := FieldQuery{Kind: KindOption, Name: "Red", Within: "Colour"}
	if got := q.String(); got != `option "Red" in "Colour"` {
		t.Errorf("got %q", got)
	}
}

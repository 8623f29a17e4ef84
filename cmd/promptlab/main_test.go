package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pavelanni/promptlab/internal/model"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--log-level", "error"))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("promptlab %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestScoreCommand(t *testing.T) {
	out := run(t, "", "score", "explain")
	if !strings.HasPrefix(out, "Overall: 1.8/10 (needs_improvement)") {
		t.Errorf("unexpected score output:\n%s", out)
	}

	out = run(t, "explain", "score", "--json")
	var a model.QualityAnalysis
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if a.OverallScore != 1.8 || len(a.Suggestions) == 0 {
		t.Errorf("analysis from stdin = %+v", a)
	}

	out = run(t, "", "score", "--quick", "explain")
	if !strings.HasPrefix(out, "Quick Assessment: Your prompt scored 1.8/10.") {
		t.Errorf("quick output = %q", out)
	}
}

func TestBuildCommand(t *testing.T) {
	out := run(t, "", "build", "--profile", "basic", "--topic", "fractions")
	if !strings.Contains(out, "Help me with fractions.") {
		t.Errorf("build output = %q", out)
	}

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"build", "--log-level", "error"})
	if err := cmd.Execute(); err == nil {
		t.Error("build without a topic should fail")
	}
}

func TestTryCommand(t *testing.T) {
	out := run(t, "", "try", "--mode", "analyze", "--json", "What is photosynthesis?")
	var res model.TestResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.Response != nil || res.Analysis == nil || res.Model != "Prompt Quality Analysis Only" {
		t.Errorf("unexpected result %+v", res)
	}

	out = run(t, "", "try", "--mode", "simulate", "--sim-delay-min", "0", "--sim-delay-max", "0", "--seed", "7",
		"Can you explain photosynthesis step by step?")
	if !strings.Contains(out, "[Educational Simulator | Full Educational Simulation |") {
		t.Errorf("simulate output = %q", out)
	}
}

func TestCatalogCommand(t *testing.T) {
	out := run(t, "", "catalog")
	if !strings.Contains(out, "templates)") {
		t.Errorf("catalog listing = %q", out)
	}

	out = run(t, "", "catalog", "--dump", "--format", "json")
	var dump catalogDump
	if err := json.Unmarshal([]byte(out), &dump); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if len(dump.Subjects) == 0 || len(dump.Techniques) == 0 {
		t.Errorf("dump is empty: %+v", dump)
	}

	out = run(t, "", "catalog", "--dump")
	if !strings.Contains(out, "techniques:") {
		t.Errorf("yaml dump missing techniques:\n%s", out)
	}
}

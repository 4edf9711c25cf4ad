package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genetica/pkg/genetica"
)

func TestRunCommandPrintsSummary(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"run",
			"--store", "memory",
			"--genes", "8",
			"--min-size", "10",
			"--generations", "3",
			"--seed", "1",
		})
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
	for _, want := range []string{"name=onemax", "state=termination-reached", "generations=3", "best_genes="} {
		if !strings.Contains(out, want) {
			t.Fatalf("run output missing %q: %s", want, out)
		}
	}
}

func TestRunCommandJSON(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"run",
			"--store", "memory",
			"--problem", "tsp",
			"--genes", "6",
			"--min-size", "10",
			"--generations", "2",
			"--seed", "2",
			"--executor", "parallel",
			"--workers", "2",
			"--json",
		})
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
	var summary genetica.RunSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Generations != 2 || summary.Operators["executor"] != "parallel" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunCommandFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	config := "name: tour\nproblem: tsp\ngenes: 6\nmin_size: 10\ngenerations: 2\nseed: 4\n"
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"run",
			"--store", "memory",
			"--config", path,
			"--generations", "4",
			"--json",
		})
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
	var summary genetica.RunSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Name != "tour" || summary.Generations != 4 {
		t.Fatalf("expected config name with flag generations, got %+v", summary)
	}
	if summary.Operators["crossover"] != "ordered" {
		t.Fatalf("expected tsp operators from config, got %v", summary.Operators)
	}
}

func TestRunCommandServesMetrics(t *testing.T) {
	_, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"run",
			"--store", "memory",
			"--genes", "8",
			"--min-size", "10",
			"--generations", "2",
			"--seed", "3",
			"--metrics-addr", "127.0.0.1:0",
		})
	})
	if err != nil {
		t.Fatalf("run command with metrics: %v", err)
	}
}

func TestCompareCommandRanksExecutors(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"compare",
			"--store", "memory",
			"--genes", "8",
			"--min-size", "10",
			"--generations", "3",
			"--seed", "5",
		})
	})
	if err != nil {
		t.Fatalf("compare command: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 ranked runs, got %d: %s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "rank=1 ") {
		t.Fatalf("unexpected first line: %s", lines[0])
	}
	for _, name := range []string{"onemax/linear", "onemax/parallel", "onemax/task-group"} {
		if !strings.Contains(out, "name="+name) {
			t.Fatalf("compare output missing %s: %s", name, out)
		}
	}
}

func TestRunsCommandWithEmptyStore(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"runs", "--store", "memory"})
	})
	if err != nil {
		t.Fatalf("runs command: %v", err)
	}
	if !strings.Contains(out, "no runs found") {
		t.Fatalf("unexpected runs output: %s", out)
	}

	if err := run(context.Background(), []string{"runs", "--store", "memory", "--limit", "0"}); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
}

func TestOperatorsCommand(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"operators"})
	})
	if err != nil {
		t.Fatalf("operators command: %v", err)
	}
	for _, want := range []string{"crossover: ", "ordered", "mutation: ", "twors", "reinsertion: ", "selection: ", "roulette-wheel"} {
		if !strings.Contains(out, want) {
			t.Fatalf("operators output missing %q: %s", want, out)
		}
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "missing command") {
		t.Fatalf("expected missing command error, got %v", err)
	}
	if err := run(context.Background(), []string{"evolve"}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if err := run(context.Background(), []string{"run", "--store", "memory", "--log-level", "loud"}); err == nil {
		t.Fatal("expected invalid log level error")
	}
}

func captureStdout(fn func() error) (string, error) {
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		_ = r.Close()
		return "", err
	}
	_ = r.Close()
	return buf.String(), runErr
}

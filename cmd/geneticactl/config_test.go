package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRunRequestFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	config := `
problem: tsp
genes: 12
min_size: 40
max_size: 60
seed: 77
generations: 200
fitness_threshold: 0.95
time_limit: 30s
selection: tournament
crossover: ordered
mutation: twors
executor: task-group
workers: 3
cache_fitness: true
`
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if req.Problem != "tsp" || req.Genes != 12 || req.MinSize != 40 || req.MaxSize != 60 || req.Seed != 77 {
		t.Fatalf("unexpected problem fields: %+v", req)
	}
	if req.Generations != 200 || req.FitnessThreshold != 0.95 || req.TimeLimit != "30s" {
		t.Fatalf("unexpected termination fields: %+v", req)
	}
	if req.Selection != "tournament" || req.Mutation != "twors" || req.Executor != "task-group" || req.Workers != 3 || !req.CacheFitness {
		t.Fatalf("unexpected operator fields: %+v", req)
	}
}

func TestLoadRunRequestFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(`{"problem":"onemax","genes":64}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if req.Problem != "onemax" || req.Genes != 64 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestLoadRunRequestRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("problem: onemax\npopulation: 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestLoadRunRequestMissingFile(t *testing.T) {
	if _, err := loadRunRequestFromConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
}

package main

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"genetica/pkg/genetica"
)

// loadRunRequestFromConfig reads a yaml or json run config. Unknown keys are
// rejected.
func loadRunRequestFromConfig(path string) (genetica.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return genetica.RunRequest{}, err
	}
	var req genetica.RunRequest
	if err := yaml.UnmarshalStrict(data, &req); err != nil {
		return genetica.RunRequest{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return req, nil
}

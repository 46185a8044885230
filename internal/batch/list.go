package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadInstanceList reads a JSON or YAML array of instance paths.
func LoadInstanceList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance list: %w", err)
	}

	var instances []string
	if err := yaml.Unmarshal(data, &instances); err != nil {
		return nil, fmt.Errorf("failed to parse instance list %s: %w", path, err)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("instance list %s is empty", path)
	}
	return instances, nil
}

// LoadKnownBest reads a JSON or YAML map from instance name to objective.
func LoadKnownBest(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read known best file: %w", err)
	}

	known := make(map[string]float64)
	if err := yaml.Unmarshal(data, &known); err != nil {
		return nil, fmt.Errorf("failed to parse known best file %s: %w", path, err)
	}
	return known, nil
}

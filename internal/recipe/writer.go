package recipe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Write stores r as YAML at path.
func Write(r *Recipe, path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("recipe: marshal: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Read loads a recipe and checks that every job names an input and a known
// mode.
func Read(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("recipe: parse %s: %w", path, err)
	}

	for i, j := range r.Jobs {
		if j.Input == "" {
			return nil, fmt.Errorf("recipe: job %d has no input", i)
		}
		switch j.Mode {
		case "", ModeEncode, ModeDecode:
		default:
			return nil, fmt.Errorf("recipe: job %d has unknown mode %q", i, j.Mode)
		}
	}

	return &r, nil
}

package build

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Recipe for assembling the experiment image.
//
// Stages execute in declaration order. Transient stages exist only to
// produce artifacts for later stages (the compiler stage); exactly one
// stage must be non-transient, and its filesystem becomes the final image.
type Recipe struct {
	Stages     []Stage  `yaml:"stages"`
	Entrypoint []string `yaml:"entrypoint"` // OCI entrypoint set on the final image.
}

// One build stage backed by a container.
type Stage struct {
	Name      string `yaml:"name"`      // Stage name, referenced by cross-stage copies.
	From      string `yaml:"from"`      // Base image reference.
	Transient bool   `yaml:"transient"` // Whether the stage is excluded from the final image.
	Steps     []Step `yaml:"steps"`     // Ordered build steps.
}

// One build step: an operation (run or copy) or a modifier.
//
// Modifier fields (shell, workdir, env) on a step without an operation
// persist for the rest of the stage. On a step with an operation they
// apply to that operation only.
type Step struct {
	Run  string `yaml:"run,omitempty"`  // Shell command to execute.
	Copy string `yaml:"copy,omitempty"` // "src dest" host copy or "stage:src dest" cross-stage copy.

	Shell   string            `yaml:"shell,omitempty"`   // Shell for run steps.
	Workdir string            `yaml:"workdir,omitempty"` // Working directory.
	Env     map[string]string `yaml:"env,omitempty"`     // Environment variables.
}

// Reads and validates a recipe file.
func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecipe, err)
	}

	var recipe Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRecipe, path, err)
	}

	if err := recipe.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRecipe, path, err)
	}

	return &recipe, nil
}

// Checks the recipe's structural constraints.
//
// Every stage needs a base image, stage names must be unique, and exactly
// one stage may be non-transient. Steps carry at most one operation.
func (r *Recipe) Validate() error {
	if len(r.Stages) == 0 {
		return fmt.Errorf("no stages")
	}

	names := make(map[string]bool, len(r.Stages))
	final := 0

	for i, stage := range r.Stages {
		if stage.From == "" {
			return fmt.Errorf("stage %s: missing base image", stageLabel(stage.Name, i))
		}
		if stage.Name != "" {
			if names[stage.Name] {
				return fmt.Errorf("duplicate stage name %q", stage.Name)
			}
			names[stage.Name] = true
		}
		if !stage.Transient {
			final++
		}
		for j, step := range stage.Steps {
			if step.Run != "" && step.Copy != "" {
				return fmt.Errorf("stage %s, step %d: both run and copy", stageLabel(stage.Name, i), j+1)
			}
		}
	}

	if final != 1 {
		return fmt.Errorf("expected exactly one non-transient stage, got %d", final)
	}

	return nil
}

// Returns a label for a stage, preferring the name when available and
// falling back to the 1-based index.
func stageLabel(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}

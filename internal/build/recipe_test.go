package build

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRecipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	content := `
stages:
  - name: builder
    from: docker.io/library/debian:bookworm
    transient: true
    steps:
      - workdir: /src
      - run: make netperfmeter
  - name: runtime
    from: docker.io/library/debian:bookworm-slim
    steps:
      - copy: "builder:/src/netperfmeter /opt/netperfmeter"
entrypoint:
  - /opt/netperfmeter
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	recipe, err := LoadRecipe(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipe.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(recipe.Stages))
	}
	if !recipe.Stages[0].Transient {
		t.Error("builder stage should be transient")
	}
	if recipe.Stages[1].Steps[0].Copy != "builder:/src/netperfmeter /opt/netperfmeter" {
		t.Errorf("copy = %q", recipe.Stages[1].Steps[0].Copy)
	}
	if len(recipe.Entrypoint) != 1 || recipe.Entrypoint[0] != "/opt/netperfmeter" {
		t.Errorf("entrypoint = %v", recipe.Entrypoint)
	}
}

func TestLoadRecipeMissingFile(t *testing.T) {
	if _, err := LoadRecipe(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrRecipe) {
		t.Fatalf("error = %v, want ErrRecipe", err)
	}
}

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name    string
		recipe  Recipe
		wantErr bool
	}{
		{
			name: "valid single stage",
			recipe: Recipe{Stages: []Stage{
				{Name: "runtime", From: "debian"},
			}},
		},
		{
			name:    "no stages",
			recipe:  Recipe{},
			wantErr: true,
		},
		{
			name: "missing base image",
			recipe: Recipe{Stages: []Stage{
				{Name: "runtime"},
			}},
			wantErr: true,
		},
		{
			name: "duplicate stage names",
			recipe: Recipe{Stages: []Stage{
				{Name: "a", From: "debian", Transient: true},
				{Name: "a", From: "debian"},
			}},
			wantErr: true,
		},
		{
			name: "no final stage",
			recipe: Recipe{Stages: []Stage{
				{Name: "a", From: "debian", Transient: true},
			}},
			wantErr: true,
		},
		{
			name: "two final stages",
			recipe: Recipe{Stages: []Stage{
				{Name: "a", From: "debian"},
				{Name: "b", From: "debian"},
			}},
			wantErr: true,
		},
		{
			name: "step with both run and copy",
			recipe: Recipe{Stages: []Stage{
				{Name: "a", From: "debian", Steps: []Step{
					{Run: "make", Copy: "a b"},
				}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

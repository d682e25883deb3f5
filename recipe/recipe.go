// Package recipe holds the parsed recipe document and its per-step
// descriptor, plus the normalization and validation rules from the step
// selection and schema contract.
package recipe

import (
	"encoding/json"
	"fmt"
)

// Step is one entry in a recipe, identifying a processor by Type with its
// Params. Constructed at recipe load; immutable thereafter.
type Step struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Enabled        *bool          `json:"enabled"`
	Params         map[string]any `json:"params"`
	InputManifest  string         `json:"input_manifest"`
	OutputManifest string         `json:"output_manifest"`
}

// IsEnabled returns the effective enabled flag: true when unset.
func (s Step) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// EffectiveID returns ID, defaulting to step_{index} when empty.
func (s Step) EffectiveID(index int) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("step_%d", index)
}

// Recipe is the parsed, top-level recipe document.
type Recipe struct {
	Version        string `json:"version"`
	Name           string `json:"name"`
	WorkspaceDir   string `json:"workspace_dir"`
	InputManifest  string `json:"input_manifest"`
	OutputManifest string `json:"output_manifest"`
	StepsToRun     string `json:"steps_to_run"`
	Steps          []Step `json:"steps"`
	KeepTemps      bool   `json:"keep_temps"`

	// raw retains the source document so Validate can strict-check each
	// step's fields against the documented set; unknown top-level fields
	// are ignored here (with a warning from Validate), but unknown fields
	// inside a step are rejected outright, per the recipe file contract.
	raw []byte
}

// Parse decodes raw JSON into a Recipe and applies defaults. It does not
// validate; call Validate separately.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	r.raw = data
	r.applyDefaults()
	return &r, nil
}

func (r *Recipe) applyDefaults() {
	if r.Version == "" {
		r.Version = "0.1"
	}
	if r.StepsToRun == "" {
		r.StepsToRun = "all"
	}
}

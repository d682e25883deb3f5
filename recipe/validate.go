package recipe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"minidp/errors"
)

// Warnings collected during validation that don't fail it (e.g. an
// unrecognized version string).
type Warnings []string

// knownStepFields is the documented set of step-level keys. Unlike
// top-level recipe fields (unknown ones are ignored with a warning),
// unknown fields inside a step are rejected outright; only the contents
// of "params" are processor-defined.
var knownStepFields = map[string]bool{
	"id":              true,
	"type":            true,
	"enabled":         true,
	"params":          true,
	"input_manifest":  true,
	"output_manifest": true,
}

// Validate checks the schema/slice-expression invariants from the recipe
// contract. It returns any warnings alongside a non-nil
// *errors.RecipeValidationError on the first failure.
func (r *Recipe) Validate() (Warnings, error) {
	var warnings Warnings

	if r.Version != "" && r.Version != "0.1" {
		warnings = append(warnings, fmt.Sprintf("unrecognized recipe version %q, expected \"0.1\"", r.Version))
	}

	if len(r.raw) > 0 {
		var top map[string]json.RawMessage
		if err := json.Unmarshal(r.raw, &top); err == nil {
			for key := range top {
				switch key {
				case "version", "name", "workspace_dir", "input_manifest", "output_manifest", "steps_to_run", "steps", "keep_temps":
				default:
					warnings = append(warnings, fmt.Sprintf("ignoring unrecognized top-level field %q", key))
				}
			}
		}
	}

	if len(r.Steps) == 0 {
		return warnings, &errors.RecipeValidationError{Path: "steps", Reason: "must contain at least one step"}
	}

	for i, step := range r.Steps {
		if strings.TrimSpace(step.Type) == "" {
			return warnings, &errors.RecipeValidationError{
				Path:   fmt.Sprintf("steps[%d].type", i),
				Reason: "type is required",
			}
		}
	}

	if err := r.validateStepFields(); err != nil {
		return warnings, err
	}

	if _, _, err := ParseSlice(r.StepsToRun, len(r.Steps)); err != nil {
		return warnings, &errors.RecipeValidationError{
			Path:   "steps_to_run",
			Reason: err.Error(),
		}
	}

	return warnings, nil
}

// validateStepFields re-decodes the source document's "steps" array as raw
// objects and rejects any key outside knownStepFields. A recipe parsed from
// a Go literal rather than JSON (raw is empty, as in hand-built test
// recipes) has nothing to check and always passes.
func (r *Recipe) validateStepFields() error {
	if len(r.raw) == 0 {
		return nil
	}

	var top struct {
		Steps []map[string]json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal(r.raw, &top); err != nil {
		return &errors.RecipeValidationError{Path: "steps", Reason: err.Error()}
	}

	for i, fields := range top.Steps {
		for key := range fields {
			if !knownStepFields[key] {
				return &errors.RecipeValidationError{
					Path:   fmt.Sprintf("steps[%d].%s", i, key),
					Reason: "unrecognized step field",
				}
			}
		}
	}
	return nil
}

// ParseSlice parses the steps_to_run expression into a [start, end) window
// over a list of n steps: the literal "all"; an integer n (interpreted as
// n:n+1); or a slice "a:b", "a:", ":b" with 0 <= a <= b <= n.
func ParseSlice(expr string, n int) (start, end int, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "all" {
		return 0, n, nil
	}

	if !strings.Contains(expr, ":") {
		v, perr := strconv.Atoi(expr)
		if perr != nil {
			return 0, 0, fmt.Errorf("invalid steps_to_run %q: %w", expr, perr)
		}
		if v < 0 || v >= n {
			return 0, 0, fmt.Errorf("invalid steps_to_run %q: index out of range [0,%d)", expr, n)
		}
		return v, v + 1, nil
	}

	parts := strings.SplitN(expr, ":", 2)
	a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	start = 0
	if a != "" {
		start, err = strconv.Atoi(a)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid steps_to_run %q: %w", expr, err)
		}
	}
	end = n
	if b != "" {
		end, err = strconv.Atoi(b)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid steps_to_run %q: %w", expr, err)
		}
	}

	if start < 0 || end < start || end > n {
		return 0, 0, fmt.Errorf("invalid steps_to_run %q: bounds must satisfy 0 <= a <= b <= %d", expr, n)
	}
	return start, end, nil
}

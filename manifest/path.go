package manifest

import (
	"fmt"
	"path/filepath"
)

// TempDir returns the per-run scratch directory under workspace.
func TempDir(workspace, runID string) string {
	return filepath.Join(workspace, ".tmp", runID)
}

// StepPath computes the intermediate manifest path for the step at the
// given absolute index within the recipe.
func StepPath(workspace, runID string, absoluteIndex int) string {
	return filepath.Join(TempDir(workspace, runID), fmt.Sprintf("step_%d.jsonl", absoluteIndex))
}

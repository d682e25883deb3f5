// Package recipeio reads and parses recipe files from disk, the CLI-layer
// concern spec.md §1 carves out of the engine: the runner only ever
// receives an already-parsed *recipe.Recipe.
package recipeio

import (
	"fmt"
	"os"

	"minidp/recipe"
)

// Load reads and parses the recipe file at path.
func Load(path string) (*recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}
	r, err := recipe.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing recipe file: %w", err)
	}
	return r, nil
}

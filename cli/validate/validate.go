// Package validate implements the "validate" CLI subcommand.
package validate

import (
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"minidp/cli/recipeio"
)

type validateCommand struct {
	recipePath string
}

func (c *validateCommand) exec(*kingpin.ParseContext) error {
	r, err := recipeio.Load(c.recipePath)
	if err != nil {
		return err
	}

	warnings, err := r.Validate()
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid:", err)
		os.Exit(1)
	}

	fmt.Println("recipe is valid")
	return nil
}

// Register wires the "validate" subcommand into app.
func Register(app *kingpin.Application) {
	c := new(validateCommand)

	cmd := app.Command("validate", "check a recipe file for schema and slice-expression errors").
		Action(c.exec)

	cmd.Arg("recipe", "path to the recipe JSON file").
		Required().
		StringVar(&c.recipePath)
}

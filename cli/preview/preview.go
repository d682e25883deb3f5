// Package preview implements the "preview" CLI subcommand.
package preview

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/alecthomas/kingpin.v2"

	_ "minidp/builtins"
	"minidp/cli/recipeio"
	"minidp/runner"
)

type previewCommand struct {
	recipePath string
	workspace  string
	count      int
}

func (c *previewCommand) exec(*kingpin.ParseContext) error {
	r, err := recipeio.Load(c.recipePath)
	if err != nil {
		return err
	}
	if c.workspace != "" {
		r.WorkspaceDir = c.workspace
	}

	_, recs, err := runner.Preview(context.Background(), r, c.count)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	return nil
}

// Register wires the "preview" subcommand into app.
func Register(app *kingpin.Application) {
	c := &previewCommand{count: 5}

	cmd := app.Command("preview", "run a recipe and print the first records of its output").
		Action(c.exec)

	cmd.Arg("recipe", "path to the recipe JSON file").
		Required().
		StringVar(&c.recipePath)

	cmd.Flag("workspace", "workspace directory override").
		Short('w').
		StringVar(&c.workspace)

	cmd.Flag("count", "number of records to print").
		Short('n').
		Default("5").
		IntVar(&c.count)
}

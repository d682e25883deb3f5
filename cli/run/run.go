// Package run implements the "run" CLI subcommand.
package run

import (
	"context"

	"gopkg.in/alecthomas/kingpin.v2"

	_ "minidp/builtins"
	"minidp/cli/recipeio"
	"minidp/runner"
)

type runCommand struct {
	recipePath string
	workspace  string
	keepTemps  bool
}

func (c *runCommand) exec(*kingpin.ParseContext) error {
	r, err := recipeio.Load(c.recipePath)
	if err != nil {
		return err
	}
	if c.workspace != "" {
		r.WorkspaceDir = c.workspace
	}
	if c.keepTemps {
		r.KeepTemps = true
	}

	_, err = runner.Run(context.Background(), r)
	return err
}

// Register wires the "run" subcommand into app.
func Register(app *kingpin.Application) {
	c := new(runCommand)

	cmd := app.Command("run", "execute a recipe end to end").
		Action(c.exec)

	cmd.Arg("recipe", "path to the recipe JSON file").
		Required().
		StringVar(&c.recipePath)

	cmd.Flag("workspace", "workspace directory override").
		Short('w').
		StringVar(&c.workspace)

	cmd.Flag("keep-temps", "keep the run's temp directory after completion").
		BoolVar(&c.keepTemps)
}

// Package listprocessors implements the "list-processors" CLI subcommand.
package listprocessors

import (
	"fmt"
	"sort"

	"gopkg.in/alecthomas/kingpin.v2"

	_ "minidp/builtins"
	"minidp/registry"
)

type listCommand struct{}

func (c *listCommand) exec(*kingpin.ParseContext) error {
	names := registry.Names()
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

// Register wires the "list-processors" subcommand into app.
func Register(app *kingpin.Application) {
	c := new(listCommand)

	app.Command("list-processors", "print the names of every registered processor").
		Action(c.exec)
}

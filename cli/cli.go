package cli

import (
	"os"

	"minidp/cli/listprocessors"
	"minidp/cli/preview"
	"minidp/cli/run"
	"minidp/cli/validate"

	"gopkg.in/alecthomas/kingpin.v2"
)

// version is the CLI's reported version string.
const version = "0.1.0"

// Command parses the command line arguments and then executes a
// subcommand program.
func Command() {
	app := kingpin.New("minidp", "deterministic, recipe-driven JSON record pipeline engine")
	app.HelpFlag.Short('h')
	app.Version(version)
	app.VersionFlag.Short('v')
	run.Register(app)
	preview.Register(app)
	validate.Register(app)
	listprocessors.Register(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

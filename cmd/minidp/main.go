// Command minidp is the entry point for the MiniDP pipeline engine.
package main

import (
	"minidp/cli"
)

func main() {
	cli.Command()
}

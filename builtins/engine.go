package builtins

import (
	"minidp/mapengine"
	"minidp/processor"
)

// runMap is the shared Process() body every MapProcessor-based built-in
// delegates to.
func runMap(rc *processor.RunContext, mp *processor.MapProcessor) (processor.RunStats, error) {
	return mapengine.Run(rc, mp)
}

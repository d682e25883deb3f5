// Package processor defines the two abstract shapes every pipeline step
// satisfies: the general Processor contract (reads an input manifest,
// writes an output manifest, reports RunStats) and the MapProcessor
// specialization that streams records one at a time through a pure
// per-record transform.
package processor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RunContext is the per-run immutable value handed to every hook. It is
// never mutated by a processor.
type RunContext struct {
	Ctx       context.Context
	RunID     string
	Workspace string
	TempDir   string
	Log       *logrus.Entry
}

// RunStats are the per-step counters the runner aggregates and logs.
// Invariant: Out == In - Dropped + Expanded.
type RunStats struct {
	In       int
	Out      int
	Dropped  int
	Expanded int
	Time     time.Duration
}

// Processor reads Input() and writes Output(), reporting RunStats.
// Prepare is called once before Process; Finalize is called once after,
// even on failure, with a best-effort stats value.
type Processor interface {
	Prepare(rc *RunContext) error
	Process(rc *RunContext) (RunStats, error)
	Finalize(rc *RunContext, stats RunStats) error
	Input() string
	Output() string
}

// Base supplies the no-op Prepare/Finalize hooks and the manifest path
// bookkeeping shared by every built-in processor.
type Base struct {
	InputPath  string
	OutputPath string
}

func (b *Base) Prepare(*RunContext) error            { return nil }
func (b *Base) Finalize(*RunContext, RunStats) error { return nil }
func (b *Base) Input() string                        { return b.InputPath }
func (b *Base) Output() string                       { return b.OutputPath }

// ExtractManifests splits the runner-injected input_manifest/output_manifest
// keys out of a raw params map, returning the remaining processor-specific
// params. Built-in constructors call this first.
func ExtractManifests(params map[string]any) (input, output string, rest map[string]any) {
	rest = make(map[string]any, len(params))
	for k, v := range params {
		switch k {
		case "input_manifest":
			input, _ = v.(string)
		case "output_manifest":
			output, _ = v.(string)
		default:
			rest[k] = v
		}
	}
	return
}

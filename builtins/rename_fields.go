package builtins

import (
	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// RenameFields moves each existing "old" key's value to "new",
// overwriting. Every rename observes the pre-rename record, so a chain
// like a->b, b->c never sees the result of an earlier rename in the same
// pass (the safe interpretation documented in SPEC_FULL.md / DESIGN.md).
type RenameFields struct {
	processor.MapProcessor
	renameFields map[string]string
}

func newRenameFields(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}
	renames, err := requiredStringMap(opts.rest, "rename_fields", "RenameFields")
	if err != nil {
		return nil, err
	}

	p := &RenameFields{renameFields: renames}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &RenameFields{renameFields: renames}, nil
	}
	return p, nil
}

func (p *RenameFields) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	out := rec.Clone()
	for oldKey := range p.renameFields {
		delete(out, oldKey)
	}
	for oldKey, newKey := range p.renameFields {
		if v, ok := rec[oldKey]; ok {
			out[newKey] = v
		}
	}
	return []record.DataEntry{record.Keep(out)}, nil
}

func (p *RenameFields) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("RenameFields", newRenameFields)
}

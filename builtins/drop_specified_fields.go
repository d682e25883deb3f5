package builtins

import (
	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// DropSpecifiedFields removes listed keys if present; missing keys are
// ignored.
type DropSpecifiedFields struct {
	processor.MapProcessor
	fieldsToDrop []string
}

func newDropSpecifiedFields(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}
	fields, err := requiredStringList(opts.rest, "fields_to_drop", "DropSpecifiedFields")
	if err != nil {
		return nil, err
	}

	p := &DropSpecifiedFields{fieldsToDrop: fields}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &DropSpecifiedFields{fieldsToDrop: fields}, nil
	}
	return p, nil
}

func (p *DropSpecifiedFields) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	out := rec.Clone()
	for _, f := range p.fieldsToDrop {
		delete(out, f)
	}
	return []record.DataEntry{record.Keep(out)}, nil
}

func (p *DropSpecifiedFields) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("DropSpecifiedFields", newDropSpecifiedFields)
}

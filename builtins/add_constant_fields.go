package builtins

import (
	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// AddConstantFields shallow-merges a fixed set of fields into every
// record, overwriting existing keys.
type AddConstantFields struct {
	processor.MapProcessor
	fields map[string]any
}

func newAddConstantFields(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}
	fields, err := requiredAnyMap(opts.rest, "fields", "AddConstantFields")
	if err != nil {
		return nil, err
	}

	p := &AddConstantFields{fields: fields}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &AddConstantFields{fields: fields}, nil
	}
	return p, nil
}

func (p *AddConstantFields) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	out := rec.Clone()
	for k, v := range p.fields {
		out[k] = v
	}
	return []record.DataEntry{record.Keep(out)}, nil
}

func (p *AddConstantFields) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("AddConstantFields", newAddConstantFields)
}

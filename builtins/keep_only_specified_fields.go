package builtins

import (
	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// KeepOnlySpecifiedFields emits a new record containing only the listed
// keys that exist in the input.
type KeepOnlySpecifiedFields struct {
	processor.MapProcessor
	fieldsToKeep []string
}

func newKeepOnlySpecifiedFields(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}
	fields, err := requiredStringList(opts.rest, "fields_to_keep", "KeepOnlySpecifiedFields")
	if err != nil {
		return nil, err
	}

	p := &KeepOnlySpecifiedFields{fieldsToKeep: fields}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &KeepOnlySpecifiedFields{fieldsToKeep: fields}, nil
	}
	return p, nil
}

func (p *KeepOnlySpecifiedFields) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	out := make(record.Record, len(p.fieldsToKeep))
	for _, f := range p.fieldsToKeep {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return []record.DataEntry{record.Keep(out)}, nil
}

func (p *KeepOnlySpecifiedFields) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("KeepOnlySpecifiedFields", newKeepOnlySpecifiedFields)
}

package builtins

import (
	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// DuplicateFields sets dst to a deep copy of src's value whenever src
// exists, leaving src untouched.
type DuplicateFields struct {
	processor.MapProcessor
	duplicateFields map[string]string
}

func newDuplicateFields(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}
	dup, err := requiredStringMap(opts.rest, "duplicate_fields", "DuplicateFields")
	if err != nil {
		return nil, err
	}

	p := &DuplicateFields{duplicateFields: dup}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &DuplicateFields{duplicateFields: dup}, nil
	}
	return p, nil
}

func (p *DuplicateFields) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	out := rec.Clone()
	for src, dst := range p.duplicateFields {
		if v, ok := rec[src]; ok {
			out[dst] = record.DeepCopy(v)
		}
	}
	return []record.DataEntry{record.Keep(out)}, nil
}

func (p *DuplicateFields) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("DuplicateFields", newDuplicateFields)
}

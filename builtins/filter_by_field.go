package builtins

import (
	"reflect"

	minidperrors "minidp/errors"
	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// FilterByField keeps a record iff (record[field] is in values) XOR
// exclude. A missing field is treated as not matching.
type FilterByField struct {
	processor.MapProcessor
	field   string
	values  []any
	exclude bool
}

func newFilterByField(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}
	field, err := requiredString(opts.rest, "field", "FilterByField")
	if err != nil {
		return nil, err
	}
	rawValues, ok := opts.rest["values"].([]any)
	if !ok {
		return nil, &minidperrors.ProcessorConstructionError{Processor: "FilterByField", ParamPath: "values", Reason: "required and must be a list"}
	}
	exclude := optionalBool(opts.rest, "exclude", false)

	p := &FilterByField{field: field, values: rawValues, exclude: exclude}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &FilterByField{field: field, values: rawValues, exclude: exclude}, nil
	}
	return p, nil
}

func (p *FilterByField) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	v, present := rec[p.field]
	matches := false
	if present {
		for _, want := range p.values {
			if reflect.DeepEqual(v, want) {
				matches = true
				break
			}
		}
	}
	if matches != p.exclude {
		return []record.DataEntry{record.Keep(rec)}, nil
	}
	return nil, nil
}

func (p *FilterByField) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("FilterByField", newFilterByField)
}

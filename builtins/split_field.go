package builtins

import (
	"strings"

	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// SplitField emits one output record per substring of record[field] split
// on separator, each a copy of the input record with target set to the
// substring. A record whose field is missing or not a string passes
// through unchanged. This is the concrete processor the "Expand" scenario
// in spec.md §8 describes narratively without naming.
type SplitField struct {
	processor.MapProcessor
	field     string
	separator string
	target    string
}

func newSplitField(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}
	field, err := requiredString(opts.rest, "field", "SplitField")
	if err != nil {
		return nil, err
	}
	separator, err := requiredString(opts.rest, "separator", "SplitField")
	if err != nil {
		return nil, err
	}
	target, err := requiredString(opts.rest, "target", "SplitField")
	if err != nil {
		return nil, err
	}

	p := &SplitField{field: field, separator: separator, target: target}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &SplitField{field: field, separator: separator, target: target}, nil
	}
	return p, nil
}

func (p *SplitField) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	v, ok := rec[p.field]
	s, isString := v.(string)
	if !ok || !isString {
		return []record.DataEntry{record.Keep(rec)}, nil
	}

	parts := strings.Split(s, p.separator)
	entries := make([]record.DataEntry, 0, len(parts))
	for _, part := range parts {
		out := rec.Clone()
		out[p.target] = part
		entries = append(entries, record.Keep(out))
	}
	return entries, nil
}

func (p *SplitField) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("SplitField", newSplitField)
}

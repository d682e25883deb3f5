package builtins

import (
	"minidp/processor"
	"minidp/record"
	"minidp/registry"
)

// PassThrough emits every input record unchanged.
type PassThrough struct {
	processor.MapProcessor
}

func newPassThrough(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	opts, err := extractMapOptions(rest)
	if err != nil {
		return nil, err
	}

	p := &PassThrough{}
	p.InputPath, p.OutputPath = input, output
	p.MaxWorkers, p.InMemoryChunk, p.TestCases = opts.maxWorkers, opts.chunkSize, opts.testCases
	p.Mapper = p
	p.NewInstance = func() (processor.RecordMapper, error) {
		return &PassThrough{}, nil
	}
	return p, nil
}

func (p *PassThrough) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	return []record.DataEntry{record.Keep(rec)}, nil
}

func (p *PassThrough) Process(rc *processor.RunContext) (processor.RunStats, error) {
	return runMap(rc, &p.MapProcessor)
}

func init() {
	registry.Register("PassThrough", newPassThrough)
}

// Package builtins implements the eight processors pinned by MiniDP's
// external contract, plus SplitField (see SPEC_FULL.md §7). Every
// constructor registers itself with the registry at init() time, the way
// the teacher wires its built-in step kinds before the server ever
// dispatches a request.
package builtins

import (
	"fmt"

	"minidp/config"
	minidperrors "minidp/errors"
	"minidp/processor"
	"minidp/record"
)

// mapOptions holds the params any MapProcessor recognizes regardless of
// its specific transform (§4.3 table), plus whatever remains for the
// concrete processor to interpret.
type mapOptions struct {
	maxWorkers int
	chunkSize  int
	testCases  []processor.TestCase
	rest       map[string]any
}

func extractMapOptions(params map[string]any) (mapOptions, error) {
	cfg, err := config.Load()
	if err != nil {
		return mapOptions{}, fmt.Errorf("loading config defaults: %w", err)
	}

	opts := mapOptions{maxWorkers: cfg.MaxWorkers, chunkSize: cfg.ChunkSize, rest: make(map[string]any, len(params))}
	for k, v := range params {
		switch k {
		case "max_workers":
			n, err := toInt(v)
			if err != nil {
				return opts, fmt.Errorf("max_workers: %w", err)
			}
			opts.maxWorkers = n
		case "in_memory_chunksize":
			n, err := toInt(v)
			if err != nil {
				return opts, fmt.Errorf("in_memory_chunksize: %w", err)
			}
			opts.chunkSize = n
		case "test_cases":
			tcs, err := parseTestCases(v)
			if err != nil {
				return opts, fmt.Errorf("test_cases: %w", err)
			}
			opts.testCases = tcs
		default:
			opts.rest[k] = v
		}
	}
	return opts, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func parseTestCases(v any) ([]processor.TestCase, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	out := make([]processor.TestCase, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected an object with input/output", i)
		}
		input, _ := m["input"].(map[string]any)
		rawOutput, _ := m["output"].([]any)

		entries := make([]record.DataEntry, 0, len(rawOutput))
		for _, ro := range rawOutput {
			em, ok := ro.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entry %d: output items must be objects", i)
			}
			entry := record.DataEntry{}
			if dropped, _ := em["dropped"].(bool); dropped {
				entry.Dropped = true
			}
			if data, ok := em["data"].(map[string]any); ok {
				entry.Data = record.Record(data)
			}
			if metrics, ok := em["metrics"].(map[string]any); ok {
				entry.Metrics = metrics
			}
			entries = append(entries, entry)
		}
		out = append(out, processor.TestCase{Input: record.Record(input), Output: entries})
	}
	return out, nil
}

// requiredString fetches a required string param.
func requiredString(rest map[string]any, name, procName string) (string, error) {
	v, ok := rest[name]
	if !ok {
		return "", &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "must be a string"}
	}
	return s, nil
}

// requiredStringList fetches a required []string param (JSON decodes as
// []any of strings).
func requiredStringList(rest map[string]any, name, procName string) ([]string, error) {
	v, ok := rest[name]
	if !ok {
		return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "required"}
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "must be a list of strings"}
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "must be a list of strings"}
		}
		out = append(out, s)
	}
	return out, nil
}

// requiredStringMap fetches a required map[string]string param.
func requiredStringMap(rest map[string]any, name, procName string) (map[string]string, error) {
	v, ok := rest[name]
	if !ok {
		return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "required"}
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "must be a string-to-string mapping"}
	}
	out := make(map[string]string, len(raw))
	for k, vv := range raw {
		s, ok := vv.(string)
		if !ok {
			return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "must be a string-to-string mapping"}
		}
		out[k] = s
	}
	return out, nil
}

// requiredAnyMap fetches a required map[string]any param.
func requiredAnyMap(rest map[string]any, name, procName string) (map[string]any, error) {
	v, ok := rest[name]
	if !ok {
		return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "required"}
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, &minidperrors.ProcessorConstructionError{Processor: procName, ParamPath: name, Reason: "must be an object"}
	}
	return raw, nil
}

func optionalBool(rest map[string]any, name string, def bool) bool {
	v, ok := rest[name]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func optionalStringList(rest map[string]any, name string) []string {
	v, ok := rest[name]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

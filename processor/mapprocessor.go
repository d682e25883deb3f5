package processor

import (
	"fmt"
	"reflect"
	"sync"

	"minidp/record"
)

// RecordMapper is implemented by the concrete transform a MapProcessor
// wraps. Contract: ProcessRecord must be pure when MaxWorkers >= 2 (no
// observable mutation of processor state, no reliance on external
// mutable context); in serial mode it MAY mutate instance state across
// records.
type RecordMapper interface {
	ProcessRecord(rec record.Record) ([]record.DataEntry, error)
}

// TestCase is one self-check a MapProcessor can run during Prepare.
type TestCase struct {
	Input  record.Record
	Output []record.DataEntry
}

// MapProcessor is the common base every built-in record-at-a-time
// transform embeds. Concrete types embed MapProcessor, set Mapper to
// themselves after construction, and get Prepare/Finalize and the manifest
// paths for free. MapProcessor has no Process method of its own; each
// concrete type defines Process and hands itself to the map engine.
type MapProcessor struct {
	Base

	Mapper RecordMapper

	// NewInstance constructs an independent copy of the wrapping
	// processor from the same params, for the worker pool to use: each
	// parallel worker owns its own instance rather than sharing Mapper,
	// the same isolation the spec's "reconstruct in each worker"
	// design note calls for.
	NewInstance func() (RecordMapper, error)

	MaxWorkers    int
	InMemoryChunk int
	TestCases     []TestCase

	metricsMu sync.Mutex
	metrics   []map[string]any
}

// RecordMetrics appends m to the metrics observable from Finalize. Called
// by the map engine for every DataEntry that carries a non-nil Metrics
// value, dropped or not.
func (m *MapProcessor) RecordMetrics(metrics map[string]any) {
	if metrics == nil {
		return
	}
	m.metricsMu.Lock()
	defer m.metricsMu.Unlock()
	m.metrics = append(m.metrics, metrics)
}

// CollectedMetrics returns every metrics map recorded during Process, in
// the order they were observed. Safe to call from Finalize.
func (m *MapProcessor) CollectedMetrics() []map[string]any {
	m.metricsMu.Lock()
	defer m.metricsMu.Unlock()
	out := make([]map[string]any, len(m.metrics))
	copy(out, m.metrics)
	return out
}

// Prepare runs any configured self-test cases before the step executes.
func (m *MapProcessor) Prepare(rc *RunContext) error {
	for i, tc := range m.TestCases {
		got, err := m.Mapper.ProcessRecord(tc.Input)
		if err != nil {
			return fmt.Errorf("test_cases[%d]: process_record returned error: %w", i, err)
		}
		if !reflect.DeepEqual(got, tc.Output) {
			return fmt.Errorf("test_cases[%d]: got %#v, want %#v", i, got, tc.Output)
		}
	}
	return nil
}

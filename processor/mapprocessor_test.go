package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidp/record"
)

type upperCaseID struct{}

func (upperCaseID) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	out := rec.Clone()
	if v, ok := out["id"].(string); ok {
		out["id"] = v + "!"
	}
	return []record.DataEntry{record.Keep(out)}, nil
}

func TestPrepareRunsTestCasesAndPasses(t *testing.T) {
	mp := &MapProcessor{Mapper: upperCaseID{}}
	mp.TestCases = []TestCase{
		{
			Input:  record.Record{"id": "a"},
			Output: []record.DataEntry{record.Keep(record.Record{"id": "a!"})},
		},
	}
	require.NoError(t, mp.Prepare(&RunContext{}))
}

func TestPrepareFailsOnMismatchedTestCase(t *testing.T) {
	mp := &MapProcessor{Mapper: upperCaseID{}}
	mp.TestCases = []TestCase{
		{
			Input:  record.Record{"id": "a"},
			Output: []record.DataEntry{record.Keep(record.Record{"id": "wrong"})},
		},
	}
	err := mp.Prepare(&RunContext{})
	require.Error(t, err)
}

func TestRecordMetricsAndCollectedMetrics(t *testing.T) {
	mp := &MapProcessor{}
	mp.RecordMetrics(nil)
	mp.RecordMetrics(map[string]any{"a": 1})
	mp.RecordMetrics(map[string]any{"b": 2})

	got := mp.CollectedMetrics()
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0]["a"])
}

package mapengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidp/manifest"
	"minidp/processor"
	"minidp/record"
)

// doubleEvens is a pure RecordMapper: it keeps odd "n" records unchanged
// and emits an extra copy of even "n" records, dropping nothing. Used to
// exercise the expand-counting invariant end to end.
type doubleEvens struct{}

func (doubleEvens) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	n, _ := rec["n"].(float64)
	if int(n)%2 == 0 {
		return []record.DataEntry{record.Keep(rec.Clone()), record.Keep(rec.Clone())}, nil
	}
	return []record.DataEntry{record.Keep(rec.Clone())}, nil
}

func newMapProcessor(t *testing.T, input, output string, maxWorkers, chunkSize int) *processor.MapProcessor {
	t.Helper()
	mp := &processor.MapProcessor{MaxWorkers: maxWorkers, InMemoryChunk: chunkSize}
	mp.InputPath, mp.OutputPath = input, output
	mp.Mapper = doubleEvens{}
	mp.NewInstance = func() (processor.RecordMapper, error) {
		return doubleEvens{}, nil
	}
	return mp
}

func writeInput(t *testing.T, dir string, n int) string {
	t.Helper()
	path := filepath.Join(dir, "in.jsonl")
	recs := make([]record.Record, n)
	for i := 0; i < n; i++ {
		recs[i] = record.Record{"n": float64(i)}
	}
	require.NoError(t, manifest.WriteAll(path, recs))
	return path
}

func TestSerialAndParallelProduceByteIdenticalOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 100)

	serialOut := filepath.Join(dir, "serial.jsonl")
	rc := &processor.RunContext{Ctx: context.Background()}
	serialStats, err := Run(rc, newMapProcessor(t, input, serialOut, 1, 10))
	require.NoError(t, err)

	parallelOut := filepath.Join(dir, "parallel.jsonl")
	parallelStats, err := Run(rc, newMapProcessor(t, input, parallelOut, 4, 3))
	require.NoError(t, err)

	assert.Equal(t, serialStats.In, parallelStats.In)
	assert.Equal(t, serialStats.Out, parallelStats.Out)
	assert.Equal(t, serialStats.Dropped, parallelStats.Dropped)
	assert.Equal(t, serialStats.Expanded, parallelStats.Expanded)

	serialRecs, err := manifest.ReadAll(serialOut)
	require.NoError(t, err)
	parallelRecs, err := manifest.ReadAll(parallelOut)
	require.NoError(t, err)
	assert.Equal(t, serialRecs, parallelRecs, "parallel mode must commit chunks in input order")

	serialBytes, err := os.ReadFile(serialOut)
	require.NoError(t, err)
	parallelBytes, err := os.ReadFile(parallelOut)
	require.NoError(t, err)
	assert.Equal(t, serialBytes, parallelBytes)
}

func TestStatsInvariantHoldsWithExpansion(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 10) // 5 even (expand), 5 odd (pass through)
	output := filepath.Join(dir, "out.jsonl")

	rc := &processor.RunContext{Ctx: context.Background()}
	stats, err := Run(rc, newMapProcessor(t, input, output, 1, 100))
	require.NoError(t, err)

	assert.Equal(t, 10, stats.In)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 5, stats.Expanded)
	assert.Equal(t, stats.In-stats.Dropped+stats.Expanded, stats.Out)
	assert.Equal(t, 15, stats.Out)
}

// dropOdds drops every record with an odd "n", recording a metric for the
// drop, and keeps the rest unchanged.
type dropOdds struct{}

func (dropOdds) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	n, _ := rec["n"].(float64)
	if int(n)%2 != 0 {
		return []record.DataEntry{record.Drop(map[string]any{"reason": "odd"})}, nil
	}
	return []record.DataEntry{record.Keep(rec.Clone())}, nil
}

func TestStatsInvariantHoldsWithDrops(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 10)
	output := filepath.Join(dir, "out.jsonl")

	mp := &processor.MapProcessor{MaxWorkers: 1}
	mp.InputPath, mp.OutputPath = input, output
	mp.Mapper = dropOdds{}
	mp.NewInstance = func() (processor.RecordMapper, error) { return dropOdds{}, nil }

	rc := &processor.RunContext{Ctx: context.Background()}
	stats, err := Run(rc, mp)
	require.NoError(t, err)

	assert.Equal(t, 10, stats.In)
	assert.Equal(t, 5, stats.Dropped)
	assert.Equal(t, 5, stats.Out)
	assert.Equal(t, stats.In-stats.Dropped+stats.Expanded, stats.Out)

	metrics := mp.CollectedMetrics()
	assert.Len(t, metrics, 5)
}

type erroringMapper struct{}

func (erroringMapper) ProcessRecord(rec record.Record) ([]record.DataEntry, error) {
	n, _ := rec["n"].(float64)
	if int(n) == 3 {
		return nil, fmt.Errorf("boom at 3")
	}
	return []record.DataEntry{record.Keep(rec)}, nil
}

func TestProcessRecordErrorAbortsTheRun(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 10)
	output := filepath.Join(dir, "out.jsonl")

	mp := &processor.MapProcessor{MaxWorkers: 1}
	mp.InputPath, mp.OutputPath = input, output
	mp.Mapper = erroringMapper{}
	mp.NewInstance = func() (processor.RecordMapper, error) { return erroringMapper{}, nil }

	rc := &processor.RunContext{Ctx: context.Background()}
	_, err := Run(rc, mp)
	require.Error(t, err)
}

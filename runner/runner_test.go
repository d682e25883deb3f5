package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "minidp/builtins"
	"minidp/manifest"
	"minidp/recipe"
	"minidp/record"
)

func writeInput(t *testing.T, dir string, recs []record.Record) string {
	t.Helper()
	path := filepath.Join(dir, "input.jsonl")
	require.NoError(t, manifest.WriteAll(path, recs))
	return path
}

func TestRunSingleStepPassThrough(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []record.Record{{"id": float64(1)}})
	output := filepath.Join(dir, "output.jsonl")

	r := &recipe.Recipe{
		WorkspaceDir:   dir,
		InputManifest:  input,
		OutputManifest: output,
		Steps: []recipe.Step{
			{Type: "PassThrough"},
		},
	}

	result, err := Run(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, 1, result.Steps[0].Stats.In)
	assert.Equal(t, 1, result.Steps[0].Stats.Out)

	out, err := manifest.ReadAll(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{{"id": float64(1)}}, out)
}

func TestRunChainsAddDropRenameAcrossSteps(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []record.Record{{"id": float64(1), "secret": "x"}})
	output := filepath.Join(dir, "output.jsonl")

	r := &recipe.Recipe{
		WorkspaceDir:   dir,
		InputManifest:  input,
		OutputManifest: output,
		Steps: []recipe.Step{
			{Type: "AddConstantFields", Params: map[string]any{"fields": map[string]any{"env": "prod"}}},
			{Type: "DropSpecifiedFields", Params: map[string]any{"fields_to_drop": []any{"secret"}}},
			{Type: "RenameFields", Params: map[string]any{"rename_fields": map[string]any{"id": "record_id"}}},
		},
	}

	result, err := Run(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, result.Steps, 3)

	out, err := manifest.ReadAll(result.OutputPath)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "prod", out[0]["env"])
	assert.Equal(t, float64(1), out[0]["record_id"])
	_, hasSecret := out[0]["secret"]
	assert.False(t, hasSecret)
	_, hasID := out[0]["id"]
	assert.False(t, hasID)
}

func TestRunStepsToRunSelectsASubset(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []record.Record{{"id": float64(1)}})
	output := filepath.Join(dir, "output.jsonl")

	r := &recipe.Recipe{
		WorkspaceDir:   dir,
		InputManifest:  input,
		OutputManifest: output,
		StepsToRun:     "1:",
		Steps: []recipe.Step{
			{Type: "FilterByField", Params: map[string]any{"field": "id", "values": []any{float64(99)}}}, // would drop everything
			{Type: "AddConstantFields", Params: map[string]any{"fields": map[string]any{"tag": "kept"}}},
		},
	}

	result, err := Run(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, result.Steps, 1, "only the selected step runs")

	out, err := manifest.ReadAll(result.OutputPath)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "kept", out[0]["tag"])
}

func TestRunDisabledIntermediateStepIsATransparentSlot(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []record.Record{{"id": float64(1)}})
	output := filepath.Join(dir, "output.jsonl")
	disabled := false

	r := &recipe.Recipe{
		WorkspaceDir:   dir,
		InputManifest:  input,
		OutputManifest: output,
		Steps: []recipe.Step{
			{Type: "AddConstantFields", Params: map[string]any{"fields": map[string]any{"a": "1"}}},
			{Type: "AddConstantFields", Enabled: &disabled, Params: map[string]any{"fields": map[string]any{"skip": "me"}}},
			{Type: "AddConstantFields", Params: map[string]any{"fields": map[string]any{"b": "2"}}},
		},
	}

	result, err := Run(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, result.Steps, 2, "the disabled step contributes no stats")

	out, err := manifest.ReadAll(result.OutputPath)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0]["a"])
	assert.Equal(t, "2", out[0]["b"])
	_, hasSkip := out[0]["skip"]
	assert.False(t, hasSkip, "a disabled step's slot must be transparent, not a hole in the chain")
}

func TestRunFailureKeepsTempDirectory(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []record.Record{{"id": float64(1)}})

	r := &recipe.Recipe{
		WorkspaceDir:  dir,
		InputManifest: input,
		Steps: []recipe.Step{
			{Type: "DoesNotExist"},
		},
	}

	result, err := Run(context.Background(), r)
	require.Error(t, err)
	require.NotNil(t, result)

	tempDir := manifest.TempDir(dir, result.RunID)
	_, statErr := os.Stat(tempDir)
	assert.NoError(t, statErr, "temp dir survives a failed run for post-mortem inspection")
}

func TestRunRemovesTempDirectoryOnSuccessUnlessKeepTemps(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []record.Record{{"id": float64(1)}})
	output := filepath.Join(dir, "output.jsonl")

	r := &recipe.Recipe{
		WorkspaceDir:   dir,
		InputManifest:  input,
		OutputManifest: output,
		Steps: []recipe.Step{
			{Type: "PassThrough"},
			{Type: "PassThrough"},
		},
	}

	result, err := Run(context.Background(), r)
	require.NoError(t, err)

	tempDir := manifest.TempDir(dir, result.RunID)
	_, statErr := os.Stat(tempDir)
	assert.True(t, os.IsNotExist(statErr), "temp dir is cleaned up after a successful run")
}

func TestRunKeepTempsRetainsTempDirectory(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []record.Record{{"id": float64(1)}})
	output := filepath.Join(dir, "output.jsonl")

	r := &recipe.Recipe{
		WorkspaceDir:   dir,
		InputManifest:  input,
		OutputManifest: output,
		KeepTemps:      true,
		Steps: []recipe.Step{
			{Type: "PassThrough"},
			{Type: "PassThrough"},
		},
	}

	result, err := Run(context.Background(), r)
	require.NoError(t, err)

	tempDir := manifest.TempDir(dir, result.RunID)
	_, statErr := os.Stat(tempDir)
	assert.NoError(t, statErr)
}

func TestPreviewReturnsFirstNRecordsWithoutTruncatingThePipeline(t *testing.T) {
	dir := t.TempDir()
	recs := make([]record.Record, 10)
	for i := range recs {
		recs[i] = record.Record{"n": float64(i)}
	}
	input := writeInput(t, dir, recs)
	output := filepath.Join(dir, "output.jsonl")

	r := &recipe.Recipe{
		WorkspaceDir:   dir,
		InputManifest:  input,
		OutputManifest: output,
		Steps: []recipe.Step{
			{Type: "PassThrough"},
		},
	}

	result, preview, err := Preview(context.Background(), r, 3)
	require.NoError(t, err)
	require.Len(t, preview, 3)
	assert.Equal(t, float64(0), preview[0]["n"])
	assert.Equal(t, float64(2), preview[2]["n"])

	full, err := manifest.ReadAll(result.OutputPath)
	require.NoError(t, err)
	assert.Len(t, full, 10, "preview doesn't truncate the run itself")
}

func TestRunMissingInputManifestFailsValidationBeforeAnyStepRuns(t *testing.T) {
	dir := t.TempDir()
	r := &recipe.Recipe{
		WorkspaceDir: dir,
		Steps: []recipe.Step{
			{Type: "PassThrough"},
		},
	}

	_, err := Run(context.Background(), r)
	require.Error(t, err)
}

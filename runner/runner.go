// Package runner implements the pipeline orchestrator: it interprets a
// recipe, resolves processors from the registry, stitches manifest paths
// between steps, drives each step's Prepare/Process/Finalize lifecycle,
// and aggregates per-step statistics.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"

	"minidp/config"
	minidperrors "minidp/errors"
	"minidp/logger"
	"minidp/manifest"
	"minidp/processor"
	"minidp/recipe"
	"minidp/registry"
)

// StepResult pairs a step's resolved identity with the stats it produced.
type StepResult struct {
	StepID string
	Stats  processor.RunStats
}

// Result is the outcome of a completed run.
type Result struct {
	RunID      string
	OutputPath string
	Steps      []StepResult
}

// resolvedStep is a step within the selection window with its manifest
// paths already locked in, per the stitching algorithm.
type resolvedStep struct {
	absoluteIndex int
	step          recipe.Step
	input         string
	output        string
}

// Run executes r to completion and returns the final output manifest
// path plus per-step stats.
func Run(ctx context.Context, r *recipe.Recipe) (*Result, error) {
	if _, err := r.Validate(); err != nil {
		return nil, err
	}

	if r.WorkspaceDir == "" {
		cfg, cerr := config.Load()
		if cerr != nil {
			return nil, cerr
		}
		r.WorkspaceDir = cfg.WorkspaceDir
	}

	runID := newRunID()
	log := logger.Init(runID)
	ctx = logger.WithContext(ctx, log)

	start, end, err := recipe.ParseSlice(r.StepsToRun, len(r.Steps))
	if err != nil {
		return nil, &minidperrors.RecipeValidationError{Path: "steps_to_run", Reason: err.Error()}
	}

	resolved, err := stitch(r, start, end, runID)
	if err != nil {
		return nil, err
	}

	tempDir := manifest.TempDir(r.WorkspaceDir, runID)
	if needsTempDir(resolved, tempDir) {
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return nil, err
		}
	}

	rc := &processor.RunContext{
		Ctx:       ctx,
		RunID:     runID,
		Workspace: r.WorkspaceDir,
		TempDir:   manifest.TempDir(r.WorkspaceDir, runID),
		Log:       log,
	}

	result := &Result{RunID: runID}
	var runErr error

	for _, rs := range resolved {
		if !rs.step.IsEnabled() {
			continue
		}
		stepID := rs.step.EffectiveID(rs.absoluteIndex)

		log.Info(logger.Line(runID, fmt.Sprintf("starting step %q (%s)", stepID, rs.step.Type)))

		stats, stepErr := runStep(rc, rs)
		result.Steps = append(result.Steps, StepResult{StepID: stepID, Stats: stats})

		log.Info(logger.Line(runID, fmt.Sprintf(
			"step %q stats: in=%d out=%d dropped=%d expanded=%d time=%s",
			stepID, stats.In, stats.Out, stats.Dropped, stats.Expanded, stats.Time)))

		if stepErr != nil {
			runErr = stepErr
			break
		}
		result.OutputPath = rs.output
	}

	if runErr != nil {
		log.WithError(runErr).Error(logger.Line(runID, "run failed"))
		return result, runErr
	}

	if !r.KeepTemps {
		if rmErr := os.RemoveAll(rc.TempDir); rmErr != nil {
			log.WithError(rmErr).Warn(logger.Line(runID, "failed to remove temp directory"))
		}
	}

	abs, err := absPath(result.OutputPath)
	if err != nil {
		return result, err
	}
	result.OutputPath = abs

	log.Info(logger.Line(runID, fmt.Sprintf("Output: %s", abs)))
	return result, nil
}

func runStep(rc *processor.RunContext, rs resolvedStep) (stats processor.RunStats, err error) {
	params := mergeManifestParams(rs.step.Params, rs.input, rs.output)

	p, cerr := registry.Construct(rs.step.Type, params)
	if cerr != nil {
		return processor.RunStats{}, cerr
	}

	defer func() {
		if ferr := p.Finalize(rc, stats); ferr != nil {
			rc.Log.WithError(ferr).Warn(logger.Line(rc.RunID, fmt.Sprintf("finalize failed for step %q", rs.step.EffectiveID(rs.absoluteIndex))))
			if err == nil {
				err = ferr
			} else {
				err = multierror.Append(err, ferr)
			}
		}
	}()

	if perr := p.Prepare(rc); perr != nil {
		return processor.RunStats{}, perr
	}

	stats, err = p.Process(rc)
	return stats, err
}

func mergeManifestParams(params map[string]any, input, output string) map[string]any {
	out := make(map[string]any, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	out["input_manifest"] = input
	out["output_manifest"] = output
	return out
}

// stitch implements the I/O stitching algorithm from the pipeline runner
// contract: omitted input/output paths are filled in by chaining to the
// neighboring step's resolved path, or to a fresh temp path. Resolved
// paths are locked before any step runs.
func stitch(r *recipe.Recipe, start, end int, runID string) ([]resolvedStep, error) {
	window := r.Steps[start:end]
	out := make([]resolvedStep, len(window))

	var prevOutput string
	for i, step := range window {
		abs := start + i
		rs := resolvedStep{absoluteIndex: abs, step: step}

		if step.InputManifest != "" {
			rs.input = step.InputManifest
		} else if i == 0 {
			if r.InputManifest == "" {
				return nil, &minidperrors.RecipeValidationError{
					Path:   "input_manifest",
					Reason: "recipe input_manifest is required when the first selected step does not set one",
				}
			}
			rs.input = r.InputManifest
		} else {
			rs.input = prevOutput
		}

		if step.OutputManifest != "" {
			rs.output = step.OutputManifest
		} else if i == len(window)-1 && r.OutputManifest != "" {
			rs.output = r.OutputManifest
		} else {
			rs.output = manifest.StepPath(r.WorkspaceDir, runID, abs)
		}

		if step.IsEnabled() {
			prevOutput = rs.output
		} else {
			// A disabled step's slot is transparent: nothing ever writes
			// rs.output, so the following step must chain to this step's
			// input instead, not to a temp path that will never exist.
			prevOutput = rs.input
		}
		out[i] = rs
	}
	return out, nil
}

func absPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return filepath.Abs(p)
}

func needsTempDir(resolved []resolvedStep, tempDir string) bool {
	for _, rs := range resolved {
		if strings.HasPrefix(rs.output, tempDir) {
			return true
		}
	}
	return false
}

func newRunID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id.String()[:8]
}

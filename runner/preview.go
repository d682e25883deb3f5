package runner

import (
	"context"

	"minidp/manifest"
	"minidp/recipe"
	"minidp/record"
)

// Preview runs r to completion, the same as Run, then streams the first n
// records of the final output manifest. It does not truncate the
// pipeline: every step runs; preview only reports what a user would see.
func Preview(ctx context.Context, r *recipe.Recipe, n int) (*Result, []record.Record, error) {
	result, err := Run(ctx, r)
	if err != nil {
		return result, nil, err
	}

	reader, err := manifest.OpenReader(result.OutputPath)
	if err != nil {
		return result, nil, err
	}
	defer reader.Close() //nolint:errcheck

	var out []record.Record
	for len(out) < n {
		rec, ok, err := reader.Next()
		if err != nil {
			return result, out, err
		}
		if !ok {
			break
		}
		out = append(out, rec)
	}
	return result, out, nil
}

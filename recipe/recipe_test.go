package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	r, err := Parse([]byte(`{"steps":[{"type":"PassThrough"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "0.1", r.Version)
	assert.Equal(t, "all", r.StepsToRun)
	assert.Empty(t, r.WorkspaceDir, "recipe leaves workspace_dir empty for config.Load to fill in")
}

func TestStepEffectiveIDAndEnabled(t *testing.T) {
	s := Step{}
	assert.Equal(t, "step_3", s.EffectiveID(3))
	assert.True(t, s.IsEnabled())

	f := false
	s.Enabled = &f
	assert.False(t, s.IsEnabled())

	s.ID = "named"
	assert.Equal(t, "named", s.EffectiveID(3))
}

func TestValidateRequiresAtLeastOneStep(t *testing.T) {
	r, err := Parse([]byte(`{"steps":[]}`))
	require.NoError(t, err)
	_, verr := r.Validate()
	require.Error(t, verr)
}

func TestValidateRejectsBlankStepType(t *testing.T) {
	r, err := Parse([]byte(`{"steps":[{"type":"  "}]}`))
	require.NoError(t, err)
	_, verr := r.Validate()
	require.Error(t, verr)
}

func TestValidateWarnsOnUnknownVersion(t *testing.T) {
	r, err := Parse([]byte(`{"version":"9.9","steps":[{"type":"PassThrough"}]}`))
	require.NoError(t, err)
	warnings, verr := r.Validate()
	require.NoError(t, verr)
	require.Len(t, warnings, 1)
}

func TestValidateRejectsUnknownStepField(t *testing.T) {
	r, err := Parse([]byte(`{"steps":[{"type":"PassThrough","bogus":true}]}`))
	require.NoError(t, err)
	_, verr := r.Validate()
	require.Error(t, verr)
	assert.Contains(t, verr.Error(), "steps[0].bogus")
}

func TestValidateIgnoresUnknownTopLevelField(t *testing.T) {
	r, err := Parse([]byte(`{"unexpected_top_level":"ignored","steps":[{"type":"PassThrough"}]}`))
	require.NoError(t, err)
	_, verr := r.Validate()
	require.NoError(t, verr, "unknown top-level fields are ignored, not rejected")
}

func TestParseSlice(t *testing.T) {
	cases := []struct {
		name          string
		expr          string
		n             int
		start, end    int
		expectErr     bool
	}{
		{name: "empty means all", expr: "", n: 5, start: 0, end: 5},
		{name: "literal all", expr: "all", n: 5, start: 0, end: 5},
		{name: "single index", expr: "2", n: 5, start: 2, end: 3},
		{name: "open start", expr: ":3", n: 5, start: 0, end: 3},
		{name: "open end", expr: "2:", n: 5, start: 2, end: 5},
		{name: "bounded", expr: "1:4", n: 5, start: 1, end: 4},
		{name: "empty window", expr: "0:0", n: 5, start: 0, end: 0},
		{name: "negative index rejected", expr: "-1", n: 5, expectErr: true},
		{name: "out of range index rejected", expr: "5", n: 5, expectErr: true},
		{name: "end exceeds n rejected", expr: "0:6", n: 5, expectErr: true},
		{name: "start after end rejected", expr: "3:1", n: 5, expectErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := ParseSlice(tc.expr, tc.n)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

package filtering

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ensa-hoceima/hr-assistant/internal/matching"
)

func ranking(scores ...float64) *matching.Ranking {
	r := &matching.Ranking{Kind: matching.KindInternship}
	for i, s := range scores {
		id := string(rune('a' + i))
		r.Items = append(r.Items, matching.Ranked{CandidateID: id, CandidateName: "student " + id, TotalScore: s})
	}
	return r
}

func candidateIDs(r *matching.Ranking) []string {
	out := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.CandidateID)
	}
	return out
}

func TestRunDefaultPipeline(t *testing.T) {
	dir := t.TempDir()
	excludePath := filepath.Join(dir, "exclude.json")
	require.NoError(t, ToExcluded([]matching.Ranked{{CandidateID: "b"}}, "manual").ToFile(excludePath))

	core, logs := observer.New(zap.InfoLevel)
	cfg := &Config{Threshold: 50, ExcludeFile: excludePath, Top: 2}

	out, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Default(), ranking(95, 90, 80, 40, 70))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, candidateIDs(out))
	assert.Equal(t, 3, logs.FilterMessage("filter step").Len())
}

func TestThresholdKeepsOrder(t *testing.T) {
	f := NewThreshold()
	require.NoError(t, f.Validate(&Config{Threshold: 60}))

	out, step, err := f.Apply(context.Background(), Deps{}, ranking(90, 20, 70, 60, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, candidateIDs(out))
	assert.Equal(t, Step{Initial: 5, Dropped: 2, Left: 3}, step)
}

func TestThresholdValidation(t *testing.T) {
	f := NewThreshold()
	assert.Error(t, f.Validate(nil))
	assert.Error(t, f.Validate(&Config{Threshold: 120}))
	assert.Error(t, f.Validate(&Config{Threshold: 50, RememberRejected: true}))
}

func TestThresholdRemembersRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	cfg := &Config{Threshold: 50, ExcludeFile: path, RememberRejected: true}

	_, err := Run(context.Background(), cfg, Deps{}, []Filter{NewThreshold()}, ranking(90, 30))
	require.NoError(t, err)

	excluded, err := LoadExcluded(path)
	require.NoError(t, err)
	require.Len(t, excluded.Items, 1)
	assert.Equal(t, "b", excluded.Items[0].ID)
	assert.Equal(t, "score below 50.00", excluded.Items[0].Reason)

	// The next run no longer proposes the rejected candidate.
	out, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, Default(), ranking(90, 30))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, candidateIDs(out))
}

func TestDisabledFilterIsSkipped(t *testing.T) {
	steps := Default()
	DisableByName(steps, "threshold", "smart matching disabled")

	out, err := Run(context.Background(), &Config{Threshold: 99}, Deps{}, steps, ranking(10, 20))
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	statuses := Describe(steps)
	require.Len(t, statuses, 3)
	assert.False(t, statuses[1].Enabled)
	assert.Equal(t, "smart matching disabled", statuses[1].Reason)
}

func TestLoadExcludedMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	excluded, err := LoadExcluded(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, excluded.Items)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	excluded, err = LoadExcluded(empty)
	require.NoError(t, err)
	assert.Empty(t, excluded.Items)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))
	_, err = LoadExcluded(broken)
	assert.Error(t, err)
}

func TestTopFilter(t *testing.T) {
	f := NewTop()
	assert.Error(t, f.Validate(&Config{Top: -1}))

	require.NoError(t, f.Validate(&Config{Top: 0}))
	out, step, err := f.Apply(context.Background(), Deps{}, ranking(3, 2, 1))
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)
	assert.Equal(t, 0, step.Dropped)
}

package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

type fakeBackend struct {
	ai.Backend

	video *ai.VideoAnalysis
	err   error
}

func (f *fakeBackend) AnalyzeVideo(context.Context, ai.AnalyzeVideoRequest) (*ai.VideoAnalysis, error) {
	return f.video, f.err
}

type fakeEnhancer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeEnhancer) Enhance(context.Context, []string) (string, error) {
	f.calls++
	return f.summary, f.err
}

func scenes(descriptions ...string) []ai.SceneDescription {
	out := make([]ai.SceneDescription, len(descriptions))
	for i, d := range descriptions {
		out[i] = ai.SceneDescription{FrameIndex: i, Description: d}
	}
	return out
}

func TestVideoSummaryUsesEnhancer(t *testing.T) {
	backend := &fakeBackend{video: &ai.VideoAnalysis{
		SceneDescriptions: scenes("a dog runs", "the dog swims"),
		DurationSeconds:   12.5,
	}}
	enhancer := &fakeEnhancer{summary: "A dog plays at the lake."}
	a := NewVideoAnalyzer(backend, enhancer)

	res, err := a.Analyze(context.Background(), &model.MediaRecord{FileName: "dog.mp4"}, "/tmp/dog.mp4")
	require.NoError(t, err)
	assert.Equal(t, "A dog plays at the lake.", res.Description)
	assert.Equal(t, 12.5, res.DurationSeconds)
	assert.Equal(t, 1, enhancer.calls)
}

func TestVideoSummaryFallsBackToCaptions(t *testing.T) {
	backend := &fakeBackend{video: &ai.VideoAnalysis{
		SceneDescriptions: scenes("one", "two", "three", "four"),
	}}
	enhancer := &fakeEnhancer{err: errors.New("ollama unreachable")}
	a := NewVideoAnalyzer(backend, enhancer)

	res, err := a.Analyze(context.Background(), &model.MediaRecord{FileName: "clip.mp4"}, "/tmp/clip.mp4")
	require.NoError(t, err, "an unreachable enhancer must not fail the analysis")
	assert.Equal(t, "Video scenes: one; two; three", res.Description)
}

func TestVideoSummaryWithoutEnhancer(t *testing.T) {
	backend := &fakeBackend{video: &ai.VideoAnalysis{
		SceneDescriptions: scenes("sunset over water"),
	}}
	a := NewVideoAnalyzer(backend, nil)

	res, err := a.Analyze(context.Background(), &model.MediaRecord{FileName: "sunset.mp4"}, "/tmp/sunset.mp4")
	require.NoError(t, err)
	assert.Equal(t, "Video scenes: sunset over water", res.Description)
}

func TestVideoWithoutScenesUsesFilename(t *testing.T) {
	backend := &fakeBackend{video: &ai.VideoAnalysis{}}
	enhancer := &fakeEnhancer{}
	a := NewVideoAnalyzer(backend, enhancer)

	res, err := a.Analyze(context.Background(), &model.MediaRecord{FileName: "empty.mp4"}, "/tmp/empty.mp4")
	require.NoError(t, err)
	assert.Equal(t, "Video file: empty.mp4", res.Description)
	assert.Zero(t, enhancer.calls)
}

func TestVideoBackendFailurePropagates(t *testing.T) {
	backend := &fakeBackend{err: errors.New("status 500")}
	a := NewVideoAnalyzer(backend, nil)

	_, err := a.Analyze(context.Background(), &model.MediaRecord{FileName: "bad.mp4"}, "/tmp/bad.mp4")
	require.Error(t, err)
}

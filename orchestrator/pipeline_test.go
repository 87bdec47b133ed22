package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/procteo-audio/audio"
	cfg "github.com/maastricht-university/procteo-audio/config"
	"github.com/maastricht-university/procteo-audio/transcribe"
	"github.com/maastricht-university/procteo-audio/vad"
)

const testRate = 8000

// speechWAV builds WAV bytes with 440 Hz tone bursts over the given
// [start, end) second intervals and silence elsewhere.
func speechWAV(totalS float64, intervals ...[2]float64) []byte {
	n := int(totalS * testRate)
	samples := make([]float64, n)
	for _, iv := range intervals {
		lo := int(iv[0] * testRate)
		hi := int(iv[1] * testRate)
		for i := lo; i < hi && i < n; i++ {
			samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/testRate)
		}
	}
	return audio.EncodeWAV(&audio.Buffer{SampleRate: testRate, Samples: samples})
}

func testConfig() *cfg.Root {
	c := cfg.Default()
	c.Audio.SampleRate = testRate
	c.Frames.LengthS = 0.1
	c.Frames.HopS = 0.1
	c.Detection.MinSpeechS = 0.2
	c.Detection.MinSilenceGapS = 0.2
	c.Detection.PaddingS = 0.05
	return c
}

type stubTranscriber struct {
	mu    sync.Mutex
	calls int
	fail  map[int]error // 1-based call number -> error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, clip *audio.Buffer) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.fail[call]; err != nil {
		return "", err
	}
	return fmt.Sprintf("text-%d", call), nil
}

type failingScorer struct{}

func (failingScorer) Score(context.Context, audio.Frame) (vad.FrameScore, error) {
	return vad.FrameScore{}, fmt.Errorf("%w: weights missing", vad.ErrScoringUnavailable)
}
func (failingScorer) Reset() {}

func newTestPipeline(t *testing.T, c *cfg.Root, tr transcribe.Transcriber) *Pipeline {
	t.Helper()
	p, err := NewPipeline(c, vad.NewEnergyScorer(0), tr, "energy", nil)
	require.NoError(t, err)
	return p
}

func TestRunDetectsSegments(t *testing.T) {
	data := speechWAV(2.0, [2]float64{0.2, 0.5}, [2]float64{0.8, 1.1}, [2]float64{1.4, 1.7})
	p := newTestPipeline(t, testConfig(), nil)

	report, err := p.RunBytes(context.Background(), "session.wav", data)
	require.NoError(t, err)
	require.True(t, report.Success)
	require.Len(t, report.Events, 3)

	expected := [][2]float64{{0.15, 0.55}, {0.75, 1.15}, {1.35, 1.75}}
	for i, ev := range report.Events {
		assert.Equal(t, "speech", ev.Type)
		assert.InDelta(t, expected[i][0], ev.Start, 0.11, "segment %d start", i)
		assert.InDelta(t, expected[i][1], ev.End, 0.11, "segment %d end", i)
		assert.Greater(t, ev.Confidence, 0.5)
		assert.Nil(t, ev.Transcription, "transcription disabled: key must be absent")
	}
	assert.Equal(t, 3, report.Metadata.SegmentsCount)
	assert.Equal(t, 20, report.Diagnostics.FramesScored)
	assert.Equal(t, "audio", report.Metadata.InputType)
	assert.Equal(t, "vad", report.Metadata.Profile)
	assert.NotEmpty(t, report.Metadata.SourceSHA256)
	assert.NotEmpty(t, report.RunID)
}

func TestRunSilentSourceYieldsNoSegments(t *testing.T) {
	data := speechWAV(1.0)
	p := newTestPipeline(t, testConfig(), nil)
	report, err := p.RunBytes(context.Background(), "quiet.wav", data)
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Empty(t, report.Events)
}

func TestRunIdempotent(t *testing.T) {
	data := speechWAV(2.0, [2]float64{0.3, 0.7}, [2]float64{1.2, 1.6})
	p := newTestPipeline(t, testConfig(), nil)

	first, err := p.RunBytes(context.Background(), "a.wav", data)
	require.NoError(t, err)
	second, err := p.RunBytes(context.Background(), "a.wav", data)
	require.NoError(t, err)

	require.Equal(t, len(first.Events), len(second.Events))
	for i := range first.Events {
		assert.Equal(t, first.Events[i].Start, second.Events[i].Start)
		assert.Equal(t, first.Events[i].End, second.Events[i].End)
		assert.Equal(t, first.Events[i].Confidence, second.Events[i].Confidence)
	}
	assert.Equal(t, first.Metadata.SourceSHA256, second.Metadata.SourceSHA256)
}

func TestPartialTranscriptionFailureDoesNotFailRun(t *testing.T) {
	data := speechWAV(2.0, [2]float64{0.2, 0.5}, [2]float64{0.8, 1.1}, [2]float64{1.4, 1.7})
	c := testConfig()
	c.Transcription.Enabled = true
	c.Transcription.Concurrency = 1 // serial: call order matches segment order

	stub := &stubTranscriber{fail: map[int]error{2: transcribe.ErrUnavailable}}
	p := newTestPipeline(t, c, stub)

	report, err := p.RunBytes(context.Background(), "s.wav", data)
	require.NoError(t, err, "per-segment failure must not fail the run")
	require.True(t, report.Success)
	require.Len(t, report.Events, 3)

	require.NotNil(t, report.Events[0].Transcription)
	assert.Equal(t, transcribe.StatusOK, report.Events[0].Transcription.Status)
	assert.Equal(t, "text-1", report.Events[0].Transcription.Text)

	require.NotNil(t, report.Events[1].Transcription)
	assert.Equal(t, transcribe.StatusFailed, report.Events[1].Transcription.Status)
	assert.NotEmpty(t, report.Events[1].Transcription.ErrorDetail)

	require.NotNil(t, report.Events[2].Transcription)
	assert.Equal(t, transcribe.StatusOK, report.Events[2].Transcription.Status)

	assert.Equal(t, 1, report.Diagnostics.TranscriptionFailures)
}

func TestConcurrentTranscriptionKeepsSegmentOrder(t *testing.T) {
	data := speechWAV(2.0, [2]float64{0.2, 0.5}, [2]float64{0.8, 1.1}, [2]float64{1.4, 1.7})
	c := testConfig()
	c.Transcription.Enabled = true
	c.Transcription.Concurrency = 3

	stub := &stubTranscriber{}
	p := newTestPipeline(t, c, stub)

	report, err := p.RunBytes(context.Background(), "s.wav", data)
	require.NoError(t, err)
	require.Len(t, report.Events, 3)
	for i, ev := range report.Events {
		require.NotNil(t, ev.Transcription, "segment %d", i)
		assert.Equal(t, transcribe.StatusOK, ev.Transcription.Status)
		if i > 0 {
			assert.Greater(t, ev.Start, report.Events[i-1].Start, "report keeps segment order")
		}
	}
}

func TestCanceledRunMarksOutstandingSegmentsFailed(t *testing.T) {
	data := speechWAV(2.0, [2]float64{0.2, 0.5}, [2]float64{0.8, 1.1})
	c := testConfig()
	c.Transcription.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, c, &stubTranscriber{})
	report, err := p.RunBytes(ctx, "s.wav", data)
	require.NoError(t, err, "cancellation during transcription still yields a report")
	require.Len(t, report.Events, 2)
	for i, ev := range report.Events {
		require.NotNil(t, ev.Transcription, "segment %d", i)
		assert.Equal(t, transcribe.StatusFailed, ev.Transcription.Status)
		assert.Contains(t, ev.Transcription.ErrorDetail, "canceled")
	}
}

func TestScoringFailureIsFatal(t *testing.T) {
	data := speechWAV(1.0, [2]float64{0.2, 0.8})
	c := testConfig()
	p, err := NewPipeline(c, failingScorer{}, nil, "broken", nil)
	require.NoError(t, err)

	_, err = p.RunBytes(context.Background(), "s.wav", data)
	require.Error(t, err)

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StageScoring, pe.Stage)
	assert.ErrorIs(t, err, vad.ErrScoringUnavailable)
}

func TestUnreadableSourceIsFatalAtLoading(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)
	_, err := p.RunBytes(context.Background(), "junk.bin", []byte("not audio at all"))
	require.Error(t, err)

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StageLoading, pe.Stage)
	assert.ErrorIs(t, err, audio.ErrUnreadableSource)
}

func TestNewPipelineValidatesConfig(t *testing.T) {
	c := testConfig()
	c.Detection.OffsetThreshold = 0.9 // above onset
	_, err := NewPipeline(c, vad.NewEnergyScorer(0), nil, "energy", nil)
	assert.ErrorIs(t, err, cfg.ErrInvalid)
}

func TestNewPipelineRequiresTranscriberWhenEnabled(t *testing.T) {
	c := testConfig()
	c.Transcription.Enabled = true
	_, err := NewPipeline(c, vad.NewEnergyScorer(0), nil, "energy", nil)
	assert.Error(t, err)
}

func TestRunMissingFile(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)
	_, err := p.Run(context.Background(), "testdata/absent.wav")
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrUnreadableSource)
	assert.False(t, errors.Is(err, audio.ErrEmptySource))
}

package orchestrator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/procteo-audio/audio"
	cfg "github.com/maastricht-university/procteo-audio/config"
	"github.com/maastricht-university/procteo-audio/segment"
	"github.com/maastricht-university/procteo-audio/transcribe"
	"github.com/maastricht-university/procteo-audio/vad"
)

// Pipeline sequences loading, windowing, scoring, assembly and optional
// transcription for one audio source. It is the only component aware of
// transcription optionality and per-segment failure isolation.
type Pipeline struct {
	cfg         *cfg.Root
	scorer      vad.Scorer
	transcriber transcribe.Transcriber
	model       string
	log         *logrus.Entry
}

// NewPipeline wires a pipeline from validated config and model adapters.
// transcriber may be nil when transcription is disabled.
func NewPipeline(c *cfg.Root, scorer vad.Scorer, transcriber transcribe.Transcriber, model string, log *logrus.Entry) (*Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", vad.ErrScoringUnavailable)
	}
	if c.Transcription.Enabled && transcriber == nil {
		return nil, fmt.Errorf("transcription enabled but no transcriber configured")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pipeline{cfg: c, scorer: scorer, transcriber: transcriber, model: model, log: log}, nil
}

// Run processes the audio file at path and returns the assembled report.
// Fatal stage errors surface as *PipelineError; per-segment transcription
// failures are recorded inline and do not fail the run.
func (p *Pipeline) Run(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failAt(StageLoading, fmt.Errorf("%w: %v", audio.ErrUnreadableSource, err))
	}
	return p.RunBytes(ctx, path, data)
}

// RunBytes processes in-memory source bytes, tagged with a source name for
// the report.
func (p *Pipeline) RunBytes(ctx context.Context, source string, data []byte) (*Report, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := p.log.WithField("run_id", runID)

	sum := sha256.Sum256(data)
	srcHash := hex.EncodeToString(sum[:])

	buf, err := audio.Decode(bytes.NewReader(data), p.cfg.Audio.SampleRate)
	if err != nil {
		return nil, failAt(StageLoading, err)
	}
	log.WithFields(logrus.Fields{
		"stage":      StageLoading,
		"duration_s": buf.Duration(),
	}).Info("source loaded")

	win, err := audio.NewWindower(buf, p.cfg.Frames.LengthS, p.cfg.Frames.HopS, p.cfg.Audio.EmitTail)
	if err != nil {
		return nil, failAt(StageWindowing, err)
	}

	asm, err := segment.NewAssembler(segment.Config{
		OnsetThreshold:    p.cfg.Detection.OnsetThreshold,
		OffsetThreshold:   p.cfg.Detection.OffsetThreshold,
		MinSpeechDuration: p.cfg.Detection.MinSpeechS,
		MinSilenceGap:     p.cfg.Detection.MinSilenceGapS,
		Padding:           p.cfg.Detection.PaddingS,
		FrameWidth:        p.cfg.Frames.LengthS,
		MaxTime:           buf.Duration(),
	})
	if err != nil {
		return nil, failAt(StageAssembling, err)
	}

	// Model smoothing state is run-scoped; start clean.
	p.scorer.Reset()

	var segs []segment.Segment
	frames := 0
	for {
		fr, ok := win.Next()
		if !ok {
			break
		}
		score, err := p.scorer.Score(ctx, fr)
		if err != nil {
			return nil, failAt(StageScoring, err)
		}
		frames++
		if seg, emitted := asm.Push(score); emitted {
			segs = append(segs, seg)
		}
	}
	segs = append(segs, asm.Flush()...)
	log.WithFields(logrus.Fields{
		"stage":    StageAssembling,
		"frames":   frames,
		"segments": len(segs),
	}).Info("segments assembled")

	var results []*transcribe.Result
	failures := 0
	if p.cfg.Transcription.Enabled {
		results = p.transcribeAll(ctx, log, buf, segs)
		for _, r := range results {
			if r != nil && r.Status == transcribe.StatusFailed {
				failures++
			}
		}
	}

	elapsed := time.Since(started).Seconds()
	rtf := 0.0
	if d := buf.Duration(); d > 0 {
		rtf = elapsed / d
	}

	events := make([]Event, 0, len(segs))
	for i, sg := range segs {
		ev := Event{
			Type:       "speech",
			Start:      sg.Start,
			End:        sg.End,
			DurationS:  sg.Duration(),
			Confidence: sg.Confidence,
		}
		if results != nil {
			ev.Transcription = results[i]
		}
		events = append(events, ev)
	}

	report := &Report{
		RunID:   runID,
		Success: true,
		Metadata: Metadata{
			Source:          source,
			SourceSHA256:    srcHash,
			InputType:       "audio",
			DurationS:       buf.Duration(),
			SampleRate:      buf.SampleRate,
			Profile:         "vad",
			Model:           p.model,
			ProcessingTimeS: elapsed,
			RTF:             rtf,
			SegmentsCount:   len(segs),
			Config: ConfigSummary{
				SampleRate:      p.cfg.Audio.SampleRate,
				FrameLengthS:    p.cfg.Frames.LengthS,
				HopLengthS:      p.cfg.Frames.HopS,
				OnsetThreshold:  p.cfg.Detection.OnsetThreshold,
				OffsetThreshold: p.cfg.Detection.OffsetThreshold,
				MinSpeechS:      p.cfg.Detection.MinSpeechS,
				MinSilenceGapS:  p.cfg.Detection.MinSilenceGapS,
				PaddingS:        p.cfg.Detection.PaddingS,
				Transcription:   p.cfg.Transcription.Enabled,
			},
		},
		Events: events,
		Diagnostics: Diagnostics{
			FramesScored:          frames,
			TranscriptionFailures: failures,
		},
	}
	log.WithFields(logrus.Fields{
		"segments":               len(segs),
		"transcription_failures": failures,
		"rtf":                    rtf,
	}).Info("run done")
	return report, nil
}

// transcribeAll dispatches per-segment transcription on a bounded worker
// pool. Results are addressed by segment index, so completion order is
// irrelevant. Once the context is canceled no further work is dispatched;
// never-started segments are marked failed with a cancellation detail.
func (p *Pipeline) transcribeAll(ctx context.Context, log *logrus.Entry, buf *audio.Buffer, segs []segment.Segment) []*transcribe.Result {
	results := make([]*transcribe.Result, len(segs))
	sem := make(chan struct{}, p.cfg.Transcription.Concurrency)
	var wg sync.WaitGroup

	canceled := func(i int) {
		results[i] = &transcribe.Result{
			Status:      transcribe.StatusFailed,
			ErrorDetail: "run canceled before transcription",
		}
	}
	for i, sg := range segs {
		if ctx.Err() != nil {
			canceled(i)
			continue
		}
		select {
		case <-ctx.Done():
			canceled(i)
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, sg segment.Segment) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.transcribeOne(ctx, buf, sg)
			if results[i].Status == transcribe.StatusFailed {
				log.WithFields(logrus.Fields{
					"stage":   StageTranscribing,
					"segment": i,
					"detail":  results[i].ErrorDetail,
				}).Warn("segment transcription failed")
			}
		}(i, sg)
	}
	wg.Wait()
	return results
}

func (p *Pipeline) transcribeOne(ctx context.Context, buf *audio.Buffer, sg segment.Segment) *transcribe.Result {
	clip := buf.Slice(sg.Start, sg.End)
	if len(clip.Samples) == 0 {
		return &transcribe.Result{Status: transcribe.StatusSkipped}
	}
	text, err := p.transcriber.Transcribe(ctx, clip)
	if err != nil {
		return &transcribe.Result{Status: transcribe.StatusFailed, ErrorDetail: err.Error()}
	}
	return &transcribe.Result{Text: text, Status: transcribe.StatusOK}
}

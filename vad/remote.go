package vad

import (
	"context"
	"fmt"

	"github.com/maastricht-university/procteo-audio/audio"
	"github.com/maastricht-university/procteo-audio/clients"
)

// RemoteScorer scores frames through an HTTP VAD model service. It is
// stateless across calls; any smoothing lives server-side.
type RemoteScorer struct {
	http *clients.HTTP
	url  string
	rate int
}

func NewRemoteScorer(h *clients.HTTP, url string, sampleRate int) *RemoteScorer {
	return &RemoteScorer{http: h, url: url, rate: sampleRate}
}

func (s *RemoteScorer) Score(ctx context.Context, f audio.Frame) (FrameScore, error) {
	p, err := s.http.Score(ctx, s.url, audio.PCM16(f.Samples), s.rate)
	if err != nil {
		return FrameScore{}, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	if p < 0 || p > 1 {
		return FrameScore{}, fmt.Errorf("%w: probability %g out of range", ErrScoringUnavailable, p)
	}
	return FrameScore{Time: f.Center(), Probability: p}, nil
}

func (s *RemoteScorer) Reset() {}

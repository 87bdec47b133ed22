// Package vad defines the frame scoring contract and its built-in scorers.
package vad

import (
	"context"
	"errors"

	"github.com/maastricht-university/procteo-audio/audio"
)

// ErrScoringUnavailable means the underlying model cannot be invoked
// (missing weights, unreachable service, bad credentials). Scoring is
// mandatory, so this error is fatal to a run.
var ErrScoringUnavailable = errors.New("scoring unavailable")

// FrameScore is the speech probability for one frame, stamped with the
// frame's center time. Scores are produced one-to-one with frames, in
// temporal order.
type FrameScore struct {
	Time        float64 // frame center, seconds
	Probability float64 // speech probability in [0, 1]
}

// Scorer scores frames for speech probability. Implementations may carry
// model-internal smoothing state across consecutive calls, but that state is
// scoped to a single run: the pipeline calls Reset before each run.
type Scorer interface {
	Score(ctx context.Context, f audio.Frame) (FrameScore, error)
	Reset()
}

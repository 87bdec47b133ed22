package vad

import (
	"context"
	"math"

	"github.com/maastricht-university/procteo-audio/audio"
)

// Default dBFS ramp for the energy scorer: frames at or below FloorDB map
// to probability 0, frames at or above CeilDB map to 1.
const (
	defaultFloorDB = -60.0
	defaultCeilDB  = -20.0
)

// EnergyScorer is a deterministic local scorer that maps frame RMS energy
// (in dBFS) onto a speech probability. It is not a speech model; it exists
// for offline use and as a substitutable scorer in tests. An optional
// exponential moving average smooths consecutive scores; that state is
// run-scoped and cleared by Reset.
type EnergyScorer struct {
	FloorDB   float64
	CeilDB    float64
	Smoothing float64 // EMA weight of the previous score, in [0, 1)

	prev    float64
	hasPrev bool
}

// NewEnergyScorer returns a scorer with the default dBFS ramp.
func NewEnergyScorer(smoothing float64) *EnergyScorer {
	return &EnergyScorer{FloorDB: defaultFloorDB, CeilDB: defaultCeilDB, Smoothing: smoothing}
}

func (s *EnergyScorer) Score(_ context.Context, f audio.Frame) (FrameScore, error) {
	p := s.probability(f.Samples)
	if s.Smoothing > 0 {
		if s.hasPrev {
			p = s.Smoothing*s.prev + (1-s.Smoothing)*p
		}
		s.prev = p
		s.hasPrev = true
	}
	return FrameScore{Time: f.Center(), Probability: p}, nil
}

// Reset clears the smoothing state so runs stay independent.
func (s *EnergyScorer) Reset() {
	s.prev = 0
	s.hasPrev = false
}

func (s *EnergyScorer) probability(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return 0
	}
	db := 20 * math.Log10(rms)
	p := (db - s.FloorDB) / (s.CeilDB - s.FloorDB)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Package segment converts ordered frame scores into contiguous speech
// segments using hysteresis thresholds, minimum-duration and merge-gap
// rules.
package segment

import (
	"fmt"
	"math"

	"github.com/maastricht-university/procteo-audio/vad"
)

// Segment is a contiguous speech interval. Within one run segments are
// pairwise non-overlapping and strictly increasing in Start. Confidence is
// the mean speech probability of the contributing frame scores, taken
// before padding.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Config holds the assembly parameters. OffsetThreshold must not exceed
// OnsetThreshold; the gap between them is the hysteresis band that keeps
// the state machine from flapping at the speech boundary.
type Config struct {
	OnsetThreshold    float64
	OffsetThreshold   float64
	MinSpeechDuration float64 // shorter candidates are dropped
	MinSilenceGap     float64 // shorter silence runs are bridged
	Padding           float64 // added symmetrically, clipped and merge-safe
	FrameWidth        float64 // analysis frame length, converts centers to boundaries
	MaxTime           float64 // upper clip bound for padding; 0 means unbounded
}

// Assembler is a single-pass state machine over frame scores. It holds only
// the current open candidate plus one already-closed segment (withheld so
// padding can never produce overlapping output).
type Assembler struct {
	cfg  Config
	half float64
	maxT float64

	inside    bool
	openStart float64
	sum       float64
	n         int

	inSilence bool
	silStart  float64
	silSum    float64
	silN      int

	lastEnd float64
	pending *Segment
}

// NewAssembler validates cfg and returns a fresh assembler. State is scoped
// to one pass: after Flush the assembler starts over.
func NewAssembler(cfg Config) (*Assembler, error) {
	if cfg.OnsetThreshold < 0 || cfg.OnsetThreshold > 1 {
		return nil, fmt.Errorf("onset threshold %g out of [0,1]", cfg.OnsetThreshold)
	}
	if cfg.OffsetThreshold < 0 || cfg.OffsetThreshold > cfg.OnsetThreshold {
		return nil, fmt.Errorf("offset threshold %g must be in [0, onset]", cfg.OffsetThreshold)
	}
	if cfg.MinSpeechDuration < 0 || cfg.MinSilenceGap < 0 || cfg.Padding < 0 || cfg.FrameWidth < 0 {
		return nil, fmt.Errorf("durations must be non-negative")
	}
	maxT := cfg.MaxTime
	if maxT <= 0 {
		maxT = math.Inf(1)
	}
	return &Assembler{cfg: cfg, half: cfg.FrameWidth / 2, maxT: maxT}, nil
}

// Push consumes the next frame score. When a segment finishes (it can no
// longer merge with a later one) it is returned with emitted=true.
func (a *Assembler) Push(s vad.FrameScore) (Segment, bool) {
	a.lastEnd = s.Time + a.half
	p := s.Probability

	if !a.inside {
		if p >= a.cfg.OnsetThreshold {
			a.inside = true
			a.openStart = math.Max(0, s.Time-a.half)
			a.sum, a.n = p, 1
			a.inSilence = false
		}
		return Segment{}, false
	}

	if p < a.cfg.OffsetThreshold {
		if !a.inSilence {
			a.inSilence = true
			a.silStart = s.Time - a.half
			a.silSum, a.silN = 0, 0
		}
		a.silSum += p
		a.silN++
		if a.lastEnd-a.silStart >= a.cfg.MinSilenceGap {
			// Silence run long enough: close at its start.
			end := a.silStart
			a.inside = false
			a.inSilence = false
			return a.close(end)
		}
		return Segment{}, false
	}

	// Speech resumed; a sub-gap silence run is bridged into the segment.
	if a.inSilence {
		a.sum += a.silSum
		a.n += a.silN
		a.inSilence = false
	}
	a.sum += p
	a.n++
	return Segment{}, false
}

// Flush closes any open candidate at the last frame's end and returns the
// remaining segments. The assembler is reset afterwards.
func (a *Assembler) Flush() []Segment {
	var out []Segment
	if a.inside {
		if a.inSilence {
			// Trailing sub-gap silence stays inside the segment.
			a.sum += a.silSum
			a.n += a.silN
		}
		if seg, ok := a.close(a.lastEnd); ok {
			out = append(out, seg)
		}
	}
	if a.pending != nil {
		out = append(out, *a.pending)
	}
	a.inside = false
	a.inSilence = false
	a.pending = nil
	a.lastEnd = 0
	return out
}

// close evaluates a candidate ending at end for emission: drops it when too
// short, otherwise pads it and either merges it into the withheld segment
// or releases that segment.
func (a *Assembler) close(end float64) (Segment, bool) {
	// Duration is measured start-to-end, inclusive of bridged silence.
	if end-a.openStart < a.cfg.MinSpeechDuration {
		return Segment{}, false
	}
	conf := 0.0
	if a.n > 0 {
		conf = a.sum / float64(a.n)
	}
	padded := Segment{
		Start:      math.Max(0, a.openStart-a.cfg.Padding),
		End:        math.Min(a.maxT, end+a.cfg.Padding),
		Confidence: conf,
	}
	if a.pending != nil && padded.Start <= a.pending.End {
		// Padding made the two touch or overlap: merge them.
		a.pending.End = math.Max(a.pending.End, padded.End)
		a.pending.Confidence = math.Max(a.pending.Confidence, padded.Confidence)
		return Segment{}, false
	}
	prev := a.pending
	a.pending = &padded
	if prev != nil {
		return *prev, true
	}
	return Segment{}, false
}

// Assemble runs a full pass over scores with a fresh assembler.
func Assemble(cfg Config, scores []vad.FrameScore) ([]Segment, error) {
	a, err := NewAssembler(cfg)
	if err != nil {
		return nil, err
	}
	var out []Segment
	for _, s := range scores {
		if seg, ok := a.Push(s); ok {
			out = append(out, seg)
		}
	}
	return append(out, a.Flush()...), nil
}

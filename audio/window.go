package audio

import (
	"errors"
	"fmt"
)

// Frame is a view over a Buffer: a sample window plus its timing. Samples
// share the buffer's backing array; no copies are made.
type Frame struct {
	Index   int
	Start   float64 // seconds
	End     float64 // seconds
	Samples []float64
}

// Center returns the frame's temporal midpoint in seconds.
func (f Frame) Center() float64 { return (f.Start + f.End) / 2 }

// Windower yields overlapping analysis frames in strictly increasing start
// order. Iteration is finite and restartable: the backing buffer is
// immutable, so Reset followed by Next replays an identical sequence.
//
// A buffer of duration d yields floor((d-length)/hop)+1 full frames, or 0
// when d < length. With emitTail set, one final truncated frame covers any
// remainder.
type Windower struct {
	buf       *Buffer
	frameLen  int // samples
	hop       int // samples
	emitTail  bool
	fullCount int
	pos       int // next frame index
}

// NewWindower validates the frame geometry against the buffer's sample rate.
func NewWindower(buf *Buffer, lengthS, hopS float64, emitTail bool) (*Windower, error) {
	if lengthS <= 0 || hopS <= 0 || hopS > lengthS {
		return nil, fmt.Errorf("window geometry: length=%g hop=%g", lengthS, hopS)
	}
	frameLen := int(lengthS*float64(buf.SampleRate) + 0.5)
	hop := int(hopS*float64(buf.SampleRate) + 0.5)
	if frameLen == 0 || hop == 0 {
		return nil, errors.New("window geometry: shorter than one sample")
	}
	w := &Windower{buf: buf, frameLen: frameLen, hop: hop, emitTail: emitTail}
	if n := len(buf.Samples); n >= frameLen {
		w.fullCount = (n-frameLen)/hop + 1
	}
	return w, nil
}

// Count returns the number of frames iteration will yield, tail included.
func (w *Windower) Count() int {
	n := w.fullCount
	if w.hasTail() {
		n++
	}
	return n
}

func (w *Windower) hasTail() bool {
	if !w.emitTail {
		return false
	}
	tailStart := w.fullCount * w.hop
	return tailStart < len(w.buf.Samples)
}

// Next returns the next frame, or ok=false once the sequence is exhausted.
func (w *Windower) Next() (Frame, bool) {
	rate := float64(w.buf.SampleRate)
	if w.pos < w.fullCount {
		lo := w.pos * w.hop
		hi := lo + w.frameLen
		f := Frame{
			Index:   w.pos,
			Start:   float64(lo) / rate,
			End:     float64(hi) / rate,
			Samples: w.buf.Samples[lo:hi],
		}
		w.pos++
		return f, true
	}
	if w.pos == w.fullCount && w.hasTail() {
		lo := w.fullCount * w.hop
		hi := len(w.buf.Samples)
		f := Frame{
			Index:   w.pos,
			Start:   float64(lo) / rate,
			End:     float64(hi) / rate,
			Samples: w.buf.Samples[lo:hi],
		}
		w.pos++
		return f, true
	}
	return Frame{}, false
}

// Reset rewinds the iterator to the first frame.
func (w *Windower) Reset() { w.pos = 0 }

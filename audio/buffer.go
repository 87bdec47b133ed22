// Package audio holds the normalized signal representation and the two
// front stages of the pipeline: loading (decode, downmix, resample) and
// frame windowing.
package audio

// Buffer is a normalized mono signal: float64 samples in [-1, 1] at a fixed
// sample rate. A Buffer is immutable once produced by the loader; slices
// share its backing array.
type Buffer struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the total duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Slice returns a view over [start, end) seconds, clipped to the buffer
// bounds. The returned buffer shares backing storage with b.
func (b *Buffer) Slice(start, end float64) *Buffer {
	lo := int(start * float64(b.SampleRate))
	hi := int(end * float64(b.SampleRate))
	if lo < 0 {
		lo = 0
	}
	if hi > len(b.Samples) {
		hi = len(b.Samples)
	}
	if lo >= hi {
		return &Buffer{SampleRate: b.SampleRate}
	}
	return &Buffer{SampleRate: b.SampleRate, Samples: b.Samples[lo:hi]}
}

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"
)

var (
	// ErrUnreadableSource means the source bytes could not be decoded.
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrEmptySource means the source decoded to zero samples.
	ErrEmptySource = errors.New("empty source")
)

// LoadFile reads a WAV file and returns a normalized mono buffer at
// targetRate. Identical file bytes always yield identical samples.
func LoadFile(path string, targetRate int) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	defer f.Close()
	return Decode(f, targetRate)
}

// Decode parses WAV bytes from r, downmixes to mono by averaging channels,
// normalizes samples to [-1, 1] and resamples to targetRate.
func Decode(r io.ReadSeeker, targetRate int) (*Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid wav stream", ErrUnreadableSource)
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(d.BitDepth)
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	mono, err := downmix(pcm, bitDepth)
	if err != nil {
		return nil, err
	}

	srcRate := pcm.Format.SampleRate
	if srcRate == targetRate {
		return &Buffer{SampleRate: targetRate, Samples: mono}, nil
	}
	out, err := resample(mono, srcRate, targetRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	if len(out) == 0 {
		return nil, ErrEmptySource
	}
	return &Buffer{SampleRate: targetRate, Samples: out}, nil
}

// downmix averages interleaved channels into one and normalizes to [-1, 1].
func downmix(pcm *goaudio.IntBuffer, bitDepth int) ([]float64, error) {
	channels := pcm.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count %d", ErrUnreadableSource, channels)
	}
	frames := len(pcm.Data) / channels
	if frames == 0 {
		return nil, ErrEmptySource
	}
	scale := float64(int64(1) << (bitDepth - 1))
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm.Data[i*channels+ch])
		}
		mono[i] = sum / float64(channels) / scale
	}
	return mono, nil
}

func resample(samples []float64, srcRate, dstRate int) ([]float64, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}
	out, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	return out, nil
}

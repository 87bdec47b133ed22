package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stereoWAV builds a 16-bit stereo WAV stream from two channel signals.
func stereoWAV(t *testing.T, rate int, left, right []float64) []byte {
	t.Helper()
	require.Equal(t, len(left), len(right))
	dataLen := len(left) * 4

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+dataLen))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, uint16(2))
	binary.Write(&out, binary.LittleEndian, uint32(rate))
	binary.Write(&out, binary.LittleEndian, uint32(rate*4))
	binary.Write(&out, binary.LittleEndian, uint16(4))
	binary.Write(&out, binary.LittleEndian, uint16(16))
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(dataLen))
	for i := range left {
		binary.Write(&out, binary.LittleEndian, int16(left[i]*32767))
		binary.Write(&out, binary.LittleEndian, int16(right[i]*32767))
	}
	return out.Bytes()
}

func TestDecodeRoundTrip(t *testing.T) {
	src := &Buffer{SampleRate: 8000, Samples: make([]float64, 8000)}
	for i := range src.Samples {
		src.Samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/8000)
	}
	wavBytes := EncodeWAV(src)

	got, err := Decode(bytes.NewReader(wavBytes), 8000)
	require.NoError(t, err)
	require.Equal(t, 8000, got.SampleRate)
	require.Len(t, got.Samples, len(src.Samples))
	for i := range got.Samples {
		assert.InDelta(t, src.Samples[i], got.Samples[i], 1.0/32000, "sample %d", i)
	}
}

func TestDecodeDownmixesStereoByAveraging(t *testing.T) {
	n := 4000
	left := make([]float64, n)
	right := make([]float64, n)
	for i := range left {
		left[i] = 0.8
		right[i] = 0.2
	}
	got, err := Decode(bytes.NewReader(stereoWAV(t, 8000, left, right)), 8000)
	require.NoError(t, err)
	require.Len(t, got.Samples, n)
	for i := 0; i < n; i += 500 {
		assert.InDelta(t, 0.5, got.Samples[i], 1.0/16000, "sample %d", i)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	src := &Buffer{SampleRate: 8000, Samples: make([]float64, 4000)}
	for i := range src.Samples {
		src.Samples[i] = 0.3 * math.Sin(2*math.Pi*200*float64(i)/8000)
	}
	wavBytes := EncodeWAV(src)

	a, err := Decode(bytes.NewReader(wavBytes), 8000)
	require.NoError(t, err)
	b, err := Decode(bytes.NewReader(wavBytes), 8000)
	require.NoError(t, err)
	assert.Equal(t, a.Samples, b.Samples, "identical bytes must yield bit-identical samples")
}

func TestDecodeUnreadableSource(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a wav stream")), 8000)
	assert.ErrorIs(t, err, ErrUnreadableSource)
}

func TestDecodeEmptySource(t *testing.T) {
	empty := EncodeWAV(&Buffer{SampleRate: 8000})
	_, err := Decode(bytes.NewReader(empty), 8000)
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.wav", 8000)
	assert.ErrorIs(t, err, ErrUnreadableSource)
}

func TestBufferSlice(t *testing.T) {
	buf := &Buffer{SampleRate: 1000, Samples: make([]float64, 1000)}
	assert.InDelta(t, 1.0, buf.Duration(), 1e-9)

	clip := buf.Slice(0.2, 0.5)
	assert.Len(t, clip.Samples, 300)
	assert.Equal(t, 1000, clip.SampleRate)

	clipped := buf.Slice(-1, 5)
	assert.Len(t, clipped.Samples, 1000)

	degenerate := buf.Slice(0.8, 0.2)
	assert.Empty(t, degenerate.Samples)
}

func TestPCM16Clipping(t *testing.T) {
	b := PCM16([]float64{2.0, -2.0})
	require.Len(t, b, 4)
	hi := int16(b[0]) | int16(b[1])<<8
	lo := int16(b[2]) | int16(b[3])<<8
	assert.Equal(t, int16(32767), hi)
	assert.Equal(t, int16(-32767), lo)
}

package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV serializes the buffer as a 16-bit PCM mono WAV byte stream.
// Used to hand segment clips to transcription backends.
func EncodeWAV(b *Buffer) []byte {
	n := len(b.Samples)
	dataLen := n * 2

	var out bytes.Buffer
	out.Grow(44 + dataLen)
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+dataLen))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&out, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&out, binary.LittleEndian, uint32(b.SampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(b.SampleRate*2)) // byte rate
	binary.Write(&out, binary.LittleEndian, uint16(2))              // block align
	binary.Write(&out, binary.LittleEndian, uint16(16))             // bits per sample
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(dataLen))
	out.Write(PCM16(b.Samples))
	return out.Bytes()
}

// PCM16 converts normalized samples to little-endian 16-bit PCM bytes,
// clipping to [-1, 1].
func PCM16(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

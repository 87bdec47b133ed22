package orchestrator

import (
	"github.com/maastricht-university/procteo-audio/transcribe"
)

// Report is the terminal artifact of a run. It is immutable once returned
// and owned by the caller for persistence.
type Report struct {
	RunID       string      `json:"run_id"`
	Success     bool        `json:"success"`
	Metadata    Metadata    `json:"metadata"`
	Events      []Event     `json:"events"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

type Metadata struct {
	Source          string        `json:"source"`
	SourceSHA256    string        `json:"source_sha256,omitempty"`
	InputType       string        `json:"input_type"`
	DurationS       float64       `json:"duration_s"`
	SampleRate      int           `json:"sample_rate"`
	Profile         string        `json:"profile"`
	Model           string        `json:"model"`
	ProcessingTimeS float64       `json:"processing_time_s"`
	RTF             float64       `json:"rtf"`
	SegmentsCount   int           `json:"segments_count"`
	Config          ConfigSummary `json:"config"`
}

// ConfigSummary records the parameters that shaped the run, for
// reproducibility of the report.
type ConfigSummary struct {
	SampleRate      int     `json:"sample_rate"`
	FrameLengthS    float64 `json:"frame_length_s"`
	HopLengthS      float64 `json:"hop_length_s"`
	OnsetThreshold  float64 `json:"onset_threshold"`
	OffsetThreshold float64 `json:"offset_threshold"`
	MinSpeechS      float64 `json:"min_speech_duration_s"`
	MinSilenceGapS  float64 `json:"min_silence_gap_s"`
	PaddingS        float64 `json:"padding_s"`
	Transcription   bool    `json:"transcription"`
}

// Event is one detected speech interval, optionally carrying its
// transcription. The key is absent (not a placeholder) when transcription
// is disabled.
type Event struct {
	Type          string             `json:"type"`
	Start         float64            `json:"start"`
	End           float64            `json:"end"`
	DurationS     float64            `json:"duration"`
	Confidence    float64            `json:"confidence"`
	Transcription *transcribe.Result `json:"transcription,omitempty"`
}

type Diagnostics struct {
	FramesScored          int `json:"frames_scored"`
	TranscriptionFailures int `json:"transcription_failures"`
}

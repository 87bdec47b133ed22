// Package transcribe defines the transcription contract and its result
// model. Transcription is optional and failure-isolated: one segment
// failing never aborts a run.
package transcribe

import (
	"context"
	"errors"

	"github.com/maastricht-university/procteo-audio/audio"
)

var (
	// ErrUnavailable means the transcription backend could not be invoked.
	ErrUnavailable = errors.New("transcription unavailable")
	// ErrTimeout means the backend did not answer within its deadline.
	ErrTimeout = errors.New("transcription timeout")
)

// Status of one segment's transcription attempt.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is attached to exactly one segment. ErrorDetail is set iff the
// status is failed. When transcription is disabled no Result exists at all.
type Result struct {
	Text        string `json:"text,omitempty"`
	Status      Status `json:"status"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// Transcriber converts one segment's audio clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip *audio.Buffer) (string, error)
}

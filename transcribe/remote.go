package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/maastricht-university/procteo-audio/audio"
	"github.com/maastricht-university/procteo-audio/clients"
)

// RemoteTranscriber uploads segment clips to an HTTP transcription service.
// MaxAttempts bounds retries; the default of 1 means no retry. Retrying is
// a transcription-only policy: loading and scoring never retry.
type RemoteTranscriber struct {
	http        *clients.HTTP
	url         string
	maxAttempts int
}

func NewRemoteTranscriber(h *clients.HTTP, url string, maxAttempts int) *RemoteTranscriber {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RemoteTranscriber{http: h, url: url, maxAttempts: maxAttempts}
}

func (t *RemoteTranscriber) Transcribe(ctx context.Context, clip *audio.Buffer) (string, error) {
	wavBytes := audio.EncodeWAV(clip)

	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		text, err := t.http.Transcribe(ctx, t.url, wavBytes)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if errors.Is(lastErr, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %v", ErrTimeout, lastErr)
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

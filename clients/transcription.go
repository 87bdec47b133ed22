package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// --- Transcription (/transcribe) ---

type TranscribeResp struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe uploads a WAV clip as multipart form data and returns the
// transcribed text.
func (h *HTTP) Transcribe(ctx context.Context, url string, wavBytes []byte) (string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", "segment.wav")
	if err != nil {
		return "", err
	}
	if _, err = fw.Write(wavBytes); err != nil {
		return "", err
	}
	if err = w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transcribe", &b)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	h.authorize(req)

	resp, err := h.c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription %s: %s", resp.Status, string(body))
	}

	var out TranscribeResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("transcription decode: %w", err)
	}
	return out.Text, nil
}

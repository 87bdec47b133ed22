package clients

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- VAD scoring (/score) ---

type ScoreReq struct {
	PCM16      string `json:"pcm16"` // base64 little-endian 16-bit mono PCM
	SampleRate int    `json:"sample_rate"`
}
type ScoreResp struct {
	Probability float64 `json:"probability"`
}

// Score posts one frame of PCM to the VAD service and returns its speech
// probability.
func (h *HTTP) Score(ctx context.Context, url string, pcm []byte, sampleRate int) (float64, error) {
	b, _ := json.Marshal(ScoreReq{
		PCM16:      base64.StdEncoding.EncodeToString(pcm),
		SampleRate: sampleRate,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/score", bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	h.authorize(req)

	resp, err := h.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("vad %s: %s", resp.Status, string(body))
	}

	var out ScoreResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("vad decode: %w", err)
	}
	return out.Probability, nil
}

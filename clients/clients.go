// Package clients holds the HTTP adapters for the external model services
// (VAD scoring and transcription). Access tokens are injected at
// construction; the clients never read the environment themselves.
package clients

import (
	"net/http"
	"time"
)

type HTTP struct {
	c     *http.Client
	token string
}

// NewHTTP returns a client with the given bearer token (may be empty for
// unauthenticated services).
func NewHTTP(token string) *HTTP {
	return &HTTP{c: &http.Client{Timeout: 60 * time.Second}, token: token}
}

func (h *HTTP) authorize(req *http.Request) {
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

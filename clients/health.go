package clients

import (
	"context"
	"fmt"
	"net/http"
)

// Health pings a service's health endpoint. A nil return means the service
// answered 200 on /health.
func (h *HTTP) Health(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return err
	}
	h.authorize(req)

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health %s", resp.Status)
	}
	return nil
}

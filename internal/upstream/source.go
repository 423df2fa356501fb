// Package upstream fetches the raw tourism dataset envelope from the
// regional analytics API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tourstats/pkg/models"
)

// Client retrieves the dataset export from the analytics source. The
// transport enforces a bounded timeout so a hung upstream surfaces as
// an error instead of blocking the request forever.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string // app token, optional
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		BaseURL: baseURL,
		Token:   token,
	}
}

// Fetch downloads one envelope. Some deployments return the bare rows
// array instead of the wrapped form; both are accepted and the bare
// form is rewrapped so downstream code sees one shape.
func (c *Client) Fetch(ctx context.Context) (models.Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("X-App-Token", c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream: status %d: %s", resp.StatusCode, string(body))
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("upstream: decode: %w", err)
	}

	switch t := decoded.(type) {
	case map[string]any:
		return models.Envelope(t), nil
	case []any:
		return models.Envelope{"rows": t}, nil
	default:
		return nil, fmt.Errorf("upstream: unexpected payload type %T", decoded)
	}
}

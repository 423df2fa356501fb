// Package modeling is the boundary adapter to the out-of-process
// regression/GLM service. It builds column-oriented payloads and
// returns the remote response unchanged; no statistics are computed
// locally.
package modeling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteError carries the remote status and body text of a non-2xx
// modeling-service response.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("modeling service: status %d: %s", e.Status, e.Body)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// request is the column-oriented wire payload. Every X column must be
// the same length as Y; callers are responsible for alignment.
type request struct {
	Y         []float64            `json:"y"`
	X         map[string][]float64 `json:"X"`
	Family    string               `json:"family,omitempty"`
	ModelName string               `json:"model_name,omitempty"`
}

// LinearRegression fits an OLS model remotely and returns the raw
// response body.
func (c *Client) LinearRegression(ctx context.Context, modelName string, y []float64, x map[string][]float64) (json.RawMessage, error) {
	return c.post(ctx, "/linear-regression", request{Y: y, X: x, ModelName: modelName})
}

// GLM fits a generalized linear model remotely; family is "poisson" or
// "gaussian".
func (c *Client) GLM(ctx context.Context, modelName string, y []float64, x map[string][]float64, family string) (json.RawMessage, error) {
	return c.post(ctx, "/generalized-linear-model", request{Y: y, X: x, Family: family, ModelName: modelName})
}

func (c *Client) post(ctx context.Context, path string, payload request) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("modeling: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("modeling: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("modeling: request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if !json.Valid(respBody) {
		return nil, &RemoteError{Status: resp.StatusCode, Body: "malformed response body"}
	}
	return json.RawMessage(respBody), nil
}

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const generatePath = "/api/v1/generation/generate"

// HTTPClient calls a generation backend over plain HTTP. The backend exposes
// a single generate endpoint taking the prompt, the generation type and the
// recent conversation context.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

type generateRequest struct {
	Prompt         string   `json:"prompt"`
	GenerationType string   `json:"generation_type"`
	Context        []string `json:"context,omitempty"`
}

type generateResponse struct {
	Content string `json:"content"`
}

// NewHTTPClient builds a client for the backend at baseURL. The timeout
// bounds the whole call including connection setup and body read.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, request *Request) (*Result, error) {
	payload, err := json.Marshal(&generateRequest{
		Prompt:         request.Prompt,
		GenerationType: string(request.Kind),
		Context:        request.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "generation backend unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("generation backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "failed to decode generate response")
	}
	if decoded.Content == "" {
		return nil, fmt.Errorf("empty generation response")
	}

	return &Result{Content: decoded.Content}, nil
}

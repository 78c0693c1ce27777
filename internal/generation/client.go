// Package generation talks to the reply generation service.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/utils"
)

const (
	// DefaultBaseURL is where the local generation service listens.
	DefaultBaseURL = "http://localhost:8000"
	// Endpoint is the path of the generation call.
	Endpoint = "/generate_reply"

	contentType  = "application/json"
	maxLogLength = 200
)

// Client calls the generation service. Each Generate is a single attempt.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, logger *zap.Logger) *Client {
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		// No client timeout: a hung service stalls only the run that called it.
		HTTPClient: &http.Client{},
		logger:     logger,
	}
}

// Generate posts the request and returns the outcome. It never returns an
// error: every failure becomes a Failure outcome.
func (c *Client) Generate(ctx context.Context, req Request) Outcome {
	reply, err := c.post(ctx, req)
	if err != nil {
		c.logger.Warn("generation request failed", zap.Error(err))
		return Failure(err)
	}

	c.logger.Debug("generation response",
		zap.String("reason", reply.Reason),
		zap.String("reply_preview", utils.TruncateForLog(reply.Reply, maxLogLength)),
	)

	return Interpret(*reply)
}

func (c *Client) post(ctx context.Context, body Request) (*Reply, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	c.logger.Debug("make request", zap.String("url", url))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded struct {
		Reply
		Error string `json:"error"`
	}
	jsonErr := json.Unmarshal(data, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if jsonErr == nil && decoded.Error != "" {
			return nil, fmt.Errorf("bad status: %s: %s", resp.Status, decoded.Error)
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	if jsonErr != nil {
		return nil, fmt.Errorf("decode response: %w", jsonErr)
	}

	if decoded.Error != "" {
		return nil, fmt.Errorf("service error: %s", decoded.Error)
	}

	return &decoded.Reply, nil
}

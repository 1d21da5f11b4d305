package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 4 << 10

// HTTPClient makes REST calls to the Sightline server.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:5000").
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// StartSession sends POST /api/session/start.
func (c *HTTPClient) StartSession(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.post(ctx, "/api/session/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopSession sends POST /api/session/stop.
func (c *HTTPClient) StopSession(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.post(ctx, "/api/session/stop", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendVoiceCommand sends POST /api/voice/command with the given text.
func (c *HTTPClient) SendVoiceCommand(ctx context.Context, command string) (*VoiceCommandResponse, error) {
	var out VoiceCommandResponse
	if err := c.post(ctx, "/api/voice/command", VoiceCommandRequest{Command: command}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// post performs a POST and decodes a 2xx body into out. A 2xx body that is
// not valid JSON is logged and otherwise ignored: the HTTP status decides
// success. Non-2xx replies become *ApplicationError, failures to get a reply
// become *TransportError.
func (c *HTTPClient) post(ctx context.Context, path string, body, out interface{}) error {
	op := "POST " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &ApplicationError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			slog.Debug("undecodable response body", "op", op, "err", err)
		}
	}
	return nil
}

// errorMessage extracts the server's error text. Bodies without an
// {"error": ...} field fall back to the raw body, then the status text.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cc-d/open2fa/pkg/logger"
)

const (
	DefaultTimeout = 15 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 1 << 20
)

// Client talks to the remote /totps endpoint. Each call is a single request;
// failures are returned as *Error and never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
// It has no effect together with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a client for the API rooted at baseURL,
// e.g. "https://open2fa.liberfy.ai/api/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Push uploads totps in one batch and returns what the server reports as
// stored for publicID afterwards.
func (c *Client) Push(ctx context.Context, publicID string, totps []TOTP) ([]TOTP, error) {
	if totps == nil {
		totps = []TOTP{}
	}
	var out TOTPsPayload
	if err := c.do(ctx, http.MethodPost, publicID, TOTPsPayload{TOTPs: totps}, &out); err != nil {
		return nil, err
	}
	return out.TOTPs, nil
}

// List fetches every secret stored for publicID.
func (c *Client) List(ctx context.Context, publicID string) ([]TOTP, error) {
	var out TOTPsPayload
	if err := c.do(ctx, http.MethodGet, publicID, nil, &out); err != nil {
		return nil, err
	}
	return out.TOTPs, nil
}

// Delete asks the server to remove totps and returns the number of records it
// reports as deleted.
func (c *Client) Delete(ctx context.Context, publicID string, totps []TOTP) (int, error) {
	var out DeleteResponse
	if err := c.do(ctx, http.MethodDelete, publicID, TOTPsPayload{TOTPs: totps}, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) do(ctx context.Context, method, publicID string, in, out any) error {
	if publicID == "" {
		return ErrMissingPublicID
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Method: method, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+TOTPsPath, body)
	if err != nil {
		return &Error{Method: method, Err: err}
	}
	req.Header.Set(HeaderUserHash, publicID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "remote request failed",
			slog.String("method", method),
			logger.Error(err),
		)
		return &Error{Method: method, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Method: method, StatusCode: resp.StatusCode, Err: err}
	}

	c.log.DebugContext(ctx, "remote request",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		logger.PublicID(publicID),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return &Error{
			Method:     method,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Method:     method,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        errors.Join(ErrInvalidResponse, err),
		}
	}
	return nil
}

// Package ehclient talks to the gallery JSON API.
//
// Only the calls gtoken needs are implemented. Each call is a single POST
// of a JSON document naming the API method; the response is a JSON object
// that carries either the result or an "error" string.
package ehclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// MethodGalleryToken is the API method that maps a page token to a gallery token.
const MethodGalleryToken = "gtoken"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client is a gallery API client. The zero value is not usable; use New.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gtokenRequest struct {
	Method   string  `json:"method"`
	PageList [][]any `json:"pagelist"`
}

type gtokenResponse struct {
	TokenList []struct {
		Gid   int64  `json:"gid"`
		Token string `json:"token"`
	} `json:"tokenlist"`
	Error string `json:"error"`
}

// GalleryToken resolves the gallery token for page index page (zero-based)
// of gallery gid, given that page's ptoken.
func (c *Client) GalleryToken(ctx context.Context, gid int64, ptoken string, page int) (string, error) {
	body := gtokenRequest{
		Method: MethodGalleryToken,
		// The API numbers pages from 1.
		PageList: [][]any{{gid, ptoken, page + 1}},
	}

	var resp gtokenResponse
	if err := c.post(ctx, body, &resp); err != nil {
		return "", fmt.Errorf("gallery token for %d: %w", gid, err)
	}
	if resp.Error != "" {
		return "", &APIError{Method: MethodGalleryToken, Message: resp.Error}
	}
	if len(resp.TokenList) == 0 || resp.TokenList[0].Token == "" {
		return "", fmt.Errorf("gallery token for %d: %w", gid, ErrParse)
	}
	return resp.TokenList[0].Token, nil
}

func (c *Client) post(ctx context.Context, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "url", c.url, "error", err)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"url", c.url,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

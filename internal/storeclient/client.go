// Package storeclient talks to the document store's HTTP API.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// TransientIOError means the store could not be reached or failed on its
// side. The caller keeps its state and tries again on its next cycle.
type TransientIOError struct {
	Op         string
	StatusCode int // zero when the request never got a response
	Err        error
}

func (e *TransientIOError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: store returned %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// IsTransient reports whether err is or wraps a *TransientIOError.
func IsTransient(err error) bool {
	var te *TransientIOError
	return errors.As(err, &te)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Dataset string
	Proxy   string
	Timeout time.Duration
}

// Client reads and replaces the whole snapshot. It never merges.
type Client struct {
	endpoint string
	client   *http.Client
}

// New builds a client for the store at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid store url %q: scheme and host are required", opts.BaseURL)
	}
	base = base.JoinPath("api", "snapshot")
	if opts.Dataset != "" {
		q := base.Query()
		q.Set("dataset", opts.Dataset)
		base.RawQuery = q.Encode()
	}

	var transport http.RoundTripper = &http.Transport{}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Store client will not use a proxy.", opts.Proxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint: base.String(),
		client:   &http.Client{Transport: transport, Timeout: timeout},
	}, nil
}

type writeResponse struct {
	Success  bool   `json:"success"`
	LastSync int64  `json:"lastSync"`
	Error    string `json:"error"`
}

// Fetch reads the current document. When the store's copy lacks some
// collections the snapshot is still returned, defaulted, along with a
// *snapshot.MalformedSnapshotError.
func (c *Client) Fetch(ctx context.Context) (snapshot.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req, "fetch snapshot")
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	s, err := snapshot.Decode(body)
	if err != nil && !snapshot.IsMalformed(err) {
		return snapshot.Snapshot{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	return s, err
}

// Push replaces the stored document with s and returns the store's lastSync.
func (c *Client) Push(ctx context.Context, s snapshot.Snapshot) (int64, error) {
	payload, err := snapshot.Encode(s)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.write(req, "push snapshot")
}

// Clear empties one partition of the stored document.
func (c *Client) Clear(ctx context.Context, p snapshot.Partition) (int64, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("target", string(p))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	return c.write(req, "clear snapshot")
}

func (c *Client) write(req *http.Request, op string) (int64, error) {
	body, err := c.do(req, op)
	if err != nil {
		return 0, err
	}

	var resp writeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%s: failed to unmarshal response: %w", op, err)
	}
	if !resp.Success {
		return 0, fmt.Errorf("%s: store did not acknowledge the write", op)
	}
	return resp.LastSync, nil
}

// do returns the body of a 200 response. Network failures and 5xx are
// transient; any other status is the caller's fault and is returned as is.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransientIOError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientIOError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	reason := errorMessage(body)
	if resp.StatusCode >= 500 {
		return nil, &TransientIOError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(reason)}
	}
	return nil, fmt.Errorf("%s: store returned %d: %s", op, resp.StatusCode, reason)
}

func errorMessage(body []byte) string {
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return resp.Error
	}
	if len(body) == 0 {
		return "empty response"
	}
	return string(body)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenStore supplies and persists the bearer token pair. The refresh
// protocol itself is out of scope here; the client only needs somewhere
// to read tokens from and write re-issued ones to.
type TokenStore interface {
	Access() string
	Refresh() string
	Set(access, refresh string) error
	Clear() error
}

// Default request timeouts. Grading rides a slow AI backend and gets a
// much longer window than ordinary calls.
const (
	DefaultTimeout = 15 * time.Second
	GradeTimeout   = 60 * time.Second
)

// skipAuthRoutes matches routes that must never carry an Authorization
// header (they establish or renew the tokens themselves).
var skipAuthRoutes = regexp.MustCompile(`/auth/(login|register|signup|refresh)`)

// cacheBustRoutes matches GET routes that intermediaries like to cache.
var cacheBustRoutes = regexp.MustCompile(`/sessions|/auth/me|/profile`)

// Client is the authenticated HTTP client for the InterviewMon backend.
type Client struct {
	httpc   *http.Client
	base    string
	prefix  string
	tokens  TokenStore
	timeout time.Duration

	mu         sync.Mutex
	refreshing chan struct{}
}

// Options configure a Client.
type Options struct {
	// BaseURL is the backend origin, e.g. "https://api.interviewmon.app".
	BaseURL string
	// Prefix is the API path prefix, e.g. "/api". Normalized to a single
	// leading slash; empty disables prefixing.
	Prefix string
	// Tokens supplies bearer tokens. Nil means unauthenticated requests.
	Tokens TokenStore
	// Timeout overrides the default per-request timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	prefix := strings.Trim(strings.TrimSpace(opts.Prefix), "/")
	if prefix != "" {
		prefix = "/" + prefix
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &Client{
		httpc:   httpc,
		base:    base,
		prefix:  prefix,
		tokens:  opts.Tokens,
		timeout: timeout,
	}
}

// reqOpts are per-request overrides.
type reqOpts struct {
	timeout time.Duration
}

// do issues one JSON request and decodes the response into out (when
// non-nil). A 401 triggers a single-flight token refresh and one retry.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, opts reqOpts) error {
	timeout := opts.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	status, respBody, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.tokens != nil && c.tokens.Refresh() != "" {
		if err := c.ensureFresh(ctx); err != nil {
			return err
		}
		if c.tokens.Access() != "" {
			status, respBody, err = c.send(ctx, method, path, query, body)
			if err != nil {
				return err
			}
		}
	}

	if status < 200 || status > 299 {
		return &HTTPError{Status: status, Method: method, Path: path, Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	u := c.requestURL(path, method, query)

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil && !skipAuthRoutes.MatchString(path) {
		if at := c.tokens.Access(); at != "" {
			req.Header.Set("Authorization", "Bearer "+at)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	return resp.StatusCode, respBody, nil
}

// requestURL joins base, prefix, path and query, adding a cache buster to
// GETs on routes that upstream caches are known to hold on to.
func (c *Client) requestURL(path, method string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	p := path
	if c.prefix != "" && !strings.HasPrefix(p, c.prefix+"/") && p != c.prefix {
		p = c.prefix + p
	}

	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if method == http.MethodGet && cacheBustRoutes.MatchString(path) {
		q.Set("_ts", strconv.FormatInt(time.Now().UnixMilli(), 10))
	}

	u := c.base + p
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// ensureFresh re-issues the token pair at most once regardless of how many
// requests hit a 401 concurrently. Followers wait for the leader's attempt.
func (c *Client) ensureFresh(ctx context.Context) error {
	c.mu.Lock()
	ch := c.refreshing
	if ch == nil {
		ch = make(chan struct{})
		c.refreshing = ch
		go func() {
			c.refreshTokens()
			c.mu.Lock()
			c.refreshing = nil
			c.mu.Unlock()
			close(ch)
		}()
	}
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) refreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	u := c.requestURL("/auth/refresh", http.MethodPost, nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader("{}"))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Refresh-Token", c.tokens.Refresh())

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Warn("token refresh failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("token refresh rejected", "status", resp.StatusCode)
		if err := c.tokens.Clear(); err != nil {
			slog.Warn("clearing tokens failed", "error", err)
		}
		return
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("token refresh decode failed", "error", err)
		return
	}

	access := payload.AccessToken
	if access == "" {
		access = c.tokens.Access()
	}
	refresh := payload.RefreshToken
	if refresh == "" {
		refresh = c.tokens.Refresh()
	}
	if err := c.tokens.Set(access, refresh); err != nil {
		slog.Warn("persisting refreshed tokens failed", "error", err)
	}
}

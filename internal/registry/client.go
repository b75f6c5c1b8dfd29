// Package registry is a small crates.io API client used to pick default
// crate versions and to search for crates by name.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://crates.io/api/v1"
	DefaultUserAgent = "rsdoc/0.1.0 (https://github.com/jcdickinson/rsdoc)"
	// DefaultInterval is the minimum spacing between requests; crates.io
	// asks crawlers for at most one request per second.
	DefaultInterval = time.Second
	DefaultTimeout  = 10 * time.Second

	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

var (
	// ErrNotFound is returned when crates.io has no such crate.
	ErrNotFound = errors.New("crate not found on crates.io")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	ErrNetwork = errors.New("crates.io request failed")
)

// Error carries the failing request and matches ErrNotFound or ErrNetwork.
type Error struct {
	Kind   error
	Crate  string // empty for searches
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ErrNotFound:
		return fmt.Sprintf("crate %s not found on crates.io", e.Crate)
	case e.Status != 0:
		return fmt.Sprintf("crates.io returned HTTP %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

// NotFound reports whether the crate does not exist.
func (e *Error) NotFound() bool { return e.Kind == ErrNotFound }

// Crate is one crates.io search hit.
type Crate struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	MaxVersion       string `json:"max_version"`
	MaxStableVersion string `json:"max_stable_version,omitempty"`
	Downloads        int64  `json:"downloads"`
}

// Client talks to the crates.io API. Requests are spaced by a shared rate
// limiter. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithInterval sets the minimum time between requests. Zero disables
// throttling.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		limiter:   rate.NewLimiter(rate.Every(DefaultInterval), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultVersion returns the newest stable version of a crate, or the newest
// version of any kind when no stable release exists.
func (c *Client) DefaultVersion(ctx context.Context, name string) (string, error) {
	var resp struct {
		Crate Crate `json:"crate"`
	}
	if err := c.get(ctx, "/crates/"+url.PathEscape(name), name, &resp); err != nil {
		return "", err
	}
	if resp.Crate.MaxStableVersion != "" {
		return resp.Crate.MaxStableVersion, nil
	}
	return resp.Crate.MaxVersion, nil
}

// Search returns crates matching query in crates.io relevance order.
// limit defaults to 20 and is capped at 100.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Crate, error) {
	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("per_page", strconv.Itoa(limit))

	var resp struct {
		Crates []Crate `json:"crates"`
	}
	if err := c.get(ctx, "/crates?"+q.Encode(), "", &resp); err != nil {
		return nil, err
	}
	return resp.Crates, nil
}

func (c *Client) get(ctx context.Context, path, crate string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: ErrNetwork, Crate: crate, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &Error{Kind: ErrNetwork, Crate: crate, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: ErrNetwork, Crate: crate, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Kind: ErrNotFound, Crate: crate, Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &Error{
			Kind:   ErrNetwork,
			Crate:  crate,
			Status: resp.StatusCode,
			Err:    errors.New(strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &Error{Kind: ErrNetwork, Crate: crate, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

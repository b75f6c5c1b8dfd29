package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	DefaultBaseURL      = "https://docs.rs"
	DefaultUserAgent    = "rsdoc/0.1.0 (https://github.com/jcdickinson/rsdoc)"
	DefaultFetchTimeout = 60 * time.Second

	// driftWarnThreshold is the format version distance beyond which a
	// successfully decoded payload is logged at warn instead of info.
	driftWarnThreshold = 2
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// CrateFetcher retrieves and decodes rustdoc JSON for a crate version.
type CrateFetcher interface {
	Fetch(ctx context.Context, name, version string) (*RustdocCrate, error)
}

var _ CrateFetcher = (*Fetcher)(nil)

// Fetcher downloads rustdoc JSON from docs.rs.
// It performs a single attempt per call; callers own retries and deadlines.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the docs.rs origin, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(u, "/")
	}
}

// WithUserAgent sets the User-Agent header sent to docs.rs.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTimeout sets the HTTP client timeout. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithLogger sets the logger used for format drift warnings.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// URL returns the rustdoc JSON endpoint for a crate version.
func (f *Fetcher) URL(name, version string) string {
	return fmt.Sprintf("%s/crate/%s/%s/json.gz", f.baseURL, url.PathEscape(name), url.PathEscape(version))
}

// Fetch downloads and decodes rustdoc JSON. The version "latest" is resolved
// by docs.rs. Errors are always *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, name, version string) (*RustdocCrate, error) {
	fail := func(kind error, err error) *FetchError {
		return &FetchError{Kind: kind, Crate: name, Version: version, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(name, version), nil)
	if err != nil {
		return nil, fail(ErrTransport, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	// Compression is detected from the payload bytes, not negotiated.
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fail(ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fail(ErrNotFound, nil)
	case resp.StatusCode == http.StatusNotAcceptable:
		return nil, fail(ErrDocsUnavailable, nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		e := fail(ErrTransport, fmt.Errorf("HTTP %d", resp.StatusCode))
		e.Status = resp.StatusCode
		return nil, e
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(ErrTransport, fmt.Errorf("reading response body: %w", err))
	}

	data, err := decompress(body)
	if err != nil {
		return nil, fail(ErrDecompress, err)
	}

	return f.decode(data, name, version)
}

func (f *Fetcher) decode(data []byte, name, version string) (*RustdocCrate, error) {
	actual, probed := probeFormatVersion(data)

	crate, err := Decode(data)
	if err != nil {
		if probed && actual != FormatVersion {
			return nil, &FetchError{
				Kind:     ErrFormatMismatch,
				Crate:    name,
				Version:  version,
				Expected: FormatVersion,
				Actual:   actual,
				Err:      err,
			}
		}
		return nil, &FetchError{Kind: ErrParse, Crate: name, Version: version, Err: err}
	}

	if crate.FormatVersion != FormatVersion {
		level := slog.LevelInfo
		if drift := crate.FormatVersion - FormatVersion; drift > driftWarnThreshold || drift < -driftWarnThreshold {
			level = slog.LevelWarn
		}
		f.logger.Log(context.Background(), level, "rustdoc format version differs from supported version",
			"crate", name,
			"version", version,
			"format_version", crate.FormatVersion,
			"supported", FormatVersion,
		)
	}
	return crate, nil
}

// decompress inflates gzip payloads identified by their magic bytes, as
// served for json.gz. Zstd framing is also recognized, which goes beyond
// that contract; docs.rs mirrors may serve json.zst bodies. Anything else
// is returned unchanged.
func decompress(body []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(body, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading gzip stream: %w", err)
		}
		return data, nil

	case bytes.HasPrefix(body, zstdMagic):
		r, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading zstd stream: %w", err)
		}
		return data, nil
	}
	return body, nil
}

// IsNotFound reports whether err means the crate, version, or its JSON docs
// do not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDocsUnavailable)
}

// Package fetch loads catalog sources and playlists from local paths and
// http(s) URLs for the CLI and MCP server.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/erraggy/tvmerge"
	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/mergeerrors"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes caps the size of a fetched or read document.
const DefaultMaxBytes int64 = 10 << 20

// ErrTooLarge is returned when content exceeds the size limit.
var ErrTooLarge = errors.New("content exceeds size limit")

// Fetcher reads documents from disk or over HTTP. It is safe for
// concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for URLs.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header. Empty keeps the default.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes caps content size. Zero or less keeps the default.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// New creates a Fetcher that reads local files and fetches URLs with a
// DefaultTimeout client.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: tvmerge.UserAgent(),
		maxBytes:  DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Read returns the content at location, an http(s) URL or a local path.
func (f *Fetcher) Read(ctx context.Context, location string) ([]byte, error) {
	if aggregator.IsRemote(location) {
		return f.fetchURL(ctx, location)
	}
	file, err := os.Open(location) //nolint:gosec // G304 - path is user-provided input
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return f.readLimited(file)
}

// Resolve returns the content at url as text. It lets a Fetcher serve as
// the pipeline's playlist resolver.
func (f *Fetcher) Resolve(ctx context.Context, url string) (string, error) {
	data, err := f.Read(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Source reads and decodes the document at location.
func (f *Fetcher) Source(ctx context.Context, location string) (aggregator.Source, error) {
	data, err := f.Read(ctx, location)
	if err != nil {
		return aggregator.Source{}, err
	}
	return Decode(location, data)
}

// Decode parses data as a JSON or YAML source named name.
func Decode(name string, data []byte) (aggregator.Source, error) {
	doc, err := document.Parse(data)
	if err != nil {
		var pe *mergeerrors.ParseError
		if errors.As(err, &pe) && pe.Source == "" {
			pe.Source = name
		}
		return aggregator.Source{}, fmt.Errorf("fetch: %w", err)
	}
	return aggregator.Source{Name: name, Document: doc}, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // G704 - URL is user-provided input
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to fetch URL: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to read content: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("fetch: %w (%d bytes)", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

// Package fetch retrieves background image bytes for a URL.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"emojiart/internal/domain"
)

var log = logging.Logger("emojiart/fetch")

// DefaultMaxBytes caps the size of a fetched background
const DefaultMaxBytes = 32 << 20

// Options configures a Fetcher
type Options struct {
	// Timeout bounds a single fetch; zero means no timeout
	Timeout time.Duration
	// MaxBytes rejects larger bodies; zero means DefaultMaxBytes
	MaxBytes int64
	// Breaker short-circuits fetches after BreakerFailures consecutive
	// failures until BreakerCooldown has passed
	Breaker         bool
	BreakerFailures uint32
	BreakerCooldown time.Duration
	// Client overrides the pooled HTTP client
	Client *http.Client
}

// DefaultOptions returns options with no timeout and no breaker
func DefaultOptions() *Options {
	return &Options{
		MaxBytes:        DefaultMaxBytes,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Fetcher implements domain.ImageFetcher for http, https and file URLs
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	breaker  *gobreaker.CircuitBreaker
}

var _ domain.ImageFetcher = (*Fetcher)(nil)

// New creates a fetcher; nil options mean DefaultOptions
func New(opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}

	// a caller supplied client is copied so the timeout stays local
	var client *http.Client
	if opts.Client != nil {
		c := *opts.Client
		client = &c
	} else {
		client = cleanhttp.DefaultPooledClient()
	}
	client.Timeout = opts.Timeout

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f := &Fetcher{
		client:   client,
		maxBytes: maxBytes,
	}

	if opts.Breaker {
		failures := opts.BreakerFailures
		if failures == 0 {
			failures = 5
		}
		f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "background-fetch",
			Timeout: opts.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnw("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return f
}

// Fetch returns the bytes behind rawURL. Every failure wraps domain.ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.breaker == nil {
		return f.fetch(ctx, rawURL)
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetch(ctx, rawURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Wrapf(domain.ErrFetch, "%s: %v", rawURL, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "parse %q: %v", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "file":
		return f.fetchFile(u)
	default:
		return nil, errors.Wrapf(domain.ErrFetch, "unsupported scheme %q", u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "build request: %v", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "get %s: %v", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(domain.ErrFetch, "get %s: unexpected status %s", u, resp.Status)
	}

	return f.readLimited(resp.Body, u.String())
}

func (f *Fetcher) fetchFile(u *url.URL) ([]byte, error) {
	file, err := os.Open(u.Path)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "open %s: %v", u.Path, err)
	}
	defer file.Close()

	return f.readLimited(file, u.String())
}

func (f *Fetcher) readLimited(r io.Reader, source string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFetch, "read %s: %v", source, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, errors.Wrapf(domain.ErrFetch, "%s exceeds %d bytes", source, f.maxBytes)
	}

	log.Debugw("fetched background", "url", source, "bytes", len(data))
	return data, nil
}

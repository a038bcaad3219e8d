// Package fetch downloads article pages and maintains the on-disk HTML cache.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"newsmood/internal/config"
	"newsmood/internal/logger"
)

// Fetch errors.
var (
	ErrNetwork          = errors.New("network failure")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrDecode           = errors.New("response body not decodable as utf-8")
)

// replacementChar substitutes any byte sequence that survives decoding
// without being valid UTF-8.
const replacementChar = "�"

// Fetcher retrieves article pages over HTTP. Every URL gets exactly one
// attempt per run; failures are reported, not retried.
type Fetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	log          *logger.Logger
	userAgent    string
	strictDecode bool
	maxBodyBytes int64
}

// NewFetcher creates a fetcher from the pipeline configuration.
func NewFetcher(cfg *config.Config, log *logger.Logger) *Fetcher {
	fc := cfg.Pipeline.Fetch

	var limiter *rate.Limiter
	if fc.RatePerSec > 0 {
		burst := int(fc.RatePerSec)
		if burst < 1 {
			burst = 1
		}

		limiter = rate.NewLimiter(rate.Limit(fc.RatePerSec), burst)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: fc.GetTimeout(),
		},
		limiter:      limiter,
		log:          log,
		userAgent:    fc.UserAgent,
		strictDecode: fc.StrictDecode,
		maxBodyBytes: int64(cfg.Advanced.BufferSizeKb) * 1024,
	}
}

// Fetch downloads one page and returns its body decoded to UTF-8. A non-2xx
// status, a transport error, or (under strict decoding) an undecodable body
// all fail the fetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrNetwork, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrNetwork, rawURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	f.log.Debug("Fetching URL", "url", rawURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, rawURL)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}

	return f.decode(raw, resp.Header.Get("Content-Type"))
}

// decode converts a response body to UTF-8, honoring charset hints from the
// Content-Type header and the document itself. In lenient mode an
// untranslatable body falls back to byte-preserving substitution.
func (f *Fetcher) decode(raw []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		if f.strictDecode {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}

		f.log.Warn("Charset detection failed, substituting invalid bytes", "error", err)

		return []byte(strings.ToValidUTF8(string(raw), replacementChar)), nil
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		if f.strictDecode {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}

		f.log.Warn("Charset conversion failed, substituting invalid bytes", "error", err)

		return []byte(strings.ToValidUTF8(string(raw), replacementChar)), nil
	}

	// Guard against converters that emit invalid sequences.
	return []byte(strings.ToValidUTF8(string(decoded), replacementChar)), nil
}

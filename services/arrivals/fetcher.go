package arrivals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	defaultFetchTimeout = time.Second * 15
	defaultMaxBodyBytes = 8 << 20
)

// FetchError is returned when the map page could not be retrieved.
// It is terminal for a query; the retriever never retries it.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw content of a map page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher retrieves map pages over HTTP. It is safe for concurrent use.
type HTTPFetcher struct {
	logger *zap.Logger
	client *http.Client

	userAgent    string
	maxBodyBytes int64
}

// NewHTTPFetcher creates a fetcher using the supplied settings.
func NewHTTPFetcher(logger *zap.Logger, config FetchConfig) *HTTPFetcher {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	maxBodyBytes := config.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	return &HTTPFetcher{
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent:    config.UserAgent,
		maxBodyBytes: maxBodyBytes,
	}
}

// Fetch performs a single GET of the supplied URL and returns the body decoded to UTF-8.
// All failures are returned as a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Warn("error creating new request",
			zap.String("url", url),
			zap.Error(err),
		)
		return "", &FetchError{URL: url, Err: err}
	}
	if len(f.userAgent) > 0 {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("error performing request",
			zap.String("url", url),
			zap.Error(err),
		)
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		f.logger.Info("received non-OK response",
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
		)
		return "", &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %q", resp.Status),
		}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		f.logger.Warn("error decoding body",
			zap.String("url", url),
			zap.String("content_type", resp.Header.Get("Content-Type")),
			zap.Error(err),
		)
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		f.logger.Warn("error reading body",
			zap.String("url", url),
			zap.Error(err),
		)
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	return string(data), nil
}

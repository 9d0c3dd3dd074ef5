// Package fetcher downloads published-to-web spreadsheet exports over
// HTTP(S). It only fetches bytes; format validation beyond an HTML sanity
// check is the parser's job.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Reason distinguishes the two user-facing fetch failure classes.
type Reason string

const (
	// ReasonUnreachable covers network failures and non-OK status codes.
	ReasonUnreachable Reason = "unreachable"
	// ReasonNotSpreadsheet covers reachable URLs that served something
	// other than a tabular export, typically an HTML page.
	ReasonNotSpreadsheet Reason = "not_spreadsheet"
)

// FetchError is a failed remote download.
type FetchError struct {
	URL    string
	Reason Reason
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads spreadsheet bytes with a bounded size and timeout.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// New creates a fetcher. maxBytes caps the download size; zero means a
// 20 MiB default.
func New(timeout time.Duration, maxBytes int64, logger *slog.Logger) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch downloads the resource and returns its bytes plus a filename hint
// derived from the URL path, used for format detection downstream.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Reason: ReasonUnreachable, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Reason: ReasonUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &FetchError{
			URL:    rawURL,
			Reason: ReasonUnreachable,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Reason: ReasonUnreachable, Err: err}
	}

	if looksLikeHTML(resp.Header.Get("Content-Type"), data) {
		return nil, "", &FetchError{
			URL:    rawURL,
			Reason: ReasonNotSpreadsheet,
			Err:    fmt.Errorf("server returned an HTML page, not a spreadsheet export"),
		}
	}

	f.logger.Info("spreadsheet fetched", "url", rawURL, "bytes", len(data))
	return data, filenameHint(rawURL), nil
}

// looksLikeHTML rejects responses that are clearly web pages. Published
// exports are served as CSV or binary workbook payloads.
func looksLikeHTML(contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(data))
	if len(head) > 64 {
		head = head[:64]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func filenameHint(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}

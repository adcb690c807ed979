// Package source fetches the raw hechos document from an http(s) URL, a
// local file or an S3 object.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// ErrUnsupportedScheme is returned by New for URLs it cannot fetch.
var ErrUnsupportedScheme = errors.New("unsupported data URL scheme")

// ErrDocumentTooLarge is returned when a document exceeds maxDocumentBytes.
var ErrDocumentTooLarge = errors.New("document too large")

// maxDocumentBytes bounds how much of a remote document is read.
var maxDocumentBytes int64 = 64 << 20

// Fetcher returns the raw document bytes.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// New picks a fetcher for rawURL: http and https URLs go to HTTPClient,
// s3://bucket/key to S3Fetcher, and file:// URLs or bare paths to
// FileFetcher.
func New(ctx context.Context, rawURL string, timeout time.Duration, logger *slog.Logger) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse data URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPClient(rawURL, timeout, logger), nil
	case "s3":
		return NewS3Fetcher(ctx, u.Host, strings.TrimPrefix(u.Path, "/"), logger)
	case "file":
		return NewFileFetcher(u.Path), nil
	case "":
		return NewFileFetcher(rawURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// readDocument reads r up to maxDocumentBytes. A longer body is an error
// rather than a truncated document.
func readDocument(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxDocumentBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, maxDocumentBytes)
	}
	return data, nil
}

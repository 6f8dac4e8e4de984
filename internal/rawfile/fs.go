// Copyright (c) 2024 Neomantra Corp
//
// Filesystem abstraction for raw input files: local paths open directly,
// http(s) URIs download through a retrying client. Adapted from dbn-go's
// internal/tui/downloads.go retryablehttp usage, generalized from a
// TUI progress-reporting download into a plain io.ReadCloser source for
// the ingestion pipeline.

package rawfile

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// FS opens a raw input file by its catalog-relative or absolute URI.
type FS interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

///////////////////////////////////////////////////////////////////////////////

// LocalFS opens files directly from the local filesystem.
type LocalFS struct{}

func (LocalFS) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ioOpenError{Path: path, Err: err}
	}
	return f, nil
}

///////////////////////////////////////////////////////////////////////////////

// HTTPFS downloads files over http(s) with bounded retries, for raw files
// staged behind a URL instead of on local disk.
type HTTPFS struct {
	RetryMax int
}

func NewHTTPFS() *HTTPFS {
	return &HTTPFS{RetryMax: 5}
}

func (h *HTTPFS) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return nil, &ioOpenError{Path: uri, Err: err}
	}
	client := retryablehttp.NewClient()
	client.RetryMax = h.RetryMax
	client.Logger = log.New(io.Discard, "", log.LstdFlags)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &ioOpenError{Path: uri, Err: err}
	}
	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, &ioOpenError{Path: uri, Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}
	return resp.Body, nil
}

type ioOpenError struct {
	Path string
	Err  error
}

func (e *ioOpenError) Error() string { return fmt.Sprintf("open %s: %s", e.Path, e.Err.Error()) }
func (e *ioOpenError) Unwrap() error { return e.Err }

///////////////////////////////////////////////////////////////////////////////

// ForURI picks LocalFS or HTTPFS by the URI's scheme.
func ForURI(uri string) FS {
	if u, err := url.Parse(uri); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return NewHTTPFS()
	}
	return LocalFS{}
}

// IsRemote reports whether uri names an http(s) resource rather than a
// local path.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

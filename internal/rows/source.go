// Package rows supplies catalog rows from external CSV sources and watches
// local sources for changes.
package rows

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Source provides the catalog's raw rows of string cells. The core only
// requires "sequence of rows of strings"; where the rows come from is the
// source's concern.
type Source interface {
	Fetch(ctx context.Context) ([][]string, error)
}

// File reads rows from a local CSV file.
type File struct {
	Path string
}

// Fetch reads and decodes the whole file.
func (f File) Fetch(_ context.Context) ([][]string, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("rows: open %s: %w", f.Path, err)
	}
	defer fh.Close()

	out, err := decode(fh)
	if err != nil {
		return nil, fmt.Errorf("rows: decode %s: %w", f.Path, err)
	}
	return out, nil
}

// HTTP fetches rows from a remote CSV endpoint.
type HTTP struct {
	URL    string
	Client *http.Client
}

// Fetch downloads and decodes the remote CSV. Transient failures are the
// caller's problem; no retries happen here.
func (h HTTP) Fetch(ctx context.Context) ([][]string, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("rows: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rows: fetch %s: %w", h.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rows: fetch %s: unexpected status %d", h.URL, resp.StatusCode)
	}

	out, err := decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rows: decode %s: %w", h.URL, err)
	}
	return out, nil
}

// decode reads CSV rows without enforcing a fixed column count; short rows
// are the catalog importer's concern.
func decode(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

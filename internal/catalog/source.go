package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Source yields the raw catalog document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// StatusError reports a non-success HTTP response from a remote source.
type StatusError struct {
	URL  string
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: %s returned status %d", e.URL, e.Code)
}

// ErrMalformed wraps catalog documents that are not valid JSON.
var ErrMalformed = errors.New("catalog: malformed document")

// NewSource picks a source for uri: http(s) URLs are fetched with client
// (http.DefaultClient when nil), anything else is read from the filesystem.
func NewSource(uri string, client *http.Client) Source {
	uri = strings.TrimSpace(uri)
	if u, err := url.Parse(uri); err == nil {
		switch u.Scheme {
		case "http", "https":
			if client == nil {
				client = &http.Client{Timeout: 30 * time.Second}
			}
			return &HTTPSource{URL: uri, Client: client}
		case "file":
			return FileSource(u.Path)
		}
	}
	return FileSource(uri)
}

// HTTPSource fetches the catalog document over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Open issues a single GET request. Non-2xx responses are reported as *StatusError.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &StatusError{URL: s.URL, Code: resp.StatusCode}
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads the catalog document from a local path.
type FileSource string

// Open opens the file.
func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(string(s))
}

func (s FileSource) String() string { return string(s) }

type document struct {
	Products []Product `json:"products"`
}

// Decode parses a catalog document. A document without a products key
// decodes to an empty, non-nil collection.
func Decode(r io.Reader) ([]Product, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Products == nil {
		return []Product{}, nil
	}
	return doc.Products, nil
}

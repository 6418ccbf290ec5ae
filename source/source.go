// Package source fetches the document the overlay edits. A location is an
// http(s) URL, a file:// URL or a plain path.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var ErrLoad = errors.New("source: cannot load document")

// MaxSize bounds the bytes read from any location.
const MaxSize = 256 << 20

var pdfMagic = []byte("%PDF-")

// Loader reads documents. The zero value uses http.DefaultClient.
type Loader struct {
	Client *http.Client
}

// Load reads location with a default Loader.
func Load(ctx context.Context, location string) ([]byte, error) {
	return Loader{}.Load(ctx, location)
}

func (l Loader) Load(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrLoad)
	}

	var (
		data []byte
		err  error
	)
	u, perr := url.Parse(location)
	switch {
	case perr == nil && (u.Scheme == "http" || u.Scheme == "https"):
		data, err = l.fetch(ctx, u.String())
	case perr == nil && u.Scheme == "file":
		data, err = readFile(u.Path)
	default:
		data, err = readFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, location, err)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: %s: not a PDF document", ErrLoad, location)
	}
	return data, nil
}

func (l Loader) fetch(ctx context.Context, u string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readAll(resp.Body)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readAll(f)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("document larger than %d bytes", MaxSize)
	}
	return data, nil
}

// WithTimeout returns a Loader whose HTTP client gives up after d.
func WithTimeout(d time.Duration) Loader {
	return Loader{Client: &http.Client{Timeout: d}}
}

package korloc

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"
)

//go:embed korloc-data
var embeddedData embed.FS

// Paths of the shipped data files, relative to the working directory for
// overrides and to the embedded filesystem otherwise.
const (
	DistrictsFile   = "korloc-data/districts.json"
	CoordinatesFile = "korloc-data/coordinates.json"
)

// Source loads the raw gazetteer: an ordered list of place-name paths.
// Order is significant; it decides ties in search results. Entries are used
// as-is for ids, so padding is kept; only blank entries and repeats are dropped.
type Source interface {
	Load(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]string, error)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) ([]string, error) { return f(ctx) }

// StaticSource serves a fixed in-memory gazetteer.
type StaticSource []string

// Load returns a copy of s.
func (s StaticSource) Load(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// FileSource reads a JSON array of paths from disk. Files ending in ".bz2"
// or ".gz" are decompressed transparently.
type FileSource string

// Load reads and decodes the file.
func (p FileSource) Load(context.Context) ([]string, error) {
	fh, err := os.Open(string(p))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	defer fh.Close()

	r, cleanup, err := decompress(string(p), fh)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return decodeGazetteer(r)
}

// HTTPSource fetches a JSON array of paths from URL.
type HTTPSource struct {
	URL    string
	Client *http.Client // nil uses a client with a 30s timeout
}

// httpClient is the shared HTTP client used when HTTPSource.Client is nil.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Load performs a GET and decodes the body. Non-200 responses are errors.
func (h HTTPSource) Load(ctx context.Context) ([]string, error) {
	client := h.Client
	if client == nil {
		client = httpClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", h.URL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", h.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP GET %s: status %d", h.URL, resp.StatusCode)
	}

	r, cleanup, err := decompress(h.URL, resp.Body)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return decodeGazetteer(r)
}

// EmbeddedSource returns the gazetteer shipped with the package. A file at
// DistrictsFile (or DistrictsFile+".bz2") under the working directory takes
// precedence, so freshly generated data can be tried without rebuilding.
func EmbeddedSource() Source {
	return SourceFunc(func(context.Context) ([]string, error) {
		r, cleanup, err := openDataFile(DistrictsFile)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		return decodeGazetteer(r)
	})
}

// EmbeddedCoordinates loads CoordinatesFile the same way EmbeddedSource loads
// the gazetteer.
func EmbeddedCoordinates() (CoordinateTable, error) {
	r, cleanup, err := openDataFile(CoordinatesFile)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return LoadCoordinates(r)
}

// openDataFile opens a shipped data file, preferring a bzip2-compressed
// variant, and a copy in the working directory over the embedded one.
func openDataFile(name string) (io.Reader, func() error, error) {
	var err error
	for _, candidate := range []string{name + ".bz2", name} {
		var fh fs.File
		if fh, err = openOverride(candidate); err != nil {
			continue
		}
		r, cleanup, err := decompress(candidate, fh)
		if err != nil {
			fh.Close()
			return nil, nil, err
		}
		return r, func() error {
			cleanup()
			return fh.Close()
		}, nil
	}
	return nil, nil, fmt.Errorf("opening %s: %w", name, err)
}

// openOverride opens name from the working directory, falling back to the
// embedded filesystem.
func openOverride(name string) (fs.File, error) {
	if fh, err := os.Open(name); err == nil {
		return fh, nil
	}
	return embeddedData.Open(name)
}

// decompress wraps r according to the extension of name.
func decompress(name string, r io.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch {
	case strings.HasSuffix(name, ".bz2"):
		return bzip2.NewReader(r), noop, nil
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return r, noop, nil
	}
}

func decodeGazetteer(r io.Reader) ([]string, error) {
	var entries []string
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding gazetteer: %w", err)
	}
	return entries, nil
}

package loader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/h2non/filetype"
)

var (
	// ErrNotImage is returned when fetched bytes are not a recognised image format.
	ErrNotImage = errors.New("loader: not an image")

	// ErrUnsupportedSource is returned when the base location uses an unknown scheme.
	ErrUnsupportedSource = errors.New("loader: unsupported source")
)

// LoaderBackendType identifies where assets are read from.
type LoaderBackendType int

const (
	// BackendTypeFile reads assets from the local filesystem.
	BackendTypeFile LoaderBackendType = iota
	// BackendTypeHTTP fetches assets over HTTP(S).
	BackendTypeHTTP
	// BackendTypeMemory serves assets from an in-memory map.
	BackendTypeMemory
)

func (t LoaderBackendType) String() string {
	switch t {
	case BackendTypeFile:
		return "file"
	case BackendTypeHTTP:
		return "http"
	case BackendTypeMemory:
		return "memory"
	default:
		return fmt.Sprintf("LoaderBackendType(%d)", int(t))
	}
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	base         string
	imagesPrefix string
	maxDimension int

	backendType LoaderBackendType
	backend     loaderBackend
	memory      map[string][]byte

	logger *slog.Logger
}

// Loader reads the image list and decodes image textures. The source (filesystem, HTTP or memory)
// is hidden behind a backend chosen from the base location.
type Loader interface {
	// FetchList reads a newline-delimited list of image identifiers. Lines are trimmed and empty
	// lines are dropped; order is preserved.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - name: the list resource, relative to the base location
	//
	// Returns:
	//   - []string: the identifiers in file order
	//   - error: error if the list cannot be read
	FetchList(ctx context.Context, name string) ([]string, error)

	// Fetch reads a raw resource relative to the base location.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - name: the resource name
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: error if the resource cannot be read
	Fetch(ctx context.Context, name string) ([]byte, error)

	// LoadTexture fetches an image from the images prefix, checks that it is an image and
	// decodes it to RGBA staging data.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - file: image identifier from the list
	//
	// Returns:
	//   - common.TextureStagingData: decoded RGBA pixels
	//   - error: ErrNotImage for non-image data, or a wrapped fetch/decode error
	LoadTexture(ctx context.Context, file string) (common.TextureStagingData, error)

	// Base returns the base location assets are resolved against.
	//
	// Returns:
	//   - string: the base location
	Base() string

	// BackendType returns the backend in use.
	//
	// Returns:
	//   - LoaderBackendType: the backend type
	BackendType() LoaderBackendType
}

var _ Loader = &loader{}

// NewLoader creates a Loader for the given base location. A base starting with http:// or
// https:// uses the HTTP backend, a plain path or file:// URL uses the filesystem backend.
// WithMemoryAssets switches to the in-memory backend regardless of base.
//
// Parameters:
//   - base: the base path or URL
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the configured loader
//   - error: ErrUnsupportedSource if the base scheme is not recognised
func NewLoader(base string, options ...LoaderBuilderOption) (Loader, error) {
	l := &loader{
		mu:           sync.RWMutex{},
		base:         base,
		maxDimension: 4096,
		logger:       slog.Default(),
	}
	for _, option := range options {
		option(l)
	}

	if l.memory != nil {
		l.backendType = BackendTypeMemory
		l.backend = newMemoryLoaderBackend(l.memory)
		return l, nil
	}

	backendType, err := resolveBackendType(base)
	if err != nil {
		return nil, err
	}
	l.backendType = backendType
	switch backendType {
	case BackendTypeHTTP:
		l.backend = newHTTPLoaderBackend(base)
	default:
		fb, err := newFileLoaderBackend(strings.TrimPrefix(base, "file://"))
		if err != nil {
			return nil, err
		}
		l.backend = fb
	}
	return l, nil
}

// resolveBackendType selects a backend from the scheme of the base location.
func resolveBackendType(base string) (LoaderBackendType, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// no scheme, or a Windows drive letter
		return BackendTypeFile, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return BackendTypeHTTP, nil
	case "file":
		return BackendTypeFile, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedSource, u.Scheme)
	}
}

func (l *loader) FetchList(ctx context.Context, name string) ([]string, error) {
	data, err := l.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image list %q: %w", name, err)
	}
	return ParseList(bytes.NewReader(data))
}

// ParseList splits a newline-delimited list into trimmed, non-empty identifiers.
//
// Parameters:
//   - r: the list contents
//
// Returns:
//   - []string: the identifiers in order
//   - error: error if reading fails
func ParseList(r io.Reader) ([]string, error) {
	var files []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		files = append(files, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image list: %w", err)
	}
	return files, nil
}

func (l *loader) Fetch(ctx context.Context, name string) ([]byte, error) {
	l.mu.RLock()
	backend := l.backend
	l.mu.RUnlock()

	rc, err := backend.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	return data, nil
}

func (l *loader) LoadTexture(ctx context.Context, file string) (common.TextureStagingData, error) {
	l.mu.RLock()
	name := joinName(l.imagesPrefix, file)
	maxDim := l.maxDimension
	l.mu.RUnlock()

	data, err := l.Fetch(ctx, name)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	if !filetype.IsImage(data) {
		return common.TextureStagingData{}, fmt.Errorf("%w: %q", ErrNotImage, file)
	}

	kind, _ := filetype.Match(data)
	tex, err := common.DecodeTexture(data, maxDim)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to decode %q (%s): %w", file, kind.MIME.Value, err)
	}
	l.logger.Debug("texture decoded", "file", file, "mime", kind.MIME.Value, "width", tex.Width, "height", tex.Height)
	return tex, nil
}

func (l *loader) Base() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base
}

func (l *loader) BackendType() LoaderBackendType {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.backendType
}

// joinName joins a prefix and a name with a single slash.
func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(name, "/")
}

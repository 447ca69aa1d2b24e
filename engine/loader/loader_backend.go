package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// loaderBackend opens named resources relative to a base location. Concrete implementations
// cover the filesystem, HTTP and an in-memory map.
type loaderBackend interface {
	// Open returns a reader for the named resource. The caller closes it.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - name: resource name relative to the backend's base
	//
	// Returns:
	//   - io.ReadCloser: the resource contents
	//   - error: error if the resource cannot be opened
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// fileLoaderBackend reads from a directory on disk.
type fileLoaderBackend struct {
	root string
}

func newFileLoaderBackend(root string) (*fileLoaderBackend, error) {
	expanded, err := homedir.Expand(root)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", root, err)
	}
	return &fileLoaderBackend{root: expanded}, nil
}

func (b *fileLoaderBackend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(filepath.ToSlash(name)) {
		return nil, fmt.Errorf("invalid resource name %q", name)
	}
	f, err := os.Open(filepath.Join(b.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", name, err)
	}
	return f, nil
}

// httpLoaderBackend fetches from a base URL.
type httpLoaderBackend struct {
	base   string
	client *http.Client
}

func newHTTPLoaderBackend(base string) *httpLoaderBackend {
	return &httpLoaderBackend{
		base:   strings.TrimSuffix(base, "/"),
		client: http.DefaultClient,
	}
}

func (b *httpLoaderBackend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	target := b.base + "/" + strings.TrimPrefix(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", target, err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %q: %s", target, resp.Status)
	}
	return resp.Body, nil
}

// memoryLoaderBackend serves resources from a map keyed by name.
type memoryLoaderBackend struct {
	files map[string][]byte
}

func newMemoryLoaderBackend(files map[string][]byte) *memoryLoaderBackend {
	return &memoryLoaderBackend{files: files}
}

func (b *memoryLoaderBackend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("failed to open %q: %w", name, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

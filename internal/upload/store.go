package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ObjectStore persists uploaded objects and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (url string, err error)
}

// FSStore keeps objects on an afero filesystem under Root and exposes them
// below BaseURL.  Production mounts a volume that the CDN serves; tests use
// afero.NewMemMapFs.
type FSStore struct {
	fs      afero.Fs
	root    string
	baseURL string
}

// NewFSStore returns an FSStore.
func NewFSStore(fs afero.Fs, root, baseURL string) *FSStore {
	return &FSStore{fs: fs, root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put writes r to key.  Keys use forward slashes.
func (s *FSStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("upload: invalid object key %q", key)
	}

	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("upload: mkdir: %w", err)
	}
	if err := afero.WriteReader(s.fs, full, r); err != nil {
		return "", fmt.Errorf("upload: write %s: %w", clean, err)
	}
	return s.baseURL + "/" + clean, nil
}

// FileServer serves stored objects read-only.  Directories answer 404 so
// user IDs and asset names cannot be enumerated.
func (s *FSStore) FileServer() http.Handler {
	return http.FileServer(filesOnly{afero.NewHttpFs(s.fs).Dir(s.root)})
}

// filesOnly hides directories from http.FileServer.
type filesOnly struct{ fs http.FileSystem }

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if fi.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

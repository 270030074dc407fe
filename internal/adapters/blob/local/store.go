// Package local guarda los documentos en disco y los sirve bajo un prefijo URL.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"health-record-sharing/internal/ports/blobstore"
)

var ErrInvalidKey = errors.New("invalid key")

type Store struct {
	dir       string
	urlPrefix string
}

// New crea el directorio si no existe.
func New(dir, urlPrefix string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("uploads dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func (s *Store) Dir() string       { return s.dir }
func (s *Store) URLPrefix() string { return s.urlPrefix }

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (blobstore.Object, error) {
	// la key es un nombre plano, sin directorios
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return blobstore.Object{}, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return blobstore.Object{}, err
	}

	path := filepath.Join(s.dir, key)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return blobstore.Object{}, fmt.Errorf("create %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return blobstore.Object{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return blobstore.Object{}, err
	}

	return blobstore.Object{
		Key: key,
		URL: s.urlPrefix + "/" + key,
	}, nil
}

// Handler sirve los archivos guardados; se monta en URLPrefix.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(s.urlPrefix, http.FileServer(noListing{http.Dir(s.dir)}))
}

// noListing evita que GET /uploads/ devuelva el índice del directorio.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

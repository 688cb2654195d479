package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URLPrefix is the route under which stored files are served.
const URLPrefix = "/uploads"

var ErrInvalidKey = errors.New("invalid storage key")

// Store keeps media files on the local disk below a root directory.
type Store struct {
	root    string
	baseURL string
}

func New(root, publicBaseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{
		root:    root,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Save(ctx context.Context, key string, body io.Reader, _ string) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return s.URL(key), nil
}

// Delete removes the file. A file that is already gone is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *Store) URL(key string) string {
	return s.baseURL + URLPrefix + "/" + key
}

func (s *Store) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + URLPrefix + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if _, err := s.resolve(key); err != nil {
		return "", false
	}
	return key, true
}

func (s *Store) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(path.Clean(key))), nil
}

package media

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalStore writes files below Root and serves them under BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, ImagePrefix), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create media root %s", root)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{Root: root, BaseURL: baseURL}, nil
}

func (s *LocalStore) Save(_ context.Context, fileName string, content io.Reader) (string, error) {
	key := NewKey(fileName)
	f, err := os.Create(s.path(key))
	if err != nil {
		return "", errors.Wrap(err, "failed to create media file")
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errors.Wrap(err, "failed to write media file")
	}
	return key, errors.Wrap(f.Close(), "failed to close media file")
}

func (s *LocalStore) URL(key string) string {
	return s.BaseURL + (&url.URL{Path: key}).EscapedPath()
}

// Delete removes the file; a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete media file")
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.Root, filepath.FromSlash(key))
}

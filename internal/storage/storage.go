package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStorage holds work order photo binaries. Deletion is idempotent
// so two-step photo removal can always be retried.
type ObjectStorage interface {
	PutObject(ctx context.Context, path string, r io.Reader, contentType string) error
	PublicURL(path string) string
	DeleteObject(ctx context.Context, path string) error
}

const (
	DefaultBaseDir    = "./uploads"
	DefaultStaticBase = "/static/uploads"
)

// LocalStorage keeps objects on local disk and serves them statically.
type LocalStorage struct {
	baseDir    string // absolute path to the objects dir
	staticBase string // URL prefix for serving objects
}

func NewLocalStorage(baseDir, staticBase string) *LocalStorage {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if staticBase == "" {
		staticBase = DefaultStaticBase
	}
	return &LocalStorage{baseDir: baseDir, staticBase: staticBase}
}

// BaseDir and StaticBase expose the serving configuration so the router
// can mount the static file handler that resolves PublicURL results.
func (s *LocalStorage) BaseDir() string    { return s.baseDir }
func (s *LocalStorage) StaticBase() string { return s.staticBase }

func (s *LocalStorage) PutObject(_ context.Context, path string, r io.Reader, _ string) error {
	absPath, err := s.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	dst, err := os.Create(absPath)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(absPath)
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

func (s *LocalStorage) PublicURL(path string) string {
	return s.staticBase + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}

func (s *LocalStorage) DeleteObject(_ context.Context, path string) error {
	absPath, err := s.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *LocalStorage) abs(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("empty object path")
	}
	return filepath.Join(s.baseDir, clean), nil
}

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on the local filesystem under a content
// root directory.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Root returns the content root directory.
func (l *LocalStorage) Root() string {
	return l.root
}

func (l *LocalStorage) path(objectName string) (string, error) {
	// Object names are generated server-side, but reject traversal anyway
	cleaned := filepath.Clean(objectName)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object name: %s", objectName)
	}
	return filepath.Join(l.root, cleaned), nil
}

func (l *LocalStorage) Save(objectName string, reader io.Reader, size int64, contentType string) error {
	path, err := l.path(objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (l *LocalStorage) Open(objectName string) (io.ReadCloser, error) {
	path, err := l.path(objectName)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (l *LocalStorage) Remove(objectName string) error {
	path, err := l.path(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LocalStorage) Ping() error {
	_, err := os.Stat(l.root)
	return err
}

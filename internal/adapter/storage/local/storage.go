// Package local хранит загруженные файлы на локальном диске (MEDIA_ROOT)
// и отдает их по префиксу MEDIA_URL.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Storage реализует ports.FileStorage поверх файловой системы
type Storage struct {
	root    string
	baseURL string
	logger  *slog.Logger
	mu      sync.RWMutex
}

// NewStorage создает каталог root при необходимости
func NewStorage(root, baseURL string, logger *slog.Logger) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Storage{root: root, baseURL: baseURL, logger: logger}, nil
}

// Root возвращает корневой каталог, из которого раздаются файлы
func (s *Storage) Root() string {
	return s.root
}

// Path возвращает путь файла на диске; ключи вне корня отклоняются
func (s *Storage) Path(key string) (string, error) {
	clean := path.Clean(strings.TrimLeft(key, "/"))
	if key == "" || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// UploadFile записывает содержимое под ключом key и возвращает URL файла
func (s *Storage) UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	p, err := s.Path(key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// пишем во временный файл и переименовываем, чтобы не оставить обрезанный файл
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	s.logger.Info("file stored", "key", key, "content_type", contentType)
	return s.FileURL(key), nil
}

// DeleteFile удаляет файл; отсутствие файла ошибкой не считается
func (s *Storage) DeleteFile(ctx context.Context, key string) error {
	p, err := s.Path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	s.logger.Info("file deleted", "key", key)
	return nil
}

// FileURL строит URL файла относительно MEDIA_URL
func (s *Storage) FileURL(key string) string {
	return s.baseURL + strings.TrimLeft(key, "/")
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore хранит загруженные изображения в локальной папке.
// URL имеют вид <urlPrefix>/<key>, их обслуживает HTTP-слой.
type FileStore struct {
	basePath  string
	urlPrefix string
}

var _ ObjectStore = (*FileStore)(nil)

// NewFileStore создаёт папку basePath при необходимости.
func NewFileStore(basePath, urlPrefix string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// BasePath возвращает корневую папку.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Put записывает файл под уникальным ключом и возвращает его URL.
func (s *FileStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := NewKey(filename)
	if _, err := s.write(key, data); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + key, nil
}

// Delete удаляет файл по URL вида <urlPrefix>/<key>.
func (s *FileStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok {
		return ErrForeignURL
	}
	fullPath, err := s.Resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

func (s *FileStore) write(key string, data []byte) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// Resolve возвращает путь к файлу для ключа из URL; ключи с выходом за корень отклоняются.
func (s *FileStore) Resolve(key string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// sanitizeKey нормализует ключ и не даёт выйти за пределы корня хранилища.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

package storage

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ObjectStore сохраняет бинарные данные и возвращает URL для их получения.
type ObjectStore interface {
	Put(ctx context.Context, filename string, data []byte) (url string, err error)
	// Delete удаляет объект по URL, полученному из Put. Отсутствующий объект — не ошибка.
	Delete(ctx context.Context, url string) error
}

// ErrForeignURL — URL не принадлежит этому хранилищу.
var ErrForeignURL = errors.New("storage: url does not belong to this store")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewKey строит уникальный ключ объекта из исходного имени файла:
// "<uuid>-<безопасное имя>". Пути и опасные символы отбрасываются.
func NewKey(filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image"
	}
	return uuid.NewString() + "-" + base
}

// DetectContentType определяет MIME-тип по содержимому.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsImage сообщает, похожи ли данные на изображение.
func IsImage(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// Пакет paths — вычисление и валидация путей хранилища записей.
// Единственная защита от directory traversal: кандидатный путь
// канонизируется и проверяется на принадлежность директории фотографий
// ПОСЛЕ нормализации, а не префиксной проверкой сырого ввода.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathTraversal — разрешённый путь выходит за пределы директории
// фотографий. Всегда трактуется как нарушение безопасности, без retry.
var ErrPathTraversal = errors.New("путь выходит за пределы директории фотографий")

// recordsSubdir — поддиректория корня хранилища для записей телефонов.
const recordsSubdir = "records"

// Resolver — вычисление путей относительно корня хранилища записей.
type Resolver struct {
	// root — абсолютный путь к <base>/records
	root string
}

// NewResolver создаёт Resolver над базовой директорией хранилища.
// Создаёт корень записей, если он не существует (идемпотентно).
func NewResolver(basePath string) (*Resolver, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абсолютный путь %s: %w", basePath, err)
	}

	root := filepath.Join(abs, recordsSubdir)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать корень хранилища %s: %w", root, err)
	}

	return &Resolver{root: root}, nil
}

// Root возвращает абсолютный корень хранилища записей.
func (r *Resolver) Root() string {
	return r.root
}

// RecordDir возвращает директорию записи: <root>/<key>.
func (r *Resolver) RecordDir(key string) string {
	return filepath.Join(r.root, key)
}

// PhotosDir возвращает директорию фотографий записи: <root>/<key>/photos.
func (r *Resolver) PhotosDir(key string) string {
	return filepath.Join(r.root, key, "photos")
}

// EnsurePhotoDirs создаёт директорию записи и её поддиректорию фотографий.
// Создание существующей директории не является ошибкой.
func (r *Resolver) EnsurePhotoDirs(key string) error {
	if err := os.MkdirAll(r.PhotosDir(key), 0o750); err != nil {
		return fmt.Errorf("не удалось создать директорию фотографий для %s: %w", key, err)
	}
	return nil
}

// ResolvePhoto соединяет директорию фотографий ключа с именем файла,
// канонизирует результат и проверяет, что он остаётся потомком директории
// фотографий. Возвращает ErrPathTraversal для имён вида "../../etc/passwd",
// абсолютных путей и иных способов выйти из директории.
func (r *Resolver) ResolvePhoto(key, fileName string) (string, error) {
	photosDir := r.PhotosDir(key)

	// filepath.Join выполняет Clean: сегменты "." и ".." схлопываются
	candidate := filepath.Join(photosDir, fileName)

	rel, err := filepath.Rel(photosDir, candidate)
	if err != nil {
		return "", ErrPathTraversal
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return candidate, nil
}

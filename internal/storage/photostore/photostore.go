// Пакет photostore — хранение загруженных фотографий на диске.
// Файлы живут в <root>/<key>/photos/, имя генерируется как
// {timestamp}-{порядковый номер в рамках вызова}{расширение}, что даёт
// уникальность при быстрых последовательных загрузках. Лексикографическая
// сортировка имён совпадает с хронологической благодаря префиксу-таймстемпу.
package photostore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/UmanetAlexandru/pro-assist/internal/storage/paths"
)

// ErrUnsupportedMedia — загружаемая часть не является изображением.
var ErrUnsupportedMedia = errors.New("допускается загрузка только изображений")

// Формат таймстемпа в имени файла (до секунды).
const nameTimestamp = "20060102-150405"

// Метрики файловых операций (экспортируются на /metrics).
var photoOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pa_photo_operations_total",
		Help: "Общее количество операций с фотографиями",
	},
	[]string{"operation", "result"},
)

// Upload — одна загружаемая фотография.
type Upload struct {
	// Reader — поток содержимого файла
	Reader io.Reader
	// Size — заявленный размер содержимого в байтах
	Size int64
	// ContentType — заявленный MIME-тип
	ContentType string
	// OriginalFilename — оригинальное имя файла (для расширения)
	OriginalFilename string
}

// Store — хранилище фотографий поверх paths.Resolver.
type Store struct {
	resolver *paths.Resolver
	logger   *slog.Logger
}

// New создаёт хранилище фотографий.
func New(resolver *paths.Resolver, logger *slog.Logger) *Store {
	return &Store{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "photostore")),
	}
}

// Save сохраняет пачку фотографий в директорию ключа.
//
// Предусловие: директория фотографий уже создана (оркестратор вызывает
// EnsurePhotoDirs до Save). Пустые части пропускаются. Часть с MIME-типом
// не image/* прерывает весь вызов с ErrUnsupportedMedia; уже записанные
// в этом вызове файлы остаются на диске (запись пачки не транзакционна).
// Коллизия имени возможна только между вызовами в одну секунду с тем же
// порядковым номером и разрешается как last-write-wins.
func (s *Store) Save(key string, uploads []Upload) error {
	seq := 0
	for _, up := range uploads {
		if up.Size == 0 {
			continue
		}

		ct := normalizeContentType(up.ContentType)
		if !strings.HasPrefix(ct, "image/") {
			photoOperationsTotal.WithLabelValues("save", "rejected").Inc()
			return fmt.Errorf("%w: content-type %q", ErrUnsupportedMedia, up.ContentType)
		}

		seq++
		name := fmt.Sprintf("%s-%d%s",
			time.Now().Format(nameTimestamp), seq, guessExtension(up.OriginalFilename, ct))

		// Повторная валидация итогового пути через Resolver
		target, err := s.resolver.ResolvePhoto(key, name)
		if err != nil {
			photoOperationsTotal.WithLabelValues("save", "rejected").Inc()
			return err
		}

		if err := writeFile(target, up.Reader); err != nil {
			photoOperationsTotal.WithLabelValues("save", "error").Inc()
			s.logger.Error("Ошибка записи фотографии",
				slog.String("key", key),
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			return err
		}

		photoOperationsTotal.WithLabelValues("save", "success").Inc()
		s.logger.Info("Фотография сохранена",
			slog.String("key", key),
			slog.String("file", name),
			slog.String("content_type", ct),
		)
	}
	return nil
}

// List возвращает имена фотографий ключа, отсортированные лексикографически.
// Отсутствие директории фотографий — не ошибка, возвращается пустой список.
func (s *Store) List(key string) ([]string, error) {
	entries, err := os.ReadDir(s.resolver.PhotosDir(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения директории фотографий %s: %w", key, err)
	}

	// os.ReadDir возвращает записи отсортированными по имени
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// writeFile записывает содержимое во временный файл рядом с целевым,
// затем выполняет fsync и атомарный rename. Rename затирает существующий
// файл — это и есть last-write-wins при коллизии имён.
func writeFile(target string, reader io.Reader) error {
	tmpPath := target + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

// normalizeContentType убирает параметры MIME-типа (charset и т.д.).
func normalizeContentType(ct string) string {
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(ct)
}

// guessExtension определяет расширение сохраняемого файла.
// Сначала — суффикс оригинального имени (если не длиннее 6 символов),
// затем — известные image-типы, иначе ".img".
func guessExtension(originalFilename, contentType string) string {
	if originalFilename != "" {
		ext := filepath.Ext(originalFilename)
		if ext != "" && len(ext) <= 6 {
			return ext
		}
	}

	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".img"
	}
}

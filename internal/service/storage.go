// storage.go — оркестратор гибридного хранилища записей телефонов.
// Объединяет репозиторий метаданных и файловое хранилище фотографий
// в единое представление по ключу. Композиция сознательно не атомарна:
// ошибка записи фотографий прерывает вызов до записи метаданных, но
// ошибка метаданных не откатывает уже записанные фотографии
// (best-effort согласованность двух независимых хранилищ).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
	"github.com/UmanetAlexandru/pro-assist/internal/phone"
	"github.com/UmanetAlexandru/pro-assist/internal/repository"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/paths"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/photostore"
)

// photoURLFormat — форма пути получения фотографии через HTTP API.
const photoURLFormat = "/records/%s/photos/%s"

// Storage — сервис чтения/записи записей телефонов.
type Storage struct {
	repo     repository.RecordRepository
	photos   *photostore.Store
	resolver *paths.Resolver
	cache    *CacheService
	logger   *slog.Logger
}

// NewStorage создаёт оркестратор хранилища.
// cache может быть nil — тогда каждое чтение идёт в репозиторий.
func NewStorage(
	repo repository.RecordRepository,
	photos *photostore.Store,
	resolver *paths.Resolver,
	cache *CacheService,
	logger *slog.Logger,
) *Storage {
	return &Storage{
		repo:     repo,
		photos:   photos,
		resolver: resolver,
		cache:    cache,
		logger:   logger.With(slog.String("component", "storage_service")),
	}
}

// Get возвращает слитое представление записи по сырому телефонному вводу.
// Отсутствие метаданных — не ошибка: возвращается представление без info.
func (s *Storage) Get(ctx context.Context, rawPhone string) (*model.RecordView, error) {
	key, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, key)
}

// Upsert применяет изменения к записи по сырому телефонному вводу.
//
// Поток:
//  1. Нормализация ключа
//  2. Создание директорий записи (идемпотентно)
//  3. Запись фотографий (если переданы) — ошибка прерывает весь вызов
//  4. Upsert метаданных (только если info передан)
//  5. Свежий Get — ответ отражает текущее состояние обоих хранилищ,
//     а не снимок только что применённых изменений
func (s *Storage) Upsert(ctx context.Context, rawPhone string, info *model.PhoneInfo, uploads []photostore.Upload) (*model.RecordView, error) {
	key, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	if err := s.resolver.EnsurePhotoDirs(key); err != nil {
		return nil, err
	}

	if len(uploads) > 0 {
		if err := s.photos.Save(key, uploads); err != nil {
			return nil, fmt.Errorf("ошибка сохранения фотографий для %s: %w", key, err)
		}
	}

	if info != nil {
		rec, err := s.repo.Upsert(ctx, key, info)
		if err != nil {
			// Фотографии уже на диске и не откатываются
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(key, rec)
		}

		s.logger.Info("Запись обновлена",
			slog.String("key", key),
			slog.Int("photos", len(uploads)),
		)
	}

	return s.view(ctx, key)
}

// ResolvePhoto возвращает проверенный абсолютный путь фотографии.
// Проверка существования файла — обязанность вызывающего (HTTP-слой
// отвечает 404, когда файла нет).
func (s *Storage) ResolvePhoto(rawPhone, fileName string) (string, error) {
	key, err := phone.Normalize(rawPhone)
	if err != nil {
		return "", err
	}
	return s.resolver.ResolvePhoto(key, fileName)
}

// view собирает RecordView: метаданные (кэш → репозиторий) + фотографии.
func (s *Storage) view(ctx context.Context, key string) (*model.RecordView, error) {
	rec, err := s.findRecord(ctx, key)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	names, err := s.photos.List(key)
	if err != nil {
		return nil, err
	}

	v := &model.RecordView{
		Phone:  key,
		Photos: make([]model.PhotoRef, 0, len(names)),
	}
	for _, name := range names {
		v.Photos = append(v.Photos, model.PhotoRef{
			FileName: name,
			URL:      fmt.Sprintf(photoURLFormat, key, name),
		})
	}

	if rec != nil {
		v.Info = rec.Info()
		created, updated := rec.CreatedAt, rec.UpdatedAt
		v.CreatedAt = &created
		v.UpdatedAt = &updated
	}

	return v, nil
}

// findRecord читает запись через кэш, при промахе — из репозитория.
func (s *Storage) findRecord(ctx context.Context, key string) (*model.PhoneRecord, error) {
	if s.cache != nil {
		if rec, ok := s.cache.Get(key); ok {
			return rec, nil
		}
	}

	rec, err := s.repo.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, rec)
	}
	return rec, nil
}

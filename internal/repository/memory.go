package repository

import (
	"context"
	"sync"
	"time"

	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
)

// memoryRepo — in-memory реализация RecordRepository.
// Используется в тестах и в режиме разработки (PA_DB_BACKEND=memory).
// Семантика полностью повторяет PostgreSQL-реализацию: created_at
// фиксируется один раз, updated_at обновляется каждым upsert, все
// скалярные поля перезаписываются безусловно.
type memoryRepo struct {
	mu      sync.RWMutex
	records map[string]*model.PhoneRecord
}

// NewMemoryRepository создаёт пустой in-memory репозиторий.
func NewMemoryRepository() RecordRepository {
	return &memoryRepo{records: make(map[string]*model.PhoneRecord)}
}

// Find возвращает копию записи по ключу или ErrNotFound.
func (r *memoryRepo) Find(_ context.Context, key string) (*model.PhoneRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// Upsert создаёт или безусловно перезаписывает запись.
func (r *memoryRepo) Upsert(_ context.Context, key string, info *model.PhoneInfo) (*model.PhoneRecord, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := now
	if existing, ok := r.records[key]; ok {
		createdAt = existing.CreatedAt
	}

	rec := &model.PhoneRecord{
		PhoneKey:    key,
		Description: info.Description,
		Price:       info.Price,
		Currency:    info.Currency,
		Address:     info.Address,
		Services:    info.Services,
		Comment:     info.Comment,
		Visited:     info.Visited,
		Rating:      info.Rating,
		Finished:    info.Finished,
		SourceURL:   info.SourceURL,
		CreatedAt:   createdAt,
		UpdatedAt:   now,
	}
	r.records[key] = rec

	cp := *rec
	return &cp, nil
}

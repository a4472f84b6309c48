package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
)

// TestMemoryRepo_FindNotFound проверяет ErrNotFound пустого репозитория.
func TestMemoryRepo_FindNotFound(t *testing.T) {
	repo := NewMemoryRepository()

	if _, err := repo.Find(context.Background(), "+37369123456"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}

// TestMemoryRepo_ReturnsCopies проверяет, что мутация возвращённой записи
// не затрагивает хранимое состояние.
func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	desc := "оригинал"
	rec, err := repo.Upsert(ctx, "+37369123456", &model.PhoneInfo{Description: &desc})
	if err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}

	mutated := "изменено"
	rec.Description = &mutated

	got, err := repo.Find(ctx, "+37369123456")
	if err != nil {
		t.Fatalf("Find() ошибка: %v", err)
	}
	if got.Description == nil || *got.Description != "оригинал" {
		t.Error("мутация копии затронула хранимое состояние")
	}
}

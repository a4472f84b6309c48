package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
	"github.com/UmanetAlexandru/pro-assist/internal/repository"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/paths"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/photostore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	resolver, err := paths.NewResolver(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания Resolver: %v", err)
	}
	logger := testLogger()
	return NewStorage(
		repository.NewMemoryRepository(),
		photostore.New(resolver, logger),
		resolver,
		NewCacheService(64, time.Minute),
		logger,
	)
}

func strPtr(s string) *string { return &s }

// TestGet_UnknownKey проверяет, что чтение несуществующей записи
// возвращает пустое представление, а не ошибку.
func TestGet_UnknownKey(t *testing.T) {
	s := newTestStorage(t)

	view, err := s.Get(context.Background(), "+373 69 000 000")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if view.Phone != "+37369000000" {
		t.Errorf("ожидался ключ +37369000000, получен %s", view.Phone)
	}
	if view.Info != nil {
		t.Error("метаданные несуществующей записи должны быть nil")
	}
	if len(view.Photos) != 0 {
		t.Errorf("ожидался пустой список фотографий, получено %d", len(view.Photos))
	}
	if view.CreatedAt != nil || view.UpdatedAt != nil {
		t.Error("таймстемпы несуществующей записи должны быть nil")
	}
}

// TestUpsert_CreatesAndUpdates проверяет, что created_at фиксируется
// первым upsert, а updated_at обновляется последующими.
func TestUpsert_CreatesAndUpdates(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first := &model.PhoneInfo{Description: strPtr("первая версия")}
	v1, err := s.Upsert(ctx, "+37369123456", first, nil)
	if err != nil {
		t.Fatalf("ошибка первого upsert: %v", err)
	}
	if v1.Info == nil || v1.Info.Description == nil || *v1.Info.Description != "первая версия" {
		t.Fatal("метаданные первого upsert не сохранены")
	}
	if v1.CreatedAt == nil || v1.UpdatedAt == nil {
		t.Fatal("таймстемпы не установлены")
	}

	time.Sleep(10 * time.Millisecond)

	rating := 4
	second := &model.PhoneInfo{Description: strPtr("вторая версия"), Rating: &rating}
	v2, err := s.Upsert(ctx, "+373 69 123 456", second, nil)
	if err != nil {
		t.Fatalf("ошибка второго upsert: %v", err)
	}

	// Разные представления одного номера — одна запись
	if v2.Phone != v1.Phone {
		t.Errorf("ожидался один ключ, получено %s и %s", v1.Phone, v2.Phone)
	}
	if *v2.Info.Description != "вторая версия" {
		t.Errorf("метаданные не перезаписаны: %s", *v2.Info.Description)
	}
	if !v2.CreatedAt.Equal(*v1.CreatedAt) {
		t.Errorf("created_at изменился: %v -> %v", v1.CreatedAt, v2.CreatedAt)
	}
	if !v2.UpdatedAt.After(*v1.UpdatedAt) {
		t.Errorf("updated_at не продвинулся: %v -> %v", v1.UpdatedAt, v2.UpdatedAt)
	}
}

// TestUpsert_OverwritesToNull проверяет, что непереданное поле
// затирается, а не сливается с предыдущим значением.
func TestUpsert_OverwritesToNull(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	price := decimal.NewFromFloat(150.50)
	cur := model.CurrencyEUR
	if _, err := s.Upsert(ctx, "+37369123456", &model.PhoneInfo{
		Description: strPtr("с ценой"),
		Price:       &price,
		Currency:    &cur,
	}, nil); err != nil {
		t.Fatalf("ошибка первого upsert: %v", err)
	}

	v, err := s.Upsert(ctx, "+37369123456", &model.PhoneInfo{Description: strPtr("без цены")}, nil)
	if err != nil {
		t.Fatalf("ошибка второго upsert: %v", err)
	}

	if v.Info.Price != nil {
		t.Errorf("цена должна быть затёрта, получено %v", v.Info.Price)
	}
	if v.Info.Currency != nil {
		t.Errorf("валюта должна быть затёрта, получено %v", *v.Info.Currency)
	}
}

// TestUpsert_WithPhotos проверяет сохранение фотографий и их появление
// в представлении с корректными URL.
func TestUpsert_WithPhotos(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	uploads := []photostore.Upload{
		{
			Reader:           bytes.NewReader([]byte("jpeg-data")),
			Size:             9,
			ContentType:      "image/jpeg",
			OriginalFilename: "front.jpg",
		},
	}

	v, err := s.Upsert(ctx, "+37369123456", nil, uploads)
	if err != nil {
		t.Fatalf("ошибка upsert: %v", err)
	}

	if len(v.Photos) != 1 {
		t.Fatalf("ожидалась 1 фотография, получено %d", len(v.Photos))
	}
	want := "/records/+37369123456/photos/" + v.Photos[0].FileName
	if v.Photos[0].URL != want {
		t.Errorf("ожидался URL %s, получен %s", want, v.Photos[0].URL)
	}
	// Метаданные не передавались и не должны появиться
	if v.Info != nil {
		t.Error("метаданные должны отсутствовать")
	}
}

// TestUpsert_ServicesRoundTrip проверяет сохранение флагов услуг.
func TestUpsert_ServicesRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	yes, no := true, false
	v, err := s.Upsert(ctx, "+37369123456", &model.PhoneInfo{
		Services: &model.Services{Owc: &yes, Ana: &no},
	}, nil)
	if err != nil {
		t.Fatalf("ошибка upsert: %v", err)
	}

	svc := v.Info.Services
	if svc == nil || svc.Owc == nil || svc.Ana == nil {
		t.Fatal("флаги услуг не сохранены")
	}
	if !*svc.Owc || *svc.Ana {
		t.Errorf("ожидалось owc=true ana=false, получено owc=%v ana=%v", *svc.Owc, *svc.Ana)
	}
}

// TestResolvePhoto_InvalidPhone проверяет проброс ошибки нормализации.
func TestResolvePhoto_InvalidPhone(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.ResolvePhoto("abc", "x.jpg"); err == nil {
		t.Error("ожидалась ошибка нормализации телефона")
	}
}

// TestGet_ReadYourWrites проверяет, что чтение сразу после upsert
// видит записанные метаданные (write-through кэш).
func TestGet_ReadYourWrites(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, "+37369123456", &model.PhoneInfo{Description: strPtr("запись")}, nil); err != nil {
		t.Fatalf("ошибка upsert: %v", err)
	}

	v, err := s.Get(ctx, "+37369123456")
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if v.Info == nil || *v.Info.Description != "запись" {
		t.Error("чтение после записи не видит метаданные")
	}
}

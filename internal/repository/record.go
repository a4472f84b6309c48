package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
)

// recordColumns — список столбцов таблицы phone_record для SELECT/RETURNING.
// DRY: одно место для всех запросов.
const recordColumns = `phone_key, description, price, currency, address,
	services_json, comment, visited, rating, finished, source_url,
	created_at, updated_at`

// recordRepo — реализация RecordRepository через pgx.
type recordRepo struct {
	db DBTX
}

// NewRecordRepository создаёт репозиторий записей телефонов.
func NewRecordRepository(db DBTX) RecordRepository {
	return &recordRepo{db: db}
}

// Find возвращает запись по ключу или ErrNotFound.
func (r *recordRepo) Find(ctx context.Context, key string) (*model.PhoneRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM phone_record WHERE phone_key = $1`, recordColumns)

	rec, err := scanRecord(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Upsert выполняет атомарный per-key upsert через ON CONFLICT:
// новая запись получает created_at один раз, существующая — безусловную
// перезапись всех скалярных полей и свежий updated_at. Поле, отсутствующее
// у вызывающего (nil), записывается как NULL, частичного слияния нет.
func (r *recordRepo) Upsert(ctx context.Context, key string, info *model.PhoneInfo) (*model.PhoneRecord, error) {
	servicesJSON, err := encodeServices(info.Services)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	query := fmt.Sprintf(`
		INSERT INTO phone_record (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (phone_key) DO UPDATE SET
			description   = EXCLUDED.description,
			price         = EXCLUDED.price,
			currency      = EXCLUDED.currency,
			address       = EXCLUDED.address,
			services_json = EXCLUDED.services_json,
			comment       = EXCLUDED.comment,
			visited       = EXCLUDED.visited,
			rating        = EXCLUDED.rating,
			finished      = EXCLUDED.finished,
			source_url    = EXCLUDED.source_url,
			updated_at    = EXCLUDED.updated_at
		RETURNING %s`, recordColumns, recordColumns)

	rec, err := scanRecord(r.db.QueryRow(ctx, query,
		key,
		info.Description,
		info.Price,
		enumToString(info.Currency),
		info.Address,
		servicesJSON,
		info.Comment,
		info.Visited,
		info.Rating,
		finishedToString(info.Finished),
		info.SourceURL,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка upsert записи %s: %w", key, err)
	}
	return rec, nil
}

// scanRecord сканирует одну строку phone_record в доменную модель.
// Перечисления разбираются строго: нераспознанное сохранённое значение
// возвращает model.ErrInvalidEnum (защита от порчи данных).
func scanRecord(row pgx.Row) (*model.PhoneRecord, error) {
	rec := &model.PhoneRecord{}
	var currency, finished, servicesJSON *string

	err := row.Scan(
		&rec.PhoneKey, &rec.Description, &rec.Price, &currency, &rec.Address,
		&servicesJSON, &rec.Comment, &rec.Visited, &rec.Rating, &finished,
		&rec.SourceURL, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if currency != nil {
		c, err := model.ParseCurrency(*currency)
		if err != nil {
			return nil, err
		}
		rec.Currency = &c
	}
	if finished != nil {
		f, err := model.ParseFinished(*finished)
		if err != nil {
			return nil, err
		}
		rec.Finished = &f
	}

	rec.Services, err = decodeServices(servicesJSON)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// encodeServices сериализует под-объект услуг в компактную JSON-строку.
func encodeServices(s *model.Services) (*string, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSerialization, err.Error())
	}
	str := string(data)
	return &str, nil
}

// decodeServices разбирает сохранённую JSON-строку услуг.
func decodeServices(raw *string) (*model.Services, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	s := &model.Services{}
	if err := json.Unmarshal([]byte(*raw), s); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSerialization, err.Error())
	}
	return s, nil
}

// enumToString конвертирует *Currency в *string для передачи в pgx.
func enumToString(c *model.Currency) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

// finishedToString конвертирует *Finished в *string для передачи в pgx.
func finishedToString(f *model.Finished) *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

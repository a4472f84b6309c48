// Пакет model — доменные модели ProAssist.
// record.go — запись телефона: метаданные, перечисления, валидация.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ошибки доменного слоя.
var (
	// ErrInvalidEnum — сохранённое значение перечисления не распознано.
	// Защита от порчи данных в хранилище, в нормальной работе не встречается.
	ErrInvalidEnum = errors.New("недопустимое значение перечисления")
)

// Currency — код валюты цены. Закрытый набор, хранится по символьному имени.
type Currency string

// Допустимые валюты.
const (
	CurrencyMDL Currency = "MDL"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

// ParseCurrency выполняет строгий разбор кода валюты.
// Возвращает ErrInvalidEnum для нераспознанных значений.
func ParseCurrency(v string) (Currency, error) {
	switch Currency(v) {
	case CurrencyMDL, CurrencyEUR, CurrencyUSD:
		return Currency(v), nil
	default:
		return "", fmt.Errorf("%w: currency %q", ErrInvalidEnum, v)
	}
}

// Finished — код состояния завершённости записи.
type Finished string

// Допустимые состояния завершённости.
const (
	FinishedYes       Finished = "YES"
	FinishedNo        Finished = "NO"
	FinishedPartially Finished = "PARTIALLY"
	FinishedHand      Finished = "HAND"
	FinishedOra       Finished = "ORA"
)

// ParseFinished выполняет строгий разбор кода завершённости.
// Возвращает ErrInvalidEnum для нераспознанных значений.
func ParseFinished(v string) (Finished, error) {
	switch Finished(v) {
	case FinishedYes, FinishedNo, FinishedPartially, FinishedHand, FinishedOra:
		return Finished(v), nil
	default:
		return "", fmt.Errorf("%w: finished %q", ErrInvalidEnum, v)
	}
}

// Services — структурированный под-объект флагов услуг.
// Сериализуется в компактную JSON-строку для хранения.
type Services struct {
	Owc *bool `json:"owc,omitempty"`
	Ana *bool `json:"ana,omitempty"`
}

// PhoneRecord — метаданные одной записи телефона.
// Ключ записи — нормализованный телефонный ключ (см. пакет phone).
// Все скалярные поля опциональны, кроме ключа и таймстемпов.
type PhoneRecord struct {
	// PhoneKey — первичный ключ (нормализованный телефон, до 64 символов)
	PhoneKey string
	// Description — свободное описание (до 500 символов)
	Description *string
	// Price — цена, неотрицательная, до 12 целых и 2 дробных цифр
	Price *decimal.Decimal
	// Currency — код валюты цены
	Currency *Currency
	// Address — адрес (до 500 символов)
	Address *string
	// Services — флаги услуг
	Services *Services
	// Comment — свободный комментарий (до 5000 символов)
	Comment *string
	// Visited — флаг посещения
	Visited *bool
	// Rating — оценка 1..5
	Rating *int
	// Finished — состояние завершённости
	Finished *Finished
	// SourceURL — URL источника записи (до 2000 символов, только хранение)
	SourceURL *string
	// CreatedAt — устанавливается один раз при создании записи
	CreatedAt time.Time
	// UpdatedAt — обновляется при каждом upsert
	UpdatedAt time.Time
}

// Info возвращает DTO-проекцию записи без ключа и таймстемпов.
func (r *PhoneRecord) Info() *PhoneInfo {
	return &PhoneInfo{
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Address:     r.Address,
		Services:    r.Services,
		Comment:     r.Comment,
		Visited:     r.Visited,
		Rating:      r.Rating,
		Finished:    r.Finished,
		SourceURL:   r.SourceURL,
	}
}

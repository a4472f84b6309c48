// info.go — DTO метаданных записи и валидация входных данных API.
package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Лимиты полей PhoneInfo.
const (
	maxDescriptionLen = 500
	maxAddressLen     = 500
	maxCommentLen     = 5000
	maxSourceURLLen   = 2000
	maxPriceIntDigits = 12
	maxPriceFraction  = 2
)

// PhoneInfo — метаданные записи телефона в API-представлении.
// Все поля опциональны: поле, не переданное при upsert, записывается
// как NULL, частичного слияния нет.
type PhoneInfo struct {
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    *Currency        `json:"currency,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Services    *Services        `json:"services,omitempty"`
	Comment     *string          `json:"comment,omitempty"`
	Visited     *bool            `json:"visited,omitempty"`
	Rating      *int             `json:"rating,omitempty"`
	Finished    *Finished        `json:"finished,omitempty"`
	SourceURL   *string          `json:"sourceUrl,omitempty"`
}

// Validate проверяет ограничения полей PhoneInfo.
// Возвращает первую найденную ошибку с указанием поля.
func (i *PhoneInfo) Validate() error {
	if i.Description != nil && len(*i.Description) > maxDescriptionLen {
		return fmt.Errorf("description: длина превышает %d символов", maxDescriptionLen)
	}
	if i.Price != nil {
		if i.Price.IsNegative() {
			return fmt.Errorf("price: значение должно быть неотрицательным")
		}
		if err := validatePriceDigits(*i.Price); err != nil {
			return err
		}
	}
	if i.Currency != nil {
		if _, err := ParseCurrency(string(*i.Currency)); err != nil {
			return fmt.Errorf("currency: недопустимое значение %q", string(*i.Currency))
		}
	}
	if i.Address != nil && len(*i.Address) > maxAddressLen {
		return fmt.Errorf("address: длина превышает %d символов", maxAddressLen)
	}
	if i.Comment != nil && len(*i.Comment) > maxCommentLen {
		return fmt.Errorf("comment: длина превышает %d символов", maxCommentLen)
	}
	if i.Rating != nil && (*i.Rating < 1 || *i.Rating > 5) {
		return fmt.Errorf("rating: значение %d вне диапазона 1-5", *i.Rating)
	}
	if i.Finished != nil {
		if _, err := ParseFinished(string(*i.Finished)); err != nil {
			return fmt.Errorf("finished: недопустимое значение %q", string(*i.Finished))
		}
	}
	if i.SourceURL != nil && len(*i.SourceURL) > maxSourceURLLen {
		return fmt.Errorf("sourceUrl: длина превышает %d символов", maxSourceURLLen)
	}
	return nil
}

// validatePriceDigits проверяет формат цены: до 12 целых и 2 дробных цифр.
func validatePriceDigits(p decimal.Decimal) error {
	if p.Exponent() < -maxPriceFraction {
		return fmt.Errorf("price: более %d знаков после запятой", maxPriceFraction)
	}
	// Количество целых цифр = общее количество цифр минус дробная часть
	intDigits := len(p.Truncate(0).Abs().String())
	if intDigits > maxPriceIntDigits {
		return fmt.Errorf("price: более %d целых цифр", maxPriceIntDigits)
	}
	return nil
}

// Пакет phone — нормализация телефонного ввода в безопасный ключ хранения.
// Ключ используется и как имя директории на диске, и как первичный ключ
// в базе данных, поэтому не должен содержать ничего кроме цифр и
// необязательного ведущего '+'.
package phone

import (
	"errors"
	"strings"
)

// ErrInvalidPhone — входная строка не содержит телефонного номера.
var ErrInvalidPhone = errors.New("телефон не содержит цифр")

// Normalize приводит произвольный телефонный ввод к каноническому ключу.
//
// Алгоритм: обрезаем пробелы, запоминаем ведущий '+', удаляем все
// символы кроме ASCII-цифр. Результат соответствует ^\+?[0-9]+$.
// Два ввода с одинаковой нормализацией считаются одной записью:
// "+1 (202) 555-0100" и "+12025550100" — один и тот же ключ.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidPhone
	}

	hasPlus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] >= '0' && trimmed[i] <= '9' {
			b.WriteByte(trimmed[i])
		}
	}

	if b.Len() == 0 {
		return "", ErrInvalidPhone
	}

	if hasPlus {
		return "+" + b.String(), nil
	}
	return b.String(), nil
}

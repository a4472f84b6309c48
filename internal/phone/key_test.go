package phone

import (
	"errors"
	"testing"
)

// TestNormalize проверяет нормализацию телефонного ввода.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"международный формат с разделителями", "+1 (202) 555-0100", "+12025550100"},
		{"только цифры", "069123456", "069123456"},
		{"пробелы по краям", "  +373 69 123 456  ", "+37369123456"},
		{"плюс не в начале не сохраняется", "069+123456", "069123456"},
		{"буквы и прочий мусор удаляются", "tel: 069-12-34-56 (моб)", "069123456"},
		{"плюс с пробелом после", "+ 373 69", "+37369"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
			if got != tt.want {
				t.Errorf("ожидалось %q, получено %q", tt.want, got)
			}
		})
	}
}

// TestNormalize_Invalid проверяет отклонение ввода без цифр.
func TestNormalize_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "+", "abc", "+-()", " + "} {
		if _, err := Normalize(raw); !errors.Is(err, ErrInvalidPhone) {
			t.Errorf("для %q ожидалась ErrInvalidPhone, получено %v", raw, err)
		}
	}
}

// TestNormalize_Idempotent проверяет, что повторная нормализация
// не меняет результат.
func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{"+1 (202) 555-0100", "069 12 34 56", "+37369123456"} {
		once, err := Normalize(raw)
		if err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("неожиданная ошибка повторной нормализации: %v", err)
		}
		if once != twice {
			t.Errorf("нормализация не идемпотентна: %q -> %q -> %q", raw, once, twice)
		}
	}
}

// TestNormalize_SameKey проверяет, что разные представления одного
// номера дают один ключ.
func TestNormalize_SameKey(t *testing.T) {
	a, _ := Normalize("+1 (202) 555-0100")
	b, _ := Normalize("+12025550100")
	if a != b {
		t.Errorf("ожидался одинаковый ключ, получено %q и %q", a, b)
	}
}

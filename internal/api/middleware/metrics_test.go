package middleware

import "testing"

// TestNormalizePath проверяет нормализацию путей для лейблов метрик.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/health/ready", "/health/ready"},
		{"/metrics", "/metrics"},
		{"/records/+37369123456", "/records/{phone}"},
		{"/records/+37369123456/photos/20260830-120000-1.jpg", "/records/{phone}/photos/{file}"},
		{"/unknown", "/unknown"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("%s: ожидалось %s, получено %s", tt.path, tt.want, got)
		}
	}
}

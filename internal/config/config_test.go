package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setEnvVars устанавливает переменные окружения для теста и возвращает
// функцию очистки. Всегда вызывать defer cleanup().
func setEnvVars(t *testing.T, vars map[string]string) func() {
	t.Helper()

	// Сохраняем оригинальные значения
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for k := range vars {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
	}

	// Устанавливаем новые
	for k, v := range vars {
		os.Setenv(k, v)
	}

	return func() {
		for k := range vars {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// clearAllPAEnvVars очищает все переменные окружения PA_* для чистого теста.
func clearAllPAEnvVars(t *testing.T) func() {
	t.Helper()
	keys := []string{
		"PA_PORT", "PA_BASE_PATH", "PA_API_KEYS",
		"PA_DB_BACKEND", "PA_DB_HOST", "PA_DB_PORT", "PA_DB_NAME",
		"PA_DB_USER", "PA_DB_PASSWORD", "PA_DB_SSL_MODE",
		"PA_MAX_UPLOAD_SIZE", "PA_CACHE_SIZE", "PA_CACHE_TTL",
		"PA_LOG_LEVEL", "PA_LOG_FORMAT", "PA_TLS_CERT", "PA_TLS_KEY",
		"PA_SHUTDOWN_TIMEOUT", "PA_DEPHEALTH_CHECK_INTERVAL", "PA_DEPHEALTH_GROUP",
	}
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
		os.Unsetenv(k)
	}
	return func() {
		for _, k := range keys {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// requiredEnvVars возвращает минимальный набор обязательных переменных
// для бэкенда memory.
func requiredEnvVars() map[string]string {
	return map[string]string{
		"PA_BASE_PATH":  "/tmp/proassist",
		"PA_API_KEYS":   "test-key-1",
		"PA_DB_BACKEND": "memory",
	}
}

// TestLoad_DefaultValues проверяет значения по умолчанию.
func TestLoad_DefaultValues(t *testing.T) {
	defer clearAllPAEnvVars(t)()
	defer setEnvVars(t, requiredEnvVars())()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("порт: ожидалось 8080, получено %d", cfg.Port)
	}
	if cfg.MaxUploadSize != 33554432 {
		t.Errorf("лимит запроса: ожидалось 33554432, получено %d", cfg.MaxUploadSize)
	}
	if cfg.CacheSize != 1024 {
		t.Errorf("размер кэша: ожидалось 1024, получено %d", cfg.CacheSize)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("TTL кэша: ожидалось 30s, получено %v", cfg.CacheTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("уровень логирования: ожидался info, получен %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("формат логов: ожидался json, получен %s", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown timeout: ожидалось 5s, получено %v", cfg.ShutdownTimeout)
	}
	if cfg.DephealthGroup != "proassist" {
		t.Errorf("группа dephealth: ожидалось proassist, получено %s", cfg.DephealthGroup)
	}
}

// TestLoad_MissingRequired проверяет ошибку при отсутствии обязательных переменных.
func TestLoad_MissingRequired(t *testing.T) {
	defer clearAllPAEnvVars(t)()

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка при отсутствии PA_BASE_PATH")
	}
}

// TestLoad_APIKeys проверяет разбор списка ключей.
func TestLoad_APIKeys(t *testing.T) {
	defer clearAllPAEnvVars(t)()
	vars := requiredEnvVars()
	vars["PA_API_KEYS"] = " key-one , key-two ,, "
	defer setEnvVars(t, vars)()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("ошибка загрузки конфигурации: %v", err)
	}

	if len(cfg.APIKeys) != 2 {
		t.Fatalf("ожидалось 2 ключа, получено %d", len(cfg.APIKeys))
	}
	if cfg.APIKeys[0] != "key-one" || cfg.APIKeys[1] != "key-two" {
		t.Errorf("ключи разобраны неверно: %v", cfg.APIKeys)
	}
}

// TestLoad_EmptyAPIKeys проверяет ошибку при пустом списке ключей.
func TestLoad_EmptyAPIKeys(t *testing.T) {
	defer clearAllPAEnvVars(t)()
	vars := requiredEnvVars()
	vars["PA_API_KEYS"] = " , , "
	defer setEnvVars(t, vars)()

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка при пустом списке ключей")
	}
}

// TestLoad_PostgresRequiresDBParams проверяет обязательность параметров
// PostgreSQL для бэкенда postgres.
func TestLoad_PostgresRequiresDBParams(t *testing.T) {
	defer clearAllPAEnvVars(t)()
	vars := requiredEnvVars()
	vars["PA_DB_BACKEND"] = "postgres"
	defer setEnvVars(t, vars)()

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка при отсутствии PA_DB_NAME")
	}
}

// TestLoad_InvalidBackend проверяет отклонение недопустимого бэкенда.
func TestLoad_InvalidBackend(t *testing.T) {
	defer clearAllPAEnvVars(t)()
	vars := requiredEnvVars()
	vars["PA_DB_BACKEND"] = "sqlite"
	defer setEnvVars(t, vars)()

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка для недопустимого бэкенда")
	}
}

// TestLoad_TLSPairValidation проверяет, что сертификат и ключ задаются парой.
func TestLoad_TLSPairValidation(t *testing.T) {
	defer clearAllPAEnvVars(t)()
	vars := requiredEnvVars()
	vars["PA_TLS_CERT"] = "/tmp/tls.crt"
	defer setEnvVars(t, vars)()

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка при сертификате без ключа")
	}
}

// TestLoad_InvalidPort проверяет отклонение порта вне диапазона.
func TestLoad_InvalidPort(t *testing.T) {
	defer clearAllPAEnvVars(t)()
	vars := requiredEnvVars()
	vars["PA_PORT"] = "70000"
	defer setEnvVars(t, vars)()

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка для порта вне диапазона")
	}
}

// TestDatabaseDSN проверяет формирование строки подключения.
func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db.local", DBPort: 5433, DBName: "proassist",
		DBUser: "pa", DBPassword: "secret", DBSSLMode: "disable",
	}

	want := "host=db.local port=5433 dbname=proassist user=pa password=secret sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("ожидалось %q, получено %q", want, got)
	}
}

// TestParseLogLevel проверяет разбор уровней логирования.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: ожидалась ошибка", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: неожиданная ошибка: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: ожидалось %v, получено %v", tt.in, tt.want, got)
		}
	}
}

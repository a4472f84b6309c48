// Пакет config — загрузка и валидация конфигурации ProAssist
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации ProAssist.
// Конструируется один раз при старте и передаётся по ссылке
// в компоненты — без чтения глобального состояния по месту.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Базовая директория хранилища (корень для поддерева records)
	BasePath string
	// Пре-шаренные API-ключи (заголовок X-API-Key)
	APIKeys []string
	// Бэкенд метаданных: postgres или memory
	DBBackend string
	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Пользователь базы данных
	DBUser string
	// Пароль базы данных
	DBPassword string
	// Режим SSL подключения к PostgreSQL
	DBSSLMode string
	// Максимальный размер multipart-запроса в байтах
	MaxUploadSize int64
	// Максимальное количество записей в LRU-кэше метаданных
	CacheSize int
	// TTL записи LRU-кэша
	CacheTTL time.Duration
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Путь к TLS сертификату (опционально)
	TLSCert string
	// Путь к TLS приватному ключу (опционально)
	TLSKey string
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics
	DephealthGroup string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
// Файл .env в рабочей директории подхватывается, если существует.
func Load() (*Config, error) {
	// .env — удобство локальной разработки, отсутствие файла не ошибка
	_ = godotenv.Load()

	cfg := &Config{}

	// PA_PORT — порт HTTP-сервера (по умолчанию 8080)
	port, err := getEnvInt("PA_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("PA_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PA_PORT: значение %d вне диапазона 1-65535", port)
	}
	cfg.Port = port

	// PA_BASE_PATH — обязательный, корень хранилища
	cfg.BasePath, err = getEnvRequired("PA_BASE_PATH")
	if err != nil {
		return nil, err
	}

	// PA_API_KEYS — обязательный, список ключей через запятую
	rawKeys, err := getEnvRequired("PA_API_KEYS")
	if err != nil {
		return nil, err
	}
	for _, k := range strings.Split(rawKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			cfg.APIKeys = append(cfg.APIKeys, k)
		}
	}
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("PA_API_KEYS: не задано ни одного непустого ключа")
	}

	// PA_DB_BACKEND — бэкенд метаданных (по умолчанию postgres)
	cfg.DBBackend = getEnvDefault("PA_DB_BACKEND", "postgres")
	if cfg.DBBackend != "postgres" && cfg.DBBackend != "memory" {
		return nil, fmt.Errorf("PA_DB_BACKEND: недопустимое значение %q, допустимые: postgres, memory", cfg.DBBackend)
	}

	// Параметры PostgreSQL (обязательны только для бэкенда postgres)
	if cfg.DBBackend == "postgres" {
		cfg.DBHost = getEnvDefault("PA_DB_HOST", "localhost")

		cfg.DBPort, err = getEnvInt("PA_DB_PORT", 5432)
		if err != nil {
			return nil, fmt.Errorf("PA_DB_PORT: %w", err)
		}

		cfg.DBName, err = getEnvRequired("PA_DB_NAME")
		if err != nil {
			return nil, err
		}
		cfg.DBUser, err = getEnvRequired("PA_DB_USER")
		if err != nil {
			return nil, err
		}
		cfg.DBPassword, err = getEnvRequired("PA_DB_PASSWORD")
		if err != nil {
			return nil, err
		}

		cfg.DBSSLMode = getEnvDefault("PA_DB_SSL_MODE", "disable")
	}

	// PA_MAX_UPLOAD_SIZE — лимит multipart-запроса (по умолчанию 32 MB)
	cfg.MaxUploadSize, err = getEnvInt64("PA_MAX_UPLOAD_SIZE", 33554432)
	if err != nil {
		return nil, fmt.Errorf("PA_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("PA_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}

	// PA_CACHE_SIZE — размер LRU-кэша метаданных (по умолчанию 1024)
	cfg.CacheSize, err = getEnvInt("PA_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("PA_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("PA_CACHE_SIZE: значение должно быть положительным")
	}

	// PA_CACHE_TTL — TTL записи кэша (по умолчанию 30s)
	cfg.CacheTTL, err = getEnvDuration("PA_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PA_CACHE_TTL: %w", err)
	}

	// PA_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("PA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("PA_LOG_LEVEL: %w", err)
	}

	// PA_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("PA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("PA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// PA_TLS_CERT / PA_TLS_KEY — TLS опционален, но задаётся парой
	cfg.TLSCert = getEnvDefault("PA_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("PA_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("PA_TLS_CERT и PA_TLS_KEY должны задаваться вместе")
	}

	// PA_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("PA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PA_SHUTDOWN_TIMEOUT: %w", err)
	}

	// PA_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("PA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// PA_DEPHEALTH_GROUP — имя группы в метриках topologymetrics
	cfg.DephealthGroup = getEnvDefault("PA_DEPHEALTH_GROUP", "proassist")

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL
// (для метрик topologymetrics и golang-migrate).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

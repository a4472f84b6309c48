// auth.go — middleware аутентификации по пре-шаренному API-ключу.
// Ключ передаётся в заголовке X-API-Key и сравнивается за константное
// время. Защищается только префикс /records; CORS preflight (OPTIONS)
// и GET фотографий пропускаются без ключа, чтобы <img src="..."> работал
// без заголовков.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/UmanetAlexandru/pro-assist/internal/api/errors"
)

// HeaderAPIKey — заголовок с API-ключом.
const HeaderAPIKey = "X-API-Key"

// protectedPrefix — префикс путей, требующих аутентификации.
const protectedPrefix = "/records/"

// APIKeyAuth — middleware аутентификации по API-ключу.
type APIKeyAuth struct {
	// keyHashes — SHA-256 хэши настроенных ключей.
	// Сравнение хэшей фиксированной длины исключает утечку длины ключа.
	keyHashes [][sha256.Size]byte
	logger    *slog.Logger
}

// NewAPIKeyAuth создаёт middleware с набором допустимых ключей.
func NewAPIKeyAuth(keys []string, logger *slog.Logger) *APIKeyAuth {
	hashes := make([][sha256.Size]byte, 0, len(keys))
	for _, k := range keys {
		hashes = append(hashes, sha256.Sum256([]byte(k)))
	}

	logger.Info("API-key аутентификация настроена",
		slog.Int("keys_configured", len(hashes)),
	)

	return &APIKeyAuth{
		keyHashes: hashes,
		logger:    logger.With(slog.String("component", "apikey_auth")),
	}
}

// shouldBypass определяет запросы, не требующие ключа.
func shouldBypass(r *http.Request) bool {
	path := r.URL.Path

	// Защищается только /records/**
	if !strings.HasPrefix(path, protectedPrefix) {
		return true
	}

	// CORS preflight
	if r.Method == http.MethodOptions {
		return true
	}

	// Публичные GET фотографий: /records/{key}/photos/{file}
	return r.Method == http.MethodGet && strings.Contains(path, "/photos/")
}

// Middleware возвращает HTTP middleware аутентификации.
func (a *APIKeyAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldBypass(r) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(HeaderAPIKey)
			if provided == "" {
				a.logger.Warn("Отсутствует API-ключ",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				apierrors.Unauthorized(w, "Отсутствует API-ключ")
				return
			}

			if !a.matches(provided) {
				a.logger.Warn("Недействительный API-ключ",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				apierrors.Unauthorized(w, "Недействительный API-ключ")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matches сравнивает предъявленный ключ с каждым настроенным
// за константное время.
func (a *APIKeyAuth) matches(provided string) bool {
	providedHash := sha256.Sum256([]byte(provided))

	ok := false
	for i := range a.keyHashes {
		if subtle.ConstantTimeCompare(a.keyHashes[i][:], providedHash[:]) == 1 {
			ok = true
		}
	}
	return ok
}

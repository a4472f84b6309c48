// health.go — liveness и readiness endpoint'ы ProAssist.
// Liveness — процесс жив; readiness — хранилище фотографий доступно
// на запись и бэкенд метаданных отвечает.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DependencyChecker — проверка готовности внешней зависимости.
// Возвращает статус ("ok", "fail") и сообщение.
type DependencyChecker interface {
	CheckReady() (status string, message string)
}

// HealthHandler — обработчики health endpoint'ов.
type HealthHandler struct {
	version     string
	storageRoot string
	// dbChecker может быть nil (бэкенд memory)
	dbChecker DependencyChecker
	logger    *slog.Logger
}

// NewHealthHandler создаёт обработчики health endpoint'ов.
func NewHealthHandler(version, storageRoot string, dbChecker DependencyChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		version:     version,
		storageRoot: storageRoot,
		dbChecker:   dbChecker,
		logger:      logger.With(slog.String("component", "health")),
	}
}

// healthResponse — тело ответа health endpoint'ов.
type healthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Live обрабатывает GET /health/live.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: "proassist",
		Version: h.version,
	})
}

// Ready обрабатывает GET /health/ready.
// Проверяет возможность записи в корень хранилища фотографий и,
// при наличии, готовность бэкенда метаданных.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	checks := make(map[string]string)
	healthy := true

	if err := h.checkStorageWritable(); err != nil {
		checks["storage"] = "fail: " + err.Error()
		healthy = false
	} else {
		checks["storage"] = "ok"
	}

	if h.dbChecker != nil {
		status, message := h.dbChecker.CheckReady()
		checks["database"] = status + ": " + message
		if status != "ok" {
			healthy = false
		}
	}

	statusCode := http.StatusOK
	status := "ok"
	if !healthy {
		statusCode = http.StatusServiceUnavailable
		status = "fail"
		h.logger.Warn("Сервис не готов", slog.Any("checks", checks))
	}

	writeHealth(w, statusCode, healthResponse{
		Status:  status,
		Service: "proassist",
		Version: h.version,
		Checks:  checks,
	})
}

// checkStorageWritable создаёт и удаляет пробный файл в корне хранилища.
func (h *HealthHandler) checkStorageWritable() error {
	probe := filepath.Join(h.storageRoot, ".probe-"+uuid.New().String())
	if err := os.WriteFile(probe, []byte("probe"), 0o640); err != nil {
		return err
	}
	return os.Remove(probe)
}

func writeHealth(w http.ResponseWriter, statusCode int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

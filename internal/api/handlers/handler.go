// Пакет handlers — HTTP-обработчики API ProAssist.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/UmanetAlexandru/pro-assist/internal/service"
)

// APIHandler — обработчики операций с записями телефонов.
type APIHandler struct {
	storage       *service.Storage
	maxUploadSize int64
	logger        *slog.Logger
}

// NewAPIHandler создаёт набор обработчиков API.
// maxUploadSize — лимит суммарного размера тела multipart-запроса в байтах.
func NewAPIHandler(storage *service.Storage, maxUploadSize int64, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		storage:       storage,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// writeJSON сериализует payload в JSON-ответ с указанным статус-кодом.
func (h *APIHandler) writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Ошибка сериализации ответа",
			slog.String("error", err.Error()),
		)
	}
}

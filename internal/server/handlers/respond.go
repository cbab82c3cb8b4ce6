package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/garageboard/pkg/api"
)

// EventPublisher получает события после каждой подтвержденной записи
type EventPublisher interface {
	Publish(event api.BoardEvent)
}

// writeJSON кодирует ответ; ошибки кодирования только логируются,
// так как заголовок уже отправлен
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg, detail string) {
	writeJSON(w, logger, status, api.ErrorResponse{Error: msg, Message: detail})
}

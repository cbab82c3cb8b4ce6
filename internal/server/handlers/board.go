package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/storage"
	"github.com/iudanet/garageboard/internal/validation"
	"github.com/iudanet/garageboard/pkg/api"
)

// BoardHandler обрабатывает запросы доски: чтение карточек, счетчики и перемещение
type BoardHandler struct {
	logger  *slog.Logger
	storage storage.AppointmentStorage
	events  EventPublisher
}

// NewBoardHandler создает новый handler доски
func NewBoardHandler(logger *slog.Logger, s storage.AppointmentStorage, events EventPublisher) *BoardHandler {
	return &BoardHandler{
		logger:  logger,
		storage: s,
		events:  events,
	}
}

// Board обрабатывает GET /appointments/board
func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.storage.ListAppointments(r.Context())
	if err != nil {
		h.logger.Error("Failed to list appointments", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error", "")
		return
	}

	resp := api.BoardResponse{Appointments: make([]api.Appointment, 0, len(appointments))}
	for _, a := range appointments {
		resp.Appointments = append(resp.Appointments, toAPIAppointment(a))
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Stats обрабатывает GET /appointments/stats
func (h *BoardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.storage.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to count appointments", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error", "")
		return
	}

	resp := api.StatsResponse{ByStatus: make(map[string]int, len(stats.ByStatus)), Total: stats.Total}
	for status, n := range stats.ByStatus {
		resp.ByStatus[string(status)] = n
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Move обрабатывает PATCH /appointments/{id}/move.
// Устаревшая версия дает 409 с текущим состоянием карточки.
func (h *BoardHandler) Move(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	operator, _ := GetOperator(r.Context())

	var req api.MoveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode move request", "error", err, "appointment_id", id)
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	to := models.Placement{Status: models.AppointmentStatus(req.Status), Position: req.Position}
	if err := validation.ValidatePlacement(to); err != nil {
		writeError(w, h.logger, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	if req.Version <= 0 {
		writeError(w, h.logger, http.StatusUnprocessableEntity, "validation failed", "version is required")
		return
	}

	moved, err := h.storage.MoveAppointment(r.Context(), id, to, req.Version)
	if err != nil {
		var conflict *storage.ConflictError
		switch {
		case errors.As(err, &conflict):
			h.logger.Info("Move rejected: stale version",
				"appointment_id", id,
				"operator", operator,
				"provided_version", req.Version,
				"current_version", conflict.CurrentVersion,
			)
			h.writeConflict(w, conflict)
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, h.logger, http.StatusNotFound, "appointment not found", "")
		default:
			h.logger.Error("Failed to move appointment", "error", err, "appointment_id", id)
			writeError(w, h.logger, http.StatusInternalServerError, "internal server error", "")
		}
		return
	}

	h.logger.Info("Appointment moved",
		"appointment_id", id,
		"operator", operator,
		"status", moved.Status,
		"position", moved.Position,
		"version", moved.Version,
	)

	h.events.Publish(api.BoardEvent{Type: api.EventAppointmentMoved, EntityID: id, Version: moved.Version})

	writeJSON(w, h.logger, http.StatusOK, api.MoveResponse{
		UpdatedAt: moved.UpdatedAt,
		ID:        moved.ID,
		Status:    string(moved.Status),
		Position:  moved.Position,
		Version:   moved.Version,
	})
}

func (h *BoardHandler) writeConflict(w http.ResponseWriter, conflict *storage.ConflictError) {
	resp := api.ConflictResponse{CurrentVersion: conflict.CurrentVersion}
	if current, ok := conflict.Current.(*models.Appointment); ok {
		state, err := json.Marshal(toAPIAppointment(current))
		if err != nil {
			h.logger.Error("Failed to encode current state", "error", err)
		} else {
			resp.CurrentState = state
		}
	}
	writeJSON(w, h.logger, http.StatusConflict, resp)
}

func toAPIAppointment(a *models.Appointment) api.Appointment {
	return api.Appointment{
		ScheduledAt:  a.ScheduledAt,
		UpdatedAt:    a.UpdatedAt,
		ID:           a.ID,
		CustomerID:   a.CustomerID,
		VehicleID:    a.VehicleID,
		CustomerName: a.CustomerName,
		VehicleLabel: a.VehicleLabel,
		Service:      a.Service,
		Status:       string(a.Status),
		Position:     a.Position,
		Version:      a.Version,
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/storage"
	"github.com/iudanet/garageboard/internal/validation"
	"github.com/iudanet/garageboard/pkg/api"
)

const (
	// SearchLimit ограничивает выдачу поиска клиентов по телефону
	SearchLimit = 20
	// MinSearchDigits минимальное количество цифр в запросе поиска
	MinSearchDigits = 3

	// безусловная запись (без If-Match) перечитывает запись при гонке
	unconditionalAttempts = 3
)

// recordKind описывает один тип редактируемой записи
type recordKind[T any] struct {
	get      func(ctx context.Context, id string) (*T, error)
	update   func(ctx context.Context, v *T, expected int64) (*T, error)
	validate func(v *T) error
	version  func(v *T) int64
	resource string
	event    string
}

// RecordHandler обрабатывает /admin/customers и /admin/vehicles
type RecordHandler struct {
	logger    *slog.Logger
	storage   storage.RecordStorage
	events    EventPublisher
	customers recordKind[models.Customer]
	vehicles  recordKind[models.Vehicle]
}

// NewRecordHandler создает handler записей клиентов и автомобилей
func NewRecordHandler(logger *slog.Logger, s storage.RecordStorage, events EventPublisher) *RecordHandler {
	return &RecordHandler{
		logger:  logger,
		storage: s,
		events:  events,
		customers: recordKind[models.Customer]{
			get:      s.GetCustomer,
			update:   s.UpdateCustomer,
			validate: validation.ValidateCustomer,
			version:  func(c *models.Customer) int64 { return c.Version },
			resource: "customers",
			event:    api.EventCustomerUpdated,
		},
		vehicles: recordKind[models.Vehicle]{
			get:      s.GetVehicle,
			update:   s.UpdateVehicle,
			validate: validation.ValidateVehicle,
			version:  func(v *models.Vehicle) int64 { return v.Version },
			resource: "vehicles",
			event:    api.EventVehicleUpdated,
		},
	}
}

// GetCustomer обрабатывает GET /admin/customers/{id}
func (h *RecordHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	getRecord(h, h.customers, w, r, false)
}

// CustomerProfile обрабатывает GET /admin/customers/{id}/profile с поддержкой If-None-Match
func (h *RecordHandler) CustomerProfile(w http.ResponseWriter, r *http.Request) {
	getRecord(h, h.customers, w, r, true)
}

// PatchCustomer обрабатывает PATCH /admin/customers/{id} с If-Match
func (h *RecordHandler) PatchCustomer(w http.ResponseWriter, r *http.Request) {
	patchRecord(h, h.customers, w, r)
}

// GetVehicle обрабатывает GET /admin/vehicles/{id}
func (h *RecordHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	getRecord(h, h.vehicles, w, r, false)
}

// VehicleProfile обрабатывает GET /admin/vehicles/{id}/profile с поддержкой If-None-Match
func (h *RecordHandler) VehicleProfile(w http.ResponseWriter, r *http.Request) {
	getRecord(h, h.vehicles, w, r, true)
}

// PatchVehicle обрабатывает PATCH /admin/vehicles/{id} с If-Match
func (h *RecordHandler) PatchVehicle(w http.ResponseWriter, r *http.Request) {
	patchRecord(h, h.vehicles, w, r)
}

// SearchCustomers обрабатывает GET /admin/customers?phone=
func (h *RecordHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	digits := validation.PhoneDigits(phone)
	if len(digits) < MinSearchDigits {
		writeError(w, h.logger, http.StatusBadRequest, "invalid phone query", "at least 3 digits are required")
		return
	}

	found, err := h.storage.SearchCustomersByPhone(r.Context(), digits, SearchLimit)
	if err != nil {
		h.logger.Error("Failed to search customers", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error", "")
		return
	}

	customers := make([]models.Customer, 0, len(found))
	for _, c := range found {
		customers = append(customers, *c)
	}

	writeJSON(w, h.logger, http.StatusOK, api.DataResponse[[]models.Customer]{Data: customers})
}

func getRecord[T any](h *RecordHandler, kind recordKind[T], w http.ResponseWriter, r *http.Request, conditional bool) {
	id := r.PathValue("id")

	record, err := kind.get(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, kind.resource, id, err)
		return
	}

	tag := ETag(kind.resource, id, kind.version(record))
	w.Header().Set("ETag", tag)

	if conditional {
		if inm := r.Header.Get("If-None-Match"); inm != "" && matchETag(inm, tag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	writeJSON(w, h.logger, http.StatusOK, api.DataResponse[*T]{Data: record})
}

func patchRecord[T any](h *RecordHandler, kind recordKind[T], w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	operator, _ := GetOperator(ctx)
	ifMatch := r.Header.Get("If-Match")

	var patch models.Patch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&patch); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidatePatch(patch); err != nil {
		writeError(w, h.logger, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}

	for attempt := 1; attempt <= unconditionalAttempts; attempt++ {
		current, err := kind.get(ctx, id)
		if err != nil {
			h.writeStorageError(w, kind.resource, id, err)
			return
		}

		if ifMatch != "" && !matchETag(ifMatch, ETag(kind.resource, id, kind.version(current))) {
			h.logger.Info("Patch rejected: stale entity tag", "resource", kind.resource, "id", id, "operator", operator)
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}

		updated, err := models.ApplyPatch(*current, patch)
		if err != nil {
			writeError(w, h.logger, http.StatusUnprocessableEntity, "validation failed", err.Error())
			return
		}
		if err := kind.validate(&updated); err != nil {
			writeError(w, h.logger, http.StatusUnprocessableEntity, "validation failed", err.Error())
			return
		}

		saved, err := kind.update(ctx, &updated, kind.version(current))
		if errors.Is(err, storage.ErrVersionConflict) {
			if ifMatch != "" {
				// Другой оператор записал между чтением и записью
				w.WriteHeader(http.StatusPreconditionFailed)
				return
			}
			h.logger.Debug("Unconditional patch raced, retrying", "resource", kind.resource, "id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			h.writeStorageError(w, kind.resource, id, err)
			return
		}

		version := kind.version(saved)
		h.logger.Info("Record updated",
			"resource", kind.resource,
			"id", id,
			"operator", operator,
			"fields", patch.Keys(),
			"conditional", ifMatch != "",
			"version", version,
		)
		h.events.Publish(api.BoardEvent{Type: kind.event, EntityID: id, Version: version})

		w.Header().Set("ETag", ETag(kind.resource, id, version))
		writeJSON(w, h.logger, http.StatusOK, api.DataResponse[*T]{Data: saved})
		return
	}

	writeError(w, h.logger, http.StatusConflict, "record is being modified concurrently", "retry the request")
}

func (h *RecordHandler) writeStorageError(w http.ResponseWriter, resource, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "record not found", "")
		return
	}
	h.logger.Error("Record storage failed", "error", err, "resource", resource, "id", id)
	writeError(w, h.logger, http.StatusInternalServerError, "internal server error", "")
}

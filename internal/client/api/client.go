// Package api is the HTTP client of the scheduling board backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/pkg/api"
)

// Record resources addressed by the admin endpoints.
const (
	ResourceCustomers = "customers"
	ResourceVehicles  = "vehicles"
)

// Record is a single entity as returned by the admin endpoints, with its tag.
type Record struct {
	Data json.RawMessage
	ETag string
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// GetBoard получает все карточки доски
func (c *Client) GetBoard(ctx context.Context) ([]models.Appointment, error) {
	var resp api.BoardResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/appointments/board", nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("get board request failed: %w", err)
	}

	cards := make([]models.Appointment, 0, len(resp.Appointments))
	for _, a := range resp.Appointments {
		cards = append(cards, appointmentFromAPI(a))
	}
	return cards, nil
}

// GetStats получает счетчики карточек по колонкам
func (c *Client) GetStats(ctx context.Context) (*models.BoardStats, error) {
	var resp api.StatsResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/appointments/stats", nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("get stats request failed: %w", err)
	}

	stats := &models.BoardStats{
		ByStatus: make(map[models.AppointmentStatus]int, len(resp.ByStatus)),
		Total:    resp.Total,
	}
	for k, v := range resp.ByStatus {
		stats.ByStatus[models.AppointmentStatus(k)] = v
	}
	return stats, nil
}

// MoveAppointment отправляет перемещение карточки с последней известной версией.
// A stale version yields *ConflictError.
func (c *Client) MoveAppointment(ctx context.Context, id string, to models.Placement, version int64) (*models.MoveResult, error) {
	req := api.MoveRequest{
		Status:   string(to.Status),
		Position: to.Position,
		Version:  version,
	}

	var resp api.MoveResponse
	path := fmt.Sprintf("/appointments/%s/move", url.PathEscape(id))
	if _, err := c.doRequest(ctx, http.MethodPatch, path, req, &resp, nil); err != nil {
		return nil, fmt.Errorf("move request failed: %w", err)
	}

	return &models.MoveResult{
		UpdatedAt: resp.UpdatedAt,
		ID:        resp.ID,
		Status:    models.AppointmentStatus(resp.Status),
		Position:  resp.Position,
		Version:   resp.Version,
	}, nil
}

// GetRecord fetches the current state of a customer or vehicle.
func (c *Client) GetRecord(ctx context.Context, resource, id string) (*Record, error) {
	path := fmt.Sprintf("/admin/%s/%s", resource, url.PathEscape(id))
	rec, err := c.getRecord(ctx, path, "")
	if err != nil {
		return nil, fmt.Errorf("get %s request failed: %w", resource, err)
	}
	return rec, nil
}

// GetProfile fetches a record profile. When ifNoneMatch is set and still
// current, ErrNotModified is returned.
func (c *Client) GetProfile(ctx context.Context, resource, id, ifNoneMatch string) (*Record, error) {
	path := fmt.Sprintf("/admin/%s/%s/profile", resource, url.PathEscape(id))
	rec, err := c.getRecord(ctx, path, ifNoneMatch)
	if err != nil {
		return nil, fmt.Errorf("get %s profile request failed: %w", resource, err)
	}
	return rec, nil
}

// PatchRecord sends a partial update. An empty ifMatch sends the patch
// unconditionally. A stale tag yields ErrPreconditionFailed.
func (c *Client) PatchRecord(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*Record, error) {
	var hdr http.Header
	if ifMatch != "" {
		hdr = http.Header{"If-Match": []string{ifMatch}}
	}

	var resp api.DataResponse[json.RawMessage]
	path := fmt.Sprintf("/admin/%s/%s", resource, url.PathEscape(id))
	respHdr, err := c.doRequest(ctx, http.MethodPatch, path, patch, &resp, hdr)
	if err != nil {
		return nil, fmt.Errorf("patch %s request failed: %w", resource, err)
	}

	return &Record{Data: resp.Data, ETag: respHdr.Get("ETag")}, nil
}

// SearchCustomers ищет клиентов по номеру телефона
func (c *Client) SearchCustomers(ctx context.Context, phone string) ([]models.Customer, error) {
	var resp api.DataResponse[[]models.Customer]
	path := "/admin/customers?phone=" + url.QueryEscape(phone)
	if _, err := c.doRequest(ctx, http.MethodGet, path, nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("customer search request failed: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) getRecord(ctx context.Context, path, ifNoneMatch string) (*Record, error) {
	var hdr http.Header
	if ifNoneMatch != "" {
		hdr = http.Header{"If-None-Match": []string{ifNoneMatch}}
	}

	var resp api.DataResponse[json.RawMessage]
	respHdr, err := c.doRequest(ctx, http.MethodGet, path, nil, &resp, hdr)
	if err != nil {
		return nil, err
	}
	return &Record{Data: resp.Data, ETag: respHdr.Get("ETag")}, nil
}

// doRequest выполняет HTTP запрос и возвращает заголовки ответа
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}, hdr http.Header) (http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range hdr {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return resp.Header, ErrNotModified
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusPreconditionFailed:
		return resp.Header, conflictFromBody(resp.StatusCode, respBody)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			msg := errResp.Message
			if msg == "" {
				msg = errResp.Error
			}
			return resp.Header, &StatusError{StatusCode: resp.StatusCode, Message: msg}
		}
		return resp.Header, &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.Header, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

// conflictFromBody turns a 409/412 body into *ConflictError. An empty or
// unrecognised 412 body means a bare precondition failure.
func conflictFromBody(status int, body []byte) error {
	var cr api.ConflictResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &cr); err == nil && (cr.CurrentVersion != 0 || len(cr.CurrentState) > 0) {
			return &ConflictError{
				StatusCode:     status,
				CurrentVersion: cr.CurrentVersion,
				CurrentState:   cr.CurrentState,
			}
		}
	}
	if status == http.StatusPreconditionFailed {
		return ErrPreconditionFailed
	}
	return &ConflictError{StatusCode: status}
}

func appointmentFromAPI(a api.Appointment) models.Appointment {
	return models.Appointment{
		ScheduledAt:  a.ScheduledAt,
		UpdatedAt:    a.UpdatedAt,
		ID:           a.ID,
		CustomerID:   a.CustomerID,
		VehicleID:    a.VehicleID,
		CustomerName: a.CustomerName,
		VehicleLabel: a.VehicleLabel,
		Service:      a.Service,
		Status:       models.AppointmentStatus(a.Status),
		Position:     a.Position,
		Version:      a.Version,
	}
}

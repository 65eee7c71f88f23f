package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"balloon-stock-api/internal/service"
	"balloon-stock-api/pkg/apierror"
	"balloon-stock-api/pkg/response"
)

// EventHandler handles stock-in and sale event entry, edits, and filtered
// history queries.
type EventHandler struct {
	eventService   *service.EventService
	historyService *service.HistoryService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(eventService *service.EventService, historyService *service.HistoryService) *EventHandler {
	return &EventHandler{
		eventService:   eventService,
		historyService: historyService,
	}
}

// stockInRequest is the stock-in create/update request body.
type stockInRequest struct {
	BalloonID int64  `json:"balloon_id"`
	Qty       int    `json:"qty"`
	Date      string `json:"date"`
}

// saleRequest is the sale create/update request body.
type saleRequest struct {
	BalloonID int64  `json:"balloon_id"`
	Qty       int    `json:"qty"`
	Customer  string `json:"customer"`
	Date      string `json:"date"`
}

// CreateStockIn handles POST /api/v1/stock-in
func (h *EventHandler) CreateStockIn(w http.ResponseWriter, r *http.Request) {
	var req stockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.Qty <= 0 {
		response.Error(w, apierror.ValidationError("invalid stock-in entry",
			apierror.FieldError{Field: "qty", Message: "must be positive"}))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(w, apierror.BadRequest("date must be YYYY-MM-DD"))
		return
	}

	id, err := h.eventService.AddStockIn(r.Context(), req.BalloonID, req.Qty, date)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Created(w, map[string]interface{}{"id": id})
}

// UpdateStockIn handles PUT /api/v1/stock-in/{id}
func (h *EventHandler) UpdateStockIn(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}

	var req stockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.Qty <= 0 {
		response.Error(w, apierror.ValidationError("invalid stock-in entry",
			apierror.FieldError{Field: "qty", Message: "must be positive"}))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(w, apierror.BadRequest("date must be YYYY-MM-DD"))
		return
	}

	if err := h.eventService.UpdateStockIn(r.Context(), id, req.Qty, date); err != nil {
		serviceError(w, err)
		return
	}
	response.NoContent(w)
}

// DeleteStockIn handles DELETE /api/v1/stock-in/{id}
func (h *EventHandler) DeleteStockIn(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}
	if err := h.eventService.DeleteStockIn(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	response.NoContent(w)
}

// ListStockIns handles GET /api/v1/stock-in
// Query parameters: date_from, date_to, code, size, color, manufacturer.
func (h *EventHandler) ListStockIns(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("dates must be YYYY-MM-DD"))
		return
	}

	items, err := h.historyService.QueryStockIns(r.Context(), filter)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, items)
}

// CreateSale handles POST /api/v1/sales
func (h *EventHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := validateSale(req); verr != nil {
		response.Error(w, verr)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(w, apierror.BadRequest("date must be YYYY-MM-DD"))
		return
	}

	id, err := h.eventService.AddSale(r.Context(), req.BalloonID, req.Qty, req.Customer, date)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Created(w, map[string]interface{}{"id": id})
}

// UpdateSale handles PUT /api/v1/sales/{id}
func (h *EventHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}

	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := validateSale(req); verr != nil {
		response.Error(w, verr)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(w, apierror.BadRequest("date must be YYYY-MM-DD"))
		return
	}

	if err := h.eventService.UpdateSale(r.Context(), id, req.Qty, req.Customer, date); err != nil {
		serviceError(w, err)
		return
	}
	response.NoContent(w)
}

// DeleteSale handles DELETE /api/v1/sales/{id}
func (h *EventHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}
	if err := h.eventService.DeleteSale(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	response.NoContent(w)
}

// ListSales handles GET /api/v1/sales
// Query parameters: date_from, date_to, customer, code, size, color, manufacturer.
func (h *EventHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("dates must be YYYY-MM-DD"))
		return
	}

	items, err := h.historyService.QuerySales(r.Context(), filter)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, items)
}

func validateSale(req saleRequest) *apierror.Error {
	var details []apierror.FieldError
	if req.Qty <= 0 {
		details = append(details, apierror.FieldError{Field: "qty", Message: "must be positive"})
	}
	if strings.TrimSpace(req.Customer) == "" {
		details = append(details, apierror.FieldError{Field: "customer", Message: "must not be blank"})
	}
	if len(details) > 0 {
		return apierror.ValidationError("invalid sale entry", details...)
	}
	return nil
}

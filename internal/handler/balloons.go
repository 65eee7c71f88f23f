package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/service"
	"balloon-stock-api/pkg/apierror"
	"balloon-stock-api/pkg/response"
)

// BalloonHandler handles balloon CRUD and the ensure (find-or-create) path.
type BalloonHandler struct {
	balloonService   *service.BalloonService
	inventoryService *service.InventoryService
}

// NewBalloonHandler creates a new balloon handler.
func NewBalloonHandler(balloonService *service.BalloonService, inventoryService *service.InventoryService) *BalloonHandler {
	return &BalloonHandler{
		balloonService:   balloonService,
		inventoryService: inventoryService,
	}
}

// balloonRequest is the create/update/ensure request body.
type balloonRequest struct {
	Code         string  `json:"code"`
	Size         string  `json:"size"`
	Color        string  `json:"color"`
	Price        float64 `json:"price"`
	Manufacturer string  `json:"manufacturer"`
}

func (b *balloonRequest) validate() *apierror.Error {
	var details []apierror.FieldError
	if strings.TrimSpace(b.Code) == "" {
		details = append(details, apierror.FieldError{Field: "code", Message: "must not be blank"})
	}
	if strings.TrimSpace(b.Size) == "" {
		details = append(details, apierror.FieldError{Field: "size", Message: "must not be blank"})
	}
	if strings.TrimSpace(b.Color) == "" {
		details = append(details, apierror.FieldError{Field: "color", Message: "must not be blank"})
	}
	if b.Price < 0 {
		details = append(details, apierror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if len(details) > 0 {
		return apierror.ValidationError("invalid balloon", details...)
	}
	return nil
}

// List handles GET /api/v1/balloons
func (h *BalloonHandler) List(w http.ResponseWriter, r *http.Request) {
	balloons, err := h.balloonService.ListBalloons(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, balloons)
}

// Create handles POST /api/v1/balloons
func (h *BalloonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req balloonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := req.validate(); verr != nil {
		response.Error(w, verr)
		return
	}

	id, err := h.balloonService.AddBalloon(r.Context(), model.Balloon{
		Code:         req.Code,
		Size:         req.Size,
		Color:        req.Color,
		Price:        req.Price,
		Manufacturer: req.Manufacturer,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Created(w, map[string]interface{}{"id": id})
}

// Ensure handles POST /api/v1/balloons/ensure
func (h *BalloonHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	var req balloonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := req.validate(); verr != nil {
		response.Error(w, verr)
		return
	}

	id, err := h.balloonService.EnsureBalloon(r.Context(),
		req.Code, req.Size, req.Color, req.Price, req.Manufacturer)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"id": id})
}

// Get handles GET /api/v1/balloons/{id}
func (h *BalloonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}

	balloon, err := h.balloonService.GetBalloon(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, balloon)
}

// Update handles PUT /api/v1/balloons/{id}
func (h *BalloonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}

	var req balloonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if verr := req.validate(); verr != nil {
		response.Error(w, verr)
		return
	}

	err = h.balloonService.UpdateBalloon(r.Context(), model.Balloon{
		ID:           id,
		Code:         req.Code,
		Size:         req.Size,
		Color:        req.Color,
		Price:        req.Price,
		Manufacturer: req.Manufacturer,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	response.NoContent(w)
}

// Delete handles DELETE /api/v1/balloons/{id}
// Removes the balloon and all of its stock-in and sale events.
func (h *BalloonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}

	if err := h.balloonService.DeleteBalloon(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	response.NoContent(w)
}

// CanSell handles GET /api/v1/balloons/{id}/can-sell?qty=N
// The answer is advisory: stock can change between this check and the sale.
func (h *BalloonHandler) CanSell(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid id"))
		return
	}
	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil || qty <= 0 {
		response.Error(w, apierror.BadRequest("qty must be a positive integer"))
		return
	}

	if _, err := h.balloonService.GetBalloon(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}

	ok, stock, err := h.inventoryService.CanSell(r.Context(), id, qty)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"can_sell": ok,
		"stock":    stock,
		"qty":      qty,
	})
}

// Manufacturers handles GET /api/v1/manufacturers
func (h *BalloonHandler) Manufacturers(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := h.balloonService.ListManufacturers(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, manufacturers)
}

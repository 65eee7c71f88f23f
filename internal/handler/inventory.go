package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"balloon-stock-api/internal/service"
	"balloon-stock-api/pkg/apierror"
	"balloon-stock-api/pkg/response"
)

// InventoryHandler serves the derived inventory view.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Get handles GET /api/v1/inventory?manufacturer=
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inventoryService.GetInventory(r.Context(), r.URL.Query().Get("manufacturer"))
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, rows)
}

// Stream handles GET /api/v1/inventory/stream?manufacturer=
// Delivers the live inventory view as server-sent events: the current
// snapshot immediately, then a fresh one after every data change. The
// subscription is released when the client disconnects.
func (h *InventoryHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Error(w, apierror.InternalError("streaming unsupported"))
		return
	}

	ctx := r.Context()
	updates, err := h.inventoryService.ObserveInventory(ctx, r.URL.Query().Get("manufacturer"))
	if err != nil {
		serviceError(w, err)
		return
	}

	// The stream stays open until the client disconnects; lift the server
	// write timeout for this response.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case rows, open := <-updates:
			if !open {
				return
			}
			data, err := json.Marshal(rows)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "event: inventory\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

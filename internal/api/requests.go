package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/service"
)

// RequestsHandler handles claim request endpoints.
type RequestsHandler struct {
	Engine *service.Engine
}

func writeRequests(w http.ResponseWriter, r *http.Request, requests []model.Request, err error) {
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if !decodeValid(w, r, &req) {
		return
	}

	created, err := h.Engine.CreateRequest(r.Context(), req.ItemID, req.Message, identity(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/requests[?status=].
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" {
		requests, err := h.Engine.ListRequestsByStatus(r.Context(), status, identity(r))
		writeRequests(w, r, requests, err)
		return
	}
	requests, err := h.Engine.ListRequests(r.Context(), identity(r))
	writeRequests(w, r, requests, err)
}

// Get handles GET /api/requests/{id}.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}

	req, err := h.Engine.GetRequest(r.Context(), id, identity(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// UpdateStatus handles PUT /api/requests/{id}/status.
func (h *RequestsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := h.Engine.UpdateRequestStatus(r.Context(), id, req.Status, req.AdminNotes, identity(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/requests/{id}.
func (h *RequestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}

	if err := h.Engine.DeleteRequest(r.Context(), id, identity(r)); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "request deleted"})
}

// ByUser handles GET /api/requests/user/{userID}.
func (h *RequestsHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID", "user")
	if !ok {
		return
	}
	requests, err := h.Engine.ListRequestsByUser(r.Context(), userID, identity(r))
	writeRequests(w, r, requests, err)
}

// ByItem handles GET /api/requests/item/{itemID}.
func (h *RequestsHandler) ByItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemID", "item")
	if !ok {
		return
	}
	requests, err := h.Engine.ListRequestsByItem(r.Context(), itemID, identity(r))
	writeRequests(w, r, requests, err)
}

// ByStatus handles GET /api/requests/status/{status}.
func (h *RequestsHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Engine.ListRequestsByStatus(r.Context(), r.PathValue("status"), identity(r))
	writeRequests(w, r, requests, err)
}

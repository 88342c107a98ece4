package handlers

import (
	"log/slog"
	"net/http"

	"wizardgo/internal/item"
	"wizardgo/internal/middleware"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/response"
)

// InstitutionItemHandler serves item management for a signed-in institution.
type InstitutionItemHandler struct {
	service *item.Service
}

func NewInstitutionItemHandler(service *item.Service) *InstitutionItemHandler {
	return &InstitutionItemHandler{service: service}
}

func (h *InstitutionItemHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "institution_items")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	items, err := h.service.InstitutionItems(r.Context(), claims.InstitutionID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, items)
}

func (h *InstitutionItemHandler) Spawn(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "institution_spawn_item")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req item.SpawnRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	spawned, err := h.service.SpawnForInstitution(r.Context(), claims.InstitutionID, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, spawned)
}

func (h *InstitutionItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "institution_delete_item")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	itemID, err := response.PathUUID(r, "itemID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.DeleteForInstitution(r.Context(), claims.InstitutionID, itemID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"wizardgo/internal/item"
	"wizardgo/internal/shared/response"
)

type ItemHandler struct {
	service *item.Service
}

func NewItemHandler(service *item.Service) *ItemHandler {
	return &ItemHandler{service: service}
}

type collectRequest struct {
	ItemID    uuid.UUID `json:"item_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type useRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

type syncRequest struct {
	PlayerID  uuid.UUID `json:"player_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

func (h *ItemHandler) Proximity(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "proximity")

	mapID, err := response.PathUUID(r, "mapID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	lat, err := response.QueryFloat(r, "latitude")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	lng, err := response.QueryFloat(r, "longitude")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	radius, err := response.QueryOptionalFloat(r, "radius")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	items, err := h.service.ProximitySearch(r.Context(), mapID, lat, lng, radius)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, items)
}

func (h *ItemHandler) Collect(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "collect_item")

	var req collectRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	collected, err := h.service.Collect(r.Context(), req.ItemID, req.PlayerID, req.Latitude, req.Longitude)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, collected)
}

func (h *ItemHandler) Use(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "use_item")

	var req useRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Use(r.Context(), req.ItemID, req.PlayerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *ItemHandler) Spawn(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "spawn_item")

	var req item.SpawnRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	spawned, err := h.service.Spawn(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, spawned)
}

func (h *ItemHandler) Sync(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "sync_player")

	var req syncRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Sync(r.Context(), req.PlayerID, req.Latitude, req.Longitude)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *ItemHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "inventory")

	playerID, err := response.PathUUID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	items, err := h.service.Inventory(r.Context(), playerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, items)
}

func (h *ItemHandler) MapStats(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "map_stats")

	mapID, err := response.PathUUID(r, "mapID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	stats, err := h.service.MapStats(r.Context(), mapID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, stats)
}

func (h *ItemHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "map_leaderboard")

	mapID, err := response.PathUUID(r, "mapID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	limit, err := response.QueryInt(r, "limit", 0)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	entries, err := h.service.Leaderboard(r.Context(), mapID, limit)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, entries)
}

package handlers

import (
	"log/slog"
	"net/http"

	"wizardgo/internal/battle"
	"wizardgo/internal/shared/response"
)

type BattleHandler struct {
	service *battle.Service
}

func NewBattleHandler(service *battle.Service) *BattleHandler {
	return &BattleHandler{service: service}
}

func (h *BattleHandler) Report(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "report_battle")

	var req battle.Report
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	entry, err := h.service.Report(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, entry)
}

func (h *BattleHandler) Recent(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "recent_battles")

	limit, err := response.QueryInt(r, "limit", 0)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	battles, err := h.service.RecentBattles(r.Context(), limit)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, battles)
}

func (h *BattleHandler) PlayerBattles(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "player_battles")

	playerID, err := response.PathUUID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	limit, err := response.QueryInt(r, "limit", 0)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	battles, err := h.service.PlayerBattles(r.Context(), playerID, limit)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, battles)
}

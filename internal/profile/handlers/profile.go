package handlers

import (
	"log/slog"
	"net/http"

	"wizardgo/internal/profile"
	"wizardgo/internal/shared/response"
)

type ProfileHandler struct {
	service *profile.Service
}

func NewProfileHandler(service *profile.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type loginRequest struct {
	Name string `json:"name"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_profile")

	id, err := response.PathUUID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	p, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_profiles")

	limit, err := response.QueryInt(r, "limit", 0)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	profiles, err := h.service.ListProfiles(r.Context(), limit)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if profiles == nil {
		profiles = []profile.Profile{}
	}

	response.Success(w, http.StatusOK, profiles)
}

func (h *ProfileHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "user_login")

	var req loginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	p, err := h.service.Login(r.Context(), req.Name)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *ProfileHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "guest_login")

	p, err := h.service.GuestLogin(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

type resetResponse struct {
	Status  string           `json:"status"`
	Profile *profile.Profile `json:"profile"`
}

func (h *ProfileHandler) ResetGuest(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "guest_reset")

	p, err := h.service.ResetGuest(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, resetResponse{Status: "reset", Profile: p})
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"wizardgo/internal/institution"
	"wizardgo/internal/middleware"
	"wizardgo/internal/shared/cookies"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/response"
)

// TokenIssuer signs institution session tokens.
type TokenIssuer interface {
	Generate(institutionID uuid.UUID, name string) (string, error)
}

type InstitutionHandler struct {
	service *institution.Service
	issuer  TokenIssuer
	cookies cookies.Policy
}

func NewInstitutionHandler(service *institution.Service, issuer TokenIssuer, policy cookies.Policy) *InstitutionHandler {
	return &InstitutionHandler{
		service: service,
		issuer:  issuer,
		cookies: policy,
	}
}

type LoginResponse struct {
	Institution *institution.Institution `json:"institution"`
	Token       string                   `json:"token"`
}

type accessResponse struct {
	Status    institution.AccessStatus `json:"status"`
	MapID     uuid.UUID                `json:"map_id"`
	ProfileID *uuid.UUID               `json:"profile_id,omitempty"`
}

func (h *InstitutionHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "register_institution")

	var req institution.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	inst, err := h.service.Register(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, inst)
}

func (h *InstitutionHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "institution_login")

	var req institution.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	inst, err := h.service.Login(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	token, err := h.issuer.Generate(inst.ID, inst.Name)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to issue token", err))
		return
	}

	h.cookies.SetAuthCookie(w, token)
	response.Success(w, http.StatusOK, LoginResponse{Institution: inst, Token: token})
}

func (h *InstitutionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearAuthCookie(w)
	response.Success(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *InstitutionHandler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_institutions")

	institutions, err := h.service.ListInstitutions(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, institutions)
}

func (h *InstitutionHandler) ListAllMaps(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_all_maps")

	maps, err := h.service.ListAllMaps(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, maps)
}

func (h *InstitutionHandler) ListMaps(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_institution_maps")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	maps, err := h.service.ListMaps(r.Context(), claims.InstitutionID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, maps)
}

func (h *InstitutionHandler) CreateMap(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_map")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req institution.CreateMapRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	m, err := h.service.CreateMap(r.Context(), claims.InstitutionID, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, m)
}

func (h *InstitutionHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_map_students")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	mapID, err := response.PathUUID(r, "mapID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	students, err := h.service.ListMapStudents(r.Context(), claims.InstitutionID, mapID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, students)
}

func (h *InstitutionHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "grant_map_access")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	mapID, err := response.PathUUID(r, "mapID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req institution.GrantRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	status, err := h.service.GrantAccess(r.Context(), claims.InstitutionID, mapID, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	code := http.StatusOK
	if status == institution.AccessGranted {
		code = http.StatusCreated
	}
	response.Success(w, code, accessResponse{Status: status, MapID: mapID, ProfileID: req.ProfileID})
}

func (h *InstitutionHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "revoke_map_access")

	claims := middleware.InstitutionFromContext(r.Context())
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	mapID, err := response.PathUUID(r, "mapID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	profileID, err := response.PathUUID(r, "profileID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	status, err := h.service.RevokeAccess(r.Context(), claims.InstitutionID, mapID, profileID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, accessResponse{Status: status, MapID: mapID, ProfileID: &profileID})
}

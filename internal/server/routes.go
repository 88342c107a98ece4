package server

import (
	"log/slog"
	"net/http"

	"wizardgo/internal/battle"
	battleHandlers "wizardgo/internal/battle/handlers"
	"wizardgo/internal/institution"
	institutionHandlers "wizardgo/internal/institution/handlers"
	"wizardgo/internal/item"
	itemHandlers "wizardgo/internal/item/handlers"
	"wizardgo/internal/middleware"
	"wizardgo/internal/profile"
	profileHandlers "wizardgo/internal/profile/handlers"
	serverHandlers "wizardgo/internal/server/handlers"
	"wizardgo/internal/shared/cookies"
)

// Dependencies are the services and collaborators the HTTP surface needs.
type Dependencies struct {
	Profiles     *profile.Service
	Items        *item.Service
	Battles      *battle.Service
	Institutions *institution.Service
	Tokens       TokenService
	Cookies      cookies.Policy
	DB           serverHandlers.Pinger
	StorageName  string
}

// TokenService issues and checks institution session tokens.
type TokenService interface {
	institutionHandlers.TokenIssuer
	middleware.TokenValidator
}

type Routes struct {
	deps   Dependencies
	logger *slog.Logger
}

func NewRoutes(deps Dependencies, logger *slog.Logger) *Routes {
	return &Routes{
		deps:   deps,
		logger: logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := r.logger.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.deps.DB, r.deps.StorageName)
	profileHandler := profileHandlers.NewProfileHandler(r.deps.Profiles)
	itemHandler := itemHandlers.NewItemHandler(r.deps.Items)
	institutionItemHandler := itemHandlers.NewInstitutionItemHandler(r.deps.Items)
	battleHandler := battleHandlers.NewBattleHandler(r.deps.Battles)
	institutionHandler := institutionHandlers.NewInstitutionHandler(r.deps.Institutions, r.deps.Tokens, r.deps.Cookies)

	requireInstitution := middleware.RequireInstitution(r.deps.Tokens)
	protect := func(h http.HandlerFunc) http.Handler {
		return requireInstitution(h)
	}

	// Public endpoints
	mux.Handle("GET /health", healthHandler)
	mux.Handle("GET /api/server/health", healthHandler)

	mux.HandleFunc("GET /api/players", profileHandler.ListProfiles)
	mux.HandleFunc("GET /api/player/{id}", profileHandler.GetProfile)
	mux.HandleFunc("GET /api/player/{id}/inventory", itemHandler.Inventory)
	mux.HandleFunc("GET /api/player/{id}/battles", battleHandler.PlayerBattles)
	mux.HandleFunc("PATCH /api/player/sync", itemHandler.Sync)
	mux.HandleFunc("POST /api/auth/user/login", profileHandler.Login)
	mux.HandleFunc("GET /api/auth/guest/login", profileHandler.GuestLogin)
	mux.HandleFunc("POST /api/auth/guest/reset", profileHandler.ResetGuest)

	mux.HandleFunc("GET /api/map/{mapID}/proximity", itemHandler.Proximity)
	mux.HandleFunc("POST /api/items/collect", itemHandler.Collect)
	mux.HandleFunc("POST /api/items/use", itemHandler.Use)
	mux.HandleFunc("POST /api/items/spawn", itemHandler.Spawn)

	mux.HandleFunc("POST /api/battle/report", battleHandler.Report)
	mux.HandleFunc("GET /api/battle/recent", battleHandler.Recent)

	mux.HandleFunc("GET /api/maps", institutionHandler.ListAllMaps)
	mux.HandleFunc("GET /api/maps/{mapID}/stats", itemHandler.MapStats)
	mux.HandleFunc("GET /api/maps/{mapID}/leaderboard", itemHandler.Leaderboard)

	mux.HandleFunc("GET /api/institutions", institutionHandler.ListInstitutions)
	mux.HandleFunc("POST /api/institutions", institutionHandler.Register)
	mux.HandleFunc("POST /api/institution/login", institutionHandler.Login)
	mux.HandleFunc("POST /api/institution/logout", institutionHandler.Logout)

	// Institution endpoints (authenticated)
	mux.Handle("GET /api/institution/maps", protect(institutionHandler.ListMaps))
	mux.Handle("POST /api/institution/maps", protect(institutionHandler.CreateMap))
	mux.Handle("GET /api/institution/items", protect(institutionItemHandler.List))
	mux.Handle("POST /api/institution/items", protect(institutionItemHandler.Spawn))
	mux.Handle("DELETE /api/institution/items/{itemID}", protect(institutionItemHandler.Delete))
	mux.Handle("GET /api/institution/maps/{mapID}/students", protect(institutionHandler.ListStudents))
	mux.Handle("POST /api/institution/maps/{mapID}/students", protect(institutionHandler.GrantAccess))
	mux.Handle("DELETE /api/institution/maps/{mapID}/students/{profileID}", protect(institutionHandler.RevokeAccess))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/health", "/api/player", "/api/map", "/api/items", "/api/battle", "/api/maps"},
		"auth_endpoints", []string{"/api/auth/user/login", "/api/auth/guest/login", "/api/institution/login"},
		"institution_endpoints", []string{"/api/institution/maps", "/api/institution/items"},
	)

	return mux
}

// Handler wraps the mux in the middleware chain: CORS, then rate limiting.
func Handler(mux http.Handler, cors *middleware.CORSMiddleware, limiter *middleware.RateLimiter) http.Handler {
	return cors.Middleware(limiter.Middleware(mux))
}

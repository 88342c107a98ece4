package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"wizardgo/internal/shared/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Storage   string `json:"storage"`
	Database  string `json:"database"`
}

type HealthHandler struct {
	db      Pinger
	storage string
}

// NewHealthHandler reports the database as "not_used" when db is nil.
func NewHealthHandler(db Pinger, storage string) *HealthHandler {
	return &HealthHandler{db: db, storage: storage}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	dbStatus := "not_used"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus = "connected"
		if err := h.db.PingContext(ctx); err != nil {
			dbStatus = "disconnected"
			logger.Warn("Database ping failed", "error", err)
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Storage:   h.storage,
		Database:  dbStatus,
	}

	response.Success(w, http.StatusOK, resp)
}

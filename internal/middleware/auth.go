package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"wizardgo/internal/auth"
	"wizardgo/internal/shared/cookies"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/response"
)

type contextKey string

const InstitutionContextKey contextKey = "institution"

// TokenValidator checks a session token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RequireInstitution rejects requests without a valid institution token,
// taken from the auth cookie or an Authorization: Bearer header.
func RequireInstitution(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := slog.With(
				"middleware", "jwt",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			logger.Debug("Processing JWT authentication")

			token := tokenFromRequest(r)
			if token == "" {
				response.Error(w, r, logger, errors.Unauthorized("authentication required"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Debug("Rejected institution token", "error", err)
				response.Error(w, r, logger, errors.Unauthorized("invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), InstitutionContextKey, claims)
			logger.Debug("JWT authentication successful",
				"institution_id", claims.InstitutionID,
				"name", claims.Name)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(cookies.AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// InstitutionFromContext returns the claims stored by RequireInstitution.
func InstitutionFromContext(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(InstitutionContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// WithInstitution stores claims the way RequireInstitution does.
func WithInstitution(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, InstitutionContextKey, claims)
}

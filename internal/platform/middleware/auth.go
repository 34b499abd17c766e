package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/httputil"
	"vms/pkg/requestcontext"
)

// SessionClaims is what a validated session token yields.
type SessionClaims struct {
	VolunteerID int64
	SessionID   string
}

// SessionValidator validates bearer session tokens.
type SessionValidator interface {
	ValidateToken(tokenString string) (*SessionClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// volunteer id into the request context.
func RequireAuth(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			ctx = requestcontext.WithVolunteerID(ctx, claims.VolunteerID)
			ctx = requestcontext.WithSessionID(ctx, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSelf rejects requests whose volunteer URL parameter names someone
// other than the authenticated volunteer. It must run after RequireAuth.
func RequireSelf(param string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id, err := httputil.PathID(r, param)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			if actor := requestcontext.VolunteerID(ctx); actor != id {
				logger.WarnContext(ctx, "volunteer acting on another profile",
					"request_id", GetRequestID(ctx),
					"volunteer_id", actor,
					"target_id", id,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot act on behalf of another volunteer"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

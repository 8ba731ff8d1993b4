package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/voxindia/quickcart-backend/pkg/logger"
)

// SessionHeader carries the anonymous shopper identity. Clients persist the
// value and replay it; a request without one is minted a fresh session and
// the id is echoed back so the client can store it.
const SessionHeader = "X-QC-Session"

type sessionCtxKey struct{}

// Session resolves or mints the shopper session id and stashes it on the
// request context.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)
			if sessionID == "" || uuid.Validate(sessionID) != nil {
				sessionID = uuid.NewString()
			}

			w.Header().Set(SessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the resolved session id, or empty when the
// middleware did not run.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return v
	}
	return ""
}

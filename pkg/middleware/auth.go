package middleware

import (
	"net/http"
	"strings"

	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"github.com/mogusu300/b2zi-merchant/pkg/response"
)

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the caller in the request context (see auth.FromCtx).
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			logger.WithCtx(r.Context()).Debug("rejected session token", "error", err)
			response.Unauthorized(w, "Invalid or expired session")
			return
		}

		p := auth.Principal{ID: claims.Subject, Role: claims.Role}
		log := logger.WithCtx(r.Context()).With("principal", p.ID, "role", p.Role)

		ctx := auth.WithPrincipal(r.Context(), p)
		ctx = logger.InjectLogger(ctx, log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

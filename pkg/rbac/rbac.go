// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"

	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/response"
)

// HasRole allows the request through only when the caller holds one of
// roles. middleware.Authenticate must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if !allowed[p.Role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CanActFor reports whether p may act on resources owned by the account id
// with the given role. Admins may act for anyone.
func CanActFor(p auth.Principal, role, id string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == role && p.ID == id
}

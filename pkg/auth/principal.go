package auth

import "context"

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   string
	Role string
}

func (p Principal) Is(role string) bool { return p.Role == role }

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromCtx returns the principal stored by the Authenticate middleware.
func FromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

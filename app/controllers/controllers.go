// Package controllers adapts HTTP requests to the b2zi services. Handlers
// decode the body, call one service method and map the outcome through
// ctx.Context.Fail.
package controllers

import (
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
	"github.com/mogusu300/b2zi-merchant/pkg/rbac"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type successBody struct {
	Success bool `json:"success"`
}

// actingFor writes a 403 and returns false unless the caller is the account
// id of the given role, or an admin.
func actingFor(cx *ctx.Context, role, id string) bool {
	p, ok := cx.Principal()
	if !ok {
		cx.Unauthorized("Authentication required")
		return false
	}
	if !rbac.CanActFor(p, role, id) {
		cx.Forbidden()
		return false
	}
	return true
}

// principal returns the caller; routes using it sit behind Authenticate.
func principal(cx *ctx.Context) (auth.Principal, bool) {
	p, ok := cx.Principal()
	if !ok {
		cx.Unauthorized("Authentication required")
	}
	return p, ok
}

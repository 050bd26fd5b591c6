package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mogusu300/b2zi-merchant/config"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
)

// AdminSubject is the token subject of the single configured admin.
const AdminSubject = "admin"

// AdminService signs in the operator configured by ADMIN_EMAIL and
// ADMIN_PASSWORD. With either unset, admin login is disabled.
type AdminService struct{}

func NewAdminService() *AdminService { return &AdminService{} }

// Login returns an admin session token.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, error) {
	wantEmail, wantPassword := config.AdminEmail(), config.AdminPassword()
	if wantEmail == "" || wantPassword == "" {
		logger.WithCtx(ctx).Warn("admin login attempted but ADMIN_EMAIL/ADMIN_PASSWORD are not set")
		return "", errBadCredentials
	}

	emailOK := auth.Equal(normaliseEmail(email), strings.ToLower(wantEmail))
	passwordOK := auth.Equal(password, wantPassword)
	if !emailOK || !passwordOK {
		return "", errBadCredentials
	}

	token, err := auth.GenerateToken(AdminSubject, auth.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("admin: issue token: %w", err)
	}
	return token, nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/repositories"
	"github.com/mogusu300/b2zi-merchant/pkg/apperr"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"github.com/mogusu300/b2zi-merchant/pkg/validate"
	"gorm.io/gorm"
)

// RegisterMerchantInput is a merchant application.
type RegisterMerchantInput struct {
	BusinessName    string `json:"businessName"    validate:"required,max=255"`
	OwnerName       string `json:"ownerName"       validate:"required,max=255"`
	Email           string `json:"email"           validate:"required,max=255"`
	Phone           string `json:"phone"           validate:"required,max=50"`
	BusinessType    string `json:"businessType"    validate:"required,max=100"`
	BusinessAddress string `json:"businessAddress" validate:"required"`
	IDType          string `json:"idType"          validate:"required"`
	IDFrontURL      string `json:"idFrontUrl"      validate:"nullable,max=2048"`
	IDBackURL       string `json:"idBackUrl"       validate:"nullable,max=2048"`
	Password        string `json:"password"        validate:"required"`
}

// MerchantSession is the result of a successful merchant login.
type MerchantSession struct {
	Merchant models.Merchant `json:"merchant"`
	Token    string          `json:"token"`
}

type MerchantService struct {
	merchants *repositories.MerchantRepository
}

func NewMerchantService(db *gorm.DB) *MerchantService {
	return &MerchantService{merchants: repositories.NewMerchantRepository(db)}
}

// SubmitRegistration stores a pending merchant and returns its id.
func (s *MerchantService) SubmitRegistration(ctx context.Context, in RegisterMerchantInput) (string, error) {
	if err := checkInput(in, msgMissingFields, "Invalid registration data"); err != nil {
		return "", err
	}
	if !validate.Email(in.Email) {
		return "", apperr.Validation("Invalid email format", map[string]string{"email": "The email must be a valid email address."})
	}
	idType := strings.ToLower(strings.TrimSpace(in.IDType))
	if idType != models.IDTypeNRC && idType != models.IDTypePassport {
		return "", apperr.Validation("Invalid ID type", map[string]string{"idType": "The selected idType is invalid."})
	}

	email := normaliseEmail(in.Email)
	taken, err := s.merchants.EmailTaken(ctx, email)
	if err != nil {
		return "", fmt.Errorf("merchant: check email: %w", err)
	}
	if taken {
		return "", errMerchantExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", fmt.Errorf("merchant: hash password: %w", err)
	}

	m := models.Merchant{
		BusinessName:    strings.TrimSpace(in.BusinessName),
		OwnerName:       strings.TrimSpace(in.OwnerName),
		Email:           email,
		Phone:           strings.TrimSpace(in.Phone),
		BusinessType:    strings.TrimSpace(in.BusinessType),
		BusinessAddress: strings.TrimSpace(in.BusinessAddress),
		IDType:          idType,
		IDFrontURL:      strings.TrimSpace(in.IDFrontURL),
		IDBackURL:       strings.TrimSpace(in.IDBackURL),
		Password:        hash,
		Status:          models.MerchantPending,
	}
	if err := s.merchants.Create(ctx, &m); err != nil {
		if repositories.IsDuplicate(err) {
			return "", errMerchantExists
		}
		return "", fmt.Errorf("merchant: create: %w", err)
	}

	logger.WithCtx(ctx).Info("merchant registered", "merchant_id", m.ID)
	fire(ctx, EventMerchantRegistered, m)
	return m.ID, nil
}

var errMerchantExists = apperr.New(apperr.ErrConflict, "A merchant with this email already exists")

// Decide applies an admin decision. Re-applying the current status is a
// no-op; approved and rejected are final.
func (s *MerchantService) Decide(ctx context.Context, merchantID string, status models.MerchantStatus) (models.Merchant, error) {
	if strings.TrimSpace(merchantID) == "" || status == "" {
		return models.Merchant{}, apperr.Validation("Missing merchantId or status", nil)
	}
	if !status.Valid() {
		return models.Merchant{}, apperr.Validation("Invalid status", map[string]string{"status": "The selected status is invalid."})
	}

	m, err := s.merchants.FindByID(ctx, merchantID)
	if repositories.IsNotFound(err) {
		return models.Merchant{}, apperr.New(apperr.ErrNotFound, "Merchant not found")
	}
	if err != nil {
		return models.Merchant{}, fmt.Errorf("merchant: load %s: %w", merchantID, err)
	}

	if m.Status == status {
		return m, nil
	}
	if !m.Status.CanBecome(status) {
		return models.Merchant{}, merchantTransitionErr(m.Status, status)
	}

	ok, err := s.merchants.UpdateStatus(ctx, m.ID, m.Status, status)
	if err != nil {
		return models.Merchant{}, fmt.Errorf("merchant: update status: %w", err)
	}
	if !ok {
		// Another decision landed between the read and the write.
		current, err := s.merchants.FindByID(ctx, m.ID)
		if err != nil {
			return models.Merchant{}, fmt.Errorf("merchant: reload %s: %w", m.ID, err)
		}
		if current.Status == status {
			return current, nil
		}
		return models.Merchant{}, merchantTransitionErr(current.Status, status)
	}

	updated, err := s.merchants.FindByID(ctx, m.ID)
	if err != nil {
		return models.Merchant{}, fmt.Errorf("merchant: reload %s: %w", m.ID, err)
	}

	logger.WithCtx(ctx).Info("merchant decided", "merchant_id", m.ID, "from", m.Status, "to", status)
	fire(ctx, EventMerchantDecided, MerchantDecided{MerchantID: m.ID, From: m.Status, To: status})
	return updated, nil
}

func merchantTransitionErr(from, to models.MerchantStatus) error {
	return apperr.New(apperr.ErrInvalidTransition,
		fmt.Sprintf("Cannot change merchant status from %s to %s", from, to))
}

// ListMerchants returns merchants newest first. An unknown status is a 400.
func (s *MerchantService) ListMerchants(ctx context.Context, status, search string) ([]models.Merchant, error) {
	st := models.MerchantStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, apperr.Validation("Invalid status", map[string]string{"status": "The selected status is invalid."})
	}
	merchants, err := s.merchants.List(ctx, repositories.MerchantFilter{Status: st, Search: search})
	if err != nil {
		return nil, fmt.Errorf("merchant: list: %w", err)
	}
	return merchants, nil
}

// Login checks merchant credentials and issues a merchant session token.
func (s *MerchantService) Login(ctx context.Context, email, password string) (MerchantSession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return MerchantSession{}, apperr.Validation("Email and password are required", nil)
	}

	m, err := s.merchants.FindByEmail(ctx, normaliseEmail(email))
	if err != nil && !repositories.IsNotFound(err) {
		return MerchantSession{}, fmt.Errorf("merchant: load by email: %w", err)
	}
	if err != nil || !auth.CheckPassword(m.Password, password) {
		return MerchantSession{}, errBadCredentials
	}
	if m.Status == models.MerchantRejected {
		return MerchantSession{}, apperr.New(apperr.ErrForbidden, "Your merchant application was rejected")
	}

	token, err := auth.GenerateToken(m.ID, auth.RoleMerchant)
	if err != nil {
		return MerchantSession{}, fmt.Errorf("merchant: issue token: %w", err)
	}
	return MerchantSession{Merchant: m, Token: token}, nil
}

var errBadCredentials = apperr.New(apperr.ErrUnauthorized, "Invalid email or password")

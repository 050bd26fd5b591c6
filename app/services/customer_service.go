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

type RegisterCustomerInput struct {
	Email           string `json:"email"           validate:"required,max=255"`
	Name            string `json:"name"            validate:"required,max=255"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// CustomerSession is returned by Register and Login.
type CustomerSession struct {
	Customer models.Customer `json:"customer"`
	Token    string          `json:"token"`
}

type CustomerService struct {
	customers *repositories.CustomerRepository
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{customers: repositories.NewCustomerRepository(db)}
}

// Register creates a customer account and signs it in.
func (s *CustomerService) Register(ctx context.Context, in RegisterCustomerInput) (CustomerSession, error) {
	if err := checkInput(in, "All fields are required", "Invalid registration data"); err != nil {
		return CustomerSession{}, err
	}
	if in.Password != in.ConfirmPassword {
		return CustomerSession{}, apperr.Validation("Passwords do not match",
			map[string]string{"confirmPassword": "The confirmPassword and password must match."})
	}
	if !validate.Email(in.Email) {
		return CustomerSession{}, apperr.Validation("Invalid email format",
			map[string]string{"email": "The email must be a valid email address."})
	}

	email := normaliseEmail(in.Email)
	taken, err := s.customers.EmailTaken(ctx, email)
	if err != nil {
		return CustomerSession{}, fmt.Errorf("customer: check email: %w", err)
	}
	if taken {
		return CustomerSession{}, errCustomerExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return CustomerSession{}, fmt.Errorf("customer: hash password: %w", err)
	}
	c := models.Customer{Email: email, Name: strings.TrimSpace(in.Name), Password: hash}
	if err := s.customers.Create(ctx, &c); err != nil {
		if repositories.IsDuplicate(err) {
			return CustomerSession{}, errCustomerExists
		}
		return CustomerSession{}, fmt.Errorf("customer: create: %w", err)
	}

	logger.WithCtx(ctx).Info("customer registered", "customer_id", c.ID)
	fire(ctx, EventCustomerRegistered, c)
	return s.session(c)
}

var errCustomerExists = apperr.New(apperr.ErrConflict, "Email already registered")

// Login checks customer credentials.
func (s *CustomerService) Login(ctx context.Context, email, password string) (CustomerSession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return CustomerSession{}, apperr.Validation("Email and password are required", nil)
	}

	c, err := s.customers.FindByEmail(ctx, normaliseEmail(email))
	if err != nil && !repositories.IsNotFound(err) {
		return CustomerSession{}, fmt.Errorf("customer: load by email: %w", err)
	}
	if err != nil || !auth.CheckPassword(c.Password, password) {
		return CustomerSession{}, errBadCredentials
	}
	return s.session(c)
}

func (s *CustomerService) session(c models.Customer) (CustomerSession, error) {
	token, err := auth.GenerateToken(c.ID, auth.RoleCustomer)
	if err != nil {
		return CustomerSession{}, fmt.Errorf("customer: issue token: %w", err)
	}
	return CustomerSession{Customer: c, Token: token}, nil
}

package repositories

import (
	"context"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"gorm.io/gorm"
)

// CustomerRepository handles database operations for Customer.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

// Create persists a new customer.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return c, err
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&c).Error
	return c, err
}

func (r *CustomerRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

// Exists reports whether a customer with id exists.
func (r *CustomerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

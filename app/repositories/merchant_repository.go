package repositories

import (
	"context"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"gorm.io/gorm"
)

// MerchantFilter narrows ListMerchants. Zero values mean "any".
type MerchantFilter struct {
	Status models.MerchantStatus
	Search string
}

// MerchantRepository handles database operations for Merchant.
type MerchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *MerchantRepository) WithTx(tx *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: tx}
}

// Create persists a new merchant.
func (r *MerchantRepository) Create(ctx context.Context, m *models.Merchant) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByID looks up a merchant by primary key.
func (r *MerchantRepository) FindByID(ctx context.Context, id string) (models.Merchant, error) {
	var m models.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	return m, err
}

// FindByEmail looks up a merchant by (lower-cased) email.
func (r *MerchantRepository) FindByEmail(ctx context.Context, email string) (models.Merchant, error) {
	var m models.Merchant
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&m).Error
	return m, err
}

// EmailTaken reports whether a merchant already uses email.
func (r *MerchantRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

// List returns merchants newest first.
func (r *MerchantRepository) List(ctx context.Context, f MerchantFilter) ([]models.Merchant, error) {
	q := r.db.WithContext(ctx).Model(&models.Merchant{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := containsPattern(s)
		q = q.Where(
			lowerLike("business_name")+" OR "+lowerLike("owner_name")+" OR "+lowerLike("email"),
			p, p, p,
		)
	}

	merchants := []models.Merchant{}
	err := q.Order("created_at desc").Find(&merchants).Error
	return merchants, err
}

// UpdateStatus moves a merchant from one status to another. It reports false
// when the row was no longer in status from, i.e. a concurrent decision won.
func (r *MerchantRepository) UpdateStatus(ctx context.Context, id string, from, to models.MerchantStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

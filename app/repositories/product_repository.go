package repositories

import (
	"context"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"gorm.io/gorm"
)

// ProductFilter narrows List. Zero values mean "any".
type ProductFilter struct {
	SellerID string
	Category string
	Search   string
}

// ProductRepository handles database operations for Product. Reads skip
// soft-deleted rows unless stated otherwise.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Seller").Create(p).Error
}

// FindByID returns a live product with its seller.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Seller").Where("id = ?", id).First(&p).Error
	return p, err
}

// Save writes every column of p; BeforeSave refreshes InStock.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Seller").Save(p).Error
}

// Delete soft-deletes the product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// List returns products newest first, each with its seller.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Seller")
	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := containsPattern(s)
		q = q.Where(lowerLike("name")+" OR "+lowerLike("description"), p, p)
	}

	products := []models.Product{}
	err := q.Order("created_at desc").Find(&products).Error
	return products, err
}

// CountBySeller counts a seller's live products.
func (r *ProductRepository) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&n).Error
	return n, err
}

// Reserve takes qty units out of stock in one conditional UPDATE. It reports
// false, changing nothing, when fewer than qty units are left.
func (r *ProductRepository) Reserve(ctx context.Context, id string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil || res.RowsAffected == 0 {
		return false, res.Error
	}
	return true, syncInStock(r.db.WithContext(ctx).Model(&models.Product{}), id)
}

// Release puts qty units back. Soft-deleted products are restocked too so the
// counts stay true if the product is ever restored.
func (r *ProductRepository) Release(ctx context.Context, id string, qty int) error {
	q := r.db.WithContext(ctx).Unscoped().Model(&models.Product{})
	if err := q.Where("id = ?", id).UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error; err != nil {
		return err
	}
	return syncInStock(r.db.WithContext(ctx).Unscoped().Model(&models.Product{}), id)
}

// syncInStock runs as its own statement: MySQL applies SET clauses left to
// right while the other dialects read the old row.
func syncInStock(q *gorm.DB, id string) error {
	return q.Where("id = ?", id).
		UpdateColumn("in_stock", gorm.Expr("CASE WHEN stock > 0 THEN ? ELSE ? END", true, false)).
		Error
}

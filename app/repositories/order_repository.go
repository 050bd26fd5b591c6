package repositories

import (
	"context"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// merchantOrders selects orders holding at least one line of the merchant's
// products, deleted products included.
const merchantOrders = "orders.id IN (SELECT order_items.order_id FROM order_items " +
	"JOIN products ON products.id = order_items.product_id WHERE products.seller_id = ?)"

// merchantItems restricts order_items to the merchant's lines.
const merchantItems = "product_id IN (SELECT id FROM products WHERE seller_id = ?)"

// OrderRepository handles database operations for Order and its items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create inserts the order and its items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// FindByID loads an order with all its items and their products.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := withItems(r.db.WithContext(ctx), "").Where("id = ?", id).First(&o).Error
	return o, err
}

// ListByCustomer returns a customer's orders newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := withItems(r.db.WithContext(ctx), "").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// ListForMerchant returns orders containing the merchant's products, newest
// first. Each order carries only that merchant's items.
func (r *OrderRepository) ListForMerchant(ctx context.Context, merchantID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := withItems(r.db.WithContext(ctx), merchantID).
		Where(merchantOrders, merchantID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// InvolvesMerchant reports whether the order has a line sold by merchantID.
func (r *OrderRepository) InvolvesMerchant(ctx context.Context, orderID, merchantID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("orders.id = ?", orderID).
		Where(merchantOrders, merchantID).
		Count(&n).Error
	return n > 0, err
}

// UpdateStatus moves an order from one status to another. It reports false
// when the row was no longer in status from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

// Delete removes the order's items and then the order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.Order{}).Error
}

// CountItems counts the items stored for an order.
func (r *OrderRepository) CountItems(ctx context.Context, orderID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&n).Error
	return n, err
}

// StatusCount is one row of CountForMerchantByStatus.
type StatusCount struct {
	Status models.OrderStatus
	Count  int64
}

// CountForMerchantByStatus groups the merchant's orders by status.
func (r *OrderRepository) CountForMerchantByStatus(ctx context.Context, merchantID string) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where(merchantOrders, merchantID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// RevenueForMerchant sums price × quantity over the merchant's own lines in
// orders that were not cancelled.
func (r *OrderRepository) RevenueForMerchant(ctx context.Context, merchantID string) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.WithContext(ctx).Table("order_items").
		Select("COALESCE(SUM(order_items.price * order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ? AND orders.status <> ?", merchantID, models.OrderCancelled).
		Row().Scan(&revenue)
	return revenue.Round(2), err
}

// withItems preloads items in placement order with their products, which may
// since have been soft-deleted. A non-empty merchantID keeps only that
// merchant's items.
func withItems(db *gorm.DB, merchantID string) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			if merchantID != "" {
				tx = tx.Where(merchantItems, merchantID)
			}
			return tx.Order("position")
		}).
		Preload("Items.Product", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Items.Product.Seller")
}

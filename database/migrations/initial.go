package migrations

import (
	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_merchants_table", &CreateMerchantsTable{})
	migration.Register("20260101000001_create_customers_table", &CreateCustomersTable{})
	migration.Register("20260101000002_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000003_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260101000004_create_order_items_table", &CreateOrderItemsTable{})
}

// -------- 0001: merchants --------

type CreateMerchantsTable struct{}

func (m *CreateMerchantsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Merchant{})
}

func (m *CreateMerchantsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("merchants")
}

// -------- 0002: customers --------

type CreateCustomersTable struct{}

func (m *CreateCustomersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Customer{})
}

func (m *CreateCustomersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("customers")
}

// -------- 0003: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0004: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

// -------- 0005: order_items --------

// Items reference orders with ON DELETE CASCADE; products are soft-deleted so
// the product reference never dangles.
type CreateOrderItemsTable struct{}

func (m *CreateOrderItemsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.OrderItem{})
}

func (m *CreateOrderItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items")
}

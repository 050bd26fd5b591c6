package models

import "github.com/shopspring/decimal"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ShippingAddress is stored inline on the order.
type ShippingAddress struct {
	Name    string `gorm:"size:255" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Address string `gorm:"type:text" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	ZipCode string `gorm:"size:20" json:"zipCode"`
}

// Order is a placed checkout. It owns its items; Total is the sum of the
// item subtotals at creation time.
type Order struct {
	Model
	CustomerID      string          `gorm:"type:varchar(36);not null;index" json:"customerId"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status          OrderStatus     `gorm:"size:20;not null;default:pending;index" json:"status"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one line of an order. Price is the unit price captured when
// the order was placed.
type OrderItem struct {
	Model
	OrderID       string          `gorm:"type:varchar(36);not null;index" json:"orderId"`
	ProductID     string          `gorm:"type:varchar(36);not null;index" json:"productId"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	SelectedColor string          `gorm:"size:100" json:"selectedColor,omitempty"`
	SelectedType  string          `gorm:"size:100" json:"selectedType,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Position      int             `gorm:"not null;default:0" json:"-"`
}

// Subtotal is Price × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems recomputes an order total from its lines.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

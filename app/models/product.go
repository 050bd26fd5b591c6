package models

import (
	"slices"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalogue entry owned by one merchant. Deletes are soft so
// historical order lines keep resolving their product.
type Product struct {
	Model
	SellerID    string          `gorm:"type:varchar(36);not null;index" json:"sellerId"`
	Seller      *Seller         `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Category    string          `gorm:"size:100;not null;index" json:"category"`
	Images      []string        `gorm:"type:text;serializer:json" json:"images"`
	Colors      []string        `gorm:"type:text;serializer:json" json:"colors"`
	Types       []string        `gorm:"type:text;serializer:json" json:"types"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	InStock     bool            `gorm:"not null;default:false" json:"inStock"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeSave keeps InStock derived from Stock and nil lists empty.
func (p *Product) BeforeSave(*gorm.DB) error {
	p.InStock = p.Stock > 0
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Types == nil {
		p.Types = []string{}
	}
	return nil
}

// Offers reports whether the product sells the given color and type. An
// empty choice means "no preference" and is always accepted.
func (p *Product) Offers(color, typ string) (colorOK, typeOK bool) {
	return offers(p.Colors, color), offers(p.Types, typ)
}

func offers(options []string, choice string) bool {
	return choice == "" || slices.Contains(options, choice)
}

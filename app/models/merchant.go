package models

// MerchantStatus is the approval state of a seller account.
type MerchantStatus string

const (
	MerchantPending  MerchantStatus = "pending"
	MerchantApproved MerchantStatus = "approved"
	MerchantRejected MerchantStatus = "rejected"
)

// IDType is the kind of identity document a merchant submitted.
const (
	IDTypeNRC      = "nrc"
	IDTypePassport = "passport"
)

// Merchant is a seller account. Status changes only through an admin
// decision.
type Merchant struct {
	Model
	BusinessName    string         `gorm:"size:255;not null" json:"businessName"`
	OwnerName       string         `gorm:"size:255;not null" json:"ownerName"`
	Email           string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone           string         `gorm:"size:50;not null" json:"phone"`
	BusinessType    string         `gorm:"size:100;not null" json:"businessType"`
	BusinessAddress string         `gorm:"type:text;not null" json:"businessAddress"`
	IDType          string         `gorm:"size:20;not null" json:"idType"`
	IDFrontURL      string         `gorm:"size:2048" json:"idFrontUrl,omitempty"`
	IDBackURL       string         `gorm:"size:2048" json:"idBackUrl,omitempty"`
	Password        string         `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Status          MerchantStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
}

// Seller is the public view of a Merchant joined onto products.
// Column tags mirror Merchant so migrating products never alters merchants.
type Seller struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	BusinessName string `gorm:"size:255;not null" json:"businessName"`
	OwnerName    string `gorm:"size:255;not null" json:"ownerName"`
	BusinessType string `gorm:"size:100;not null" json:"businessType"`
}

func (Seller) TableName() string { return "merchants" }

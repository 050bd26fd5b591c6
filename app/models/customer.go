package models

// Customer is a buyer account.
type Customer struct {
	Model
	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
}

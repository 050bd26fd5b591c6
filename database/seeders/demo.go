package seeders

import (
	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Demo accounts. Both use the password "password".
const (
	DemoMerchantEmail = "merchant@b2zi.test"
	DemoCustomerEmail = "customer@b2zi.test"
	demoPassword      = "password"
)

func init() {
	Register("merchants", SeedMerchants)
	Register("customers", SeedCustomers)
	Register("products", SeedProducts)
}

func SeedMerchants(db *gorm.DB) error {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	m := models.Merchant{
		BusinessName:    "Lusaka Leather Works",
		OwnerName:       "Mwila Banda",
		Email:           DemoMerchantEmail,
		Phone:           "+260971000000",
		BusinessType:    "Retail",
		BusinessAddress: "Cairo Road, Lusaka",
		IDType:          models.IDTypeNRC,
		Password:        hash,
		Status:          models.MerchantApproved,
	}
	return db.Where(models.Merchant{Email: m.Email}).FirstOrCreate(&m).Error
}

func SeedCustomers(db *gorm.DB) error {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	c := models.Customer{Email: DemoCustomerEmail, Name: "Demo Customer", Password: hash}
	return db.Where(models.Customer{Email: c.Email}).FirstOrCreate(&c).Error
}

func SeedProducts(db *gorm.DB) error {
	var seller models.Merchant
	if err := db.Where("email = ?", DemoMerchantEmail).First(&seller).Error; err != nil {
		return err
	}

	products := []models.Product{
		{
			Name:        "Leather Tote",
			Description: "Hand-stitched full grain leather tote",
			Price:       decimal.RequireFromString("450.00"),
			Category:    "Bags",
			Colors:      []string{"Brown", "Black"},
			Stock:       12,
		},
		{
			Name:        "Chitenge Shirt",
			Description: "Cotton shirt in a traditional print",
			Price:       decimal.RequireFromString("180.00"),
			Category:    "Clothing",
			Types:       []string{"S", "M", "L", "XL"},
			Stock:       30,
		},
		{
			Name:        "Copper Bangle",
			Description: "Polished Copperbelt copper",
			Price:       decimal.RequireFromString("95.50"),
			Category:    "Jewellery",
			Stock:       0,
		},
	}

	for i := range products {
		p := &products[i]
		p.SellerID = seller.ID
		if err := db.Where(models.Product{SellerID: seller.ID, Name: p.Name}).FirstOrCreate(p).Error; err != nil {
			return err
		}
	}
	return nil
}

package testkit

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Password is the plain-text password of every fixture account.
const Password = "secret123"

var (
	fixtureSeq atomic.Int64
	// bcrypt is slow on purpose; fixtures share one hash.
	passwordHash = func() string {
		h, err := auth.HashPassword(Password)
		if err != nil {
			panic(err)
		}
		return h
	}()
)

func next() int64 { return fixtureSeq.Add(1) }

// Merchant inserts a merchant in the given status.
func Merchant(t testing.TB, db *gorm.DB, status models.MerchantStatus) models.Merchant {
	t.Helper()
	n := next()
	m := models.Merchant{
		BusinessName:    fmt.Sprintf("Shop %d", n),
		OwnerName:       fmt.Sprintf("Owner %d", n),
		Email:           fmt.Sprintf("merchant%d@b2zi.test", n),
		Phone:           "+260970000000",
		BusinessType:    "Retail",
		BusinessAddress: "Plot 1, Lusaka",
		IDType:          models.IDTypeNRC,
		Password:        passwordHash,
		Status:          status,
	}
	require.NoError(t, db.Create(&m).Error, "testkit: create merchant")
	return m
}

// Customer inserts a customer.
func Customer(t testing.TB, db *gorm.DB) models.Customer {
	t.Helper()
	n := next()
	c := models.Customer{
		Email:    fmt.Sprintf("customer%d@b2zi.test", n),
		Name:     fmt.Sprintf("Customer %d", n),
		Password: passwordHash,
	}
	require.NoError(t, db.Create(&c).Error, "testkit: create customer")
	return c
}

// Product inserts a product owned by sellerID. Options run before the insert.
func Product(t testing.TB, db *gorm.DB, sellerID, price string, stock int, opts ...func(*models.Product)) models.Product {
	t.Helper()
	p := models.Product{
		SellerID:    sellerID,
		Name:        fmt.Sprintf("Product %d", next()),
		Description: "fixture",
		Price:       decimal.RequireFromString(price),
		Category:    "General",
		Stock:       stock,
	}
	for _, o := range opts {
		o(&p)
	}
	require.NoError(t, db.Create(&p).Error, "testkit: create product")
	return p
}

// Stock reads a product's current stock, soft-deleted or not.
func Stock(t testing.TB, db *gorm.DB, productID string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.Unscoped().Where("id = ?", productID).First(&p).Error)
	return p.Stock
}

// Token issues a session token for the account.
func Token(t testing.TB, id, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(id, role)
	require.NoError(t, err, "testkit: issue token")
	return tok
}

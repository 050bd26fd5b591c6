package testkit

import (
	"net/http"
	"testing"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBIsMigratedAndIsolated(t *testing.T) {
	a := NewDB(t)
	b := NewDB(t)

	for _, table := range []string{"merchants", "customers", "products", "orders", "order_items", "b2zi_migrations"} {
		assert.True(t, a.Migrator().HasTable(table), table)
	}

	m := Merchant(t, a, models.MerchantApproved)
	var n int64
	require.NoError(t, b.Model(&models.Merchant{}).Where("id = ?", m.ID).Count(&n).Error)
	assert.Zero(t, n, "databases must not share rows")
}

func TestProductFixture(t *testing.T) {
	db := NewDB(t)
	m := Merchant(t, db, models.MerchantApproved)
	p := Product(t, db, m.ID, "12.50", 4, func(p *models.Product) { p.Colors = []string{"Red"} })

	assert.True(t, p.InStock)
	assert.Equal(t, 4, Stock(t, db, p.ID))
}

func TestRunCases(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"count":2}`))
	})

	RunCases(t, h, []Case{
		{Name: "anonymous", Method: http.MethodGet, URL: "/x", ExpectedCode: http.StatusUnauthorized,
			ExpectedBody: map[string]any{"error": "Authentication required"}},
		{Name: "with token", Method: http.MethodGet, URL: "/x", Token: "t", ExpectedCode: http.StatusOK,
			ExpectedBody: map[string]any{"ok": true, "count": 2}},
	})

	rec := Do(t, h, "", "/x", nil, "")
	AssertError(t, rec, http.StatusUnauthorized, "Authentication required")
}

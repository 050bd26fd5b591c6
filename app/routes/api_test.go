package routes_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/routes"
	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/config"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/cache"
	"github.com/mogusu300/b2zi-merchant/pkg/router"
	"github.com/mogusu300/b2zi-merchant/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAPI(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	db := testkit.NewDB(t)
	r := router.New()
	require.NoError(t, routes.RegisterAPI(r, db, cache.NewMemoryCounter()))
	return r.Handler(), db
}

func adminToken(t *testing.T) string {
	return testkit.Token(t, services.AdminSubject, auth.RoleAdmin)
}

func TestMerchantRegistrationAndDecision(t *testing.T) {
	h, db := newAPI(t)

	application := map[string]any{
		"businessName":    "Chanda Crafts",
		"ownerName":       "Chanda Mwale",
		"email":           "Chanda@Example.com",
		"phone":           "+260971234567",
		"businessType":    "Crafts",
		"businessAddress": "Cairo Road, Lusaka",
		"idType":          "nrc",
		"password":        "secret123",
	}

	rec := testkit.Do(t, h, http.MethodPost, "/api/register", application, "")
	testkit.AssertStatus(t, rec, http.StatusCreated)
	testkit.AssertJSONSubset(t, map[string]any{"success": true, "message": "Merchant registered successfully"}, rec.Body.Bytes())
	merchantID := testkit.Decode[map[string]any](t, rec)["merchantId"].(string)
	require.NotEmpty(t, merchantID)

	customer := testkit.Customer(t, db)

	testkit.RunCases(t, h, []testkit.Case{
		{Name: "duplicate email", Method: http.MethodPost, URL: "/api/register", Body: application,
			ExpectedCode: http.StatusConflict, ExpectedBody: map[string]any{"error": "A merchant with this email already exists"}},
		{Name: "missing fields", Method: http.MethodPost, URL: "/api/register", Body: map[string]any{"email": "x@y.zm"},
			ExpectedCode: http.StatusBadRequest, ExpectedBody: map[string]any{"error": "Missing required fields"}},
		{Name: "malformed body", Method: http.MethodPost, URL: "/api/register", Body: "{",
			ExpectedCode: http.StatusBadRequest, ExpectedBody: map[string]any{"error": "Invalid request body"}},
		{Name: "pending merchant can log in", Method: http.MethodPost, URL: "/api/merchants/login",
			Body: map[string]any{"email": "chanda@example.com", "password": "secret123"}, ExpectedCode: http.StatusOK},
		{Name: "wrong password", Method: http.MethodPost, URL: "/api/merchants/login",
			Body: map[string]any{"email": "chanda@example.com", "password": "nope"}, ExpectedCode: http.StatusUnauthorized},
		{Name: "list needs a session", URL: "/api/merchants", ExpectedCode: http.StatusUnauthorized},
		{Name: "list is admin only", URL: "/api/merchants", Token: testkit.Token(t, customer.ID, auth.RoleCustomer), ExpectedCode: http.StatusForbidden},
		{Name: "decide is admin only", Method: http.MethodPut, URL: "/api/merchant", Token: testkit.Token(t, merchantID, auth.RoleMerchant),
			Body: map[string]any{"merchantId": merchantID, "status": "approved"}, ExpectedCode: http.StatusForbidden},
		{Name: "unknown status", Method: http.MethodPut, URL: "/api/merchant", Token: adminToken(t),
			Body: map[string]any{"merchantId": merchantID, "status": "maybe"}, ExpectedCode: http.StatusBadRequest},
		{Name: "unknown merchant", Method: http.MethodPut, URL: "/api/merchant", Token: adminToken(t),
			Body: map[string]any{"merchantId": "missing", "status": "approved"}, ExpectedCode: http.StatusNotFound},
		{Name: "approve", Method: http.MethodPut, URL: "/api/merchant", Token: adminToken(t),
			Body:         map[string]any{"merchantId": merchantID, "status": "approved"},
			ExpectedCode: http.StatusOK, ExpectedBody: map[string]any{"success": true, "message": "Merchant status updated to approved"}},
		{Name: "approved is final", Method: http.MethodPut, URL: "/api/merchant", Token: adminToken(t),
			Body: map[string]any{"merchantId": merchantID, "status": "rejected"}, ExpectedCode: http.StatusConflict},
	})

	rec = testkit.Do(t, h, http.MethodGet, "/api/merchants?status=approved&search=chanda", nil, adminToken(t))
	testkit.AssertStatus(t, rec, http.StatusOK)
	list := testkit.Decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, merchantID, list[0]["id"])
	assert.NotContains(t, list[0], "password")
}

func TestProductRoutes(t *testing.T) {
	h, db := newAPI(t)
	owner := testkit.Merchant(t, db, models.MerchantApproved)
	other := testkit.Merchant(t, db, models.MerchantApproved)
	pending := testkit.Merchant(t, db, models.MerchantPending)
	ownerToken := testkit.Token(t, owner.ID, auth.RoleMerchant)

	body := map[string]any{"name": "Chitenge Bag", "price": 120.5, "category": "Bags", "stock": 4, "colors": []string{"Red"}}

	rec := testkit.Do(t, h, http.MethodPost, "/api/products", body, ownerToken)
	testkit.AssertStatus(t, rec, http.StatusCreated)
	created := testkit.Decode[map[string]any](t, rec)
	id := created["id"].(string)
	assert.Equal(t, owner.ID, created["sellerId"])
	assert.Equal(t, true, created["inStock"])

	updated := map[string]any{"name": "Chitenge Tote", "price": 99, "category": "Bags", "stock": 0}
	testkit.RunCases(t, h, []testkit.Case{
		{Name: "pending merchant cannot sell", Method: http.MethodPost, URL: "/api/products", Body: body,
			Token: testkit.Token(t, pending.ID, auth.RoleMerchant), ExpectedCode: http.StatusForbidden},
		{Name: "customers cannot sell", Method: http.MethodPost, URL: "/api/products", Body: body,
			Token: testkit.Token(t, testkit.Customer(t, db).ID, auth.RoleCustomer), ExpectedCode: http.StatusForbidden},
		{Name: "negative price", Method: http.MethodPost, URL: "/api/products", Token: ownerToken,
			Body: map[string]any{"name": "X", "price": -1, "category": "Bags"}, ExpectedCode: http.StatusBadRequest},
		{Name: "public list", URL: "/api/products?category=Bags&search=chitenge", ExpectedCode: http.StatusOK},
		{Name: "public show", URL: "/api/products/" + id, ExpectedCode: http.StatusOK,
			ExpectedBody: map[string]any{"name": "Chitenge Bag", "price": 120.5}},
		{Name: "merchant products", URL: "/api/merchants/" + owner.ID + "/products", ExpectedCode: http.StatusOK},
		{Name: "not the owner", Method: http.MethodPut, URL: "/api/products/" + id, Body: updated,
			Token: testkit.Token(t, other.ID, auth.RoleMerchant), ExpectedCode: http.StatusForbidden},
		{Name: "owner updates", Method: http.MethodPut, URL: "/api/products/" + id, Body: updated, Token: ownerToken,
			ExpectedCode: http.StatusOK, ExpectedBody: map[string]any{"name": "Chitenge Tote", "inStock": false}},
		{Name: "not the owner deletes", Method: http.MethodDelete, URL: "/api/products/" + id,
			Token: testkit.Token(t, other.ID, auth.RoleMerchant), ExpectedCode: http.StatusForbidden},
		{Name: "owner deletes", Method: http.MethodDelete, URL: "/api/products/" + id, Token: ownerToken,
			ExpectedCode: http.StatusOK, ExpectedBody: map[string]any{"success": true}},
		{Name: "gone", URL: "/api/products/" + id, ExpectedCode: http.StatusNotFound,
			ExpectedBody: map[string]any{"error": "Product not found"}},
	})
}

func TestOrderRoutes(t *testing.T) {
	h, db := newAPI(t)
	seller := testkit.Merchant(t, db, models.MerchantApproved)
	outsider := testkit.Merchant(t, db, models.MerchantApproved)
	a := testkit.Product(t, db, seller.ID, "10.00", 5)
	b := testkit.Product(t, db, seller.ID, "5.00", 5)
	buyer := testkit.Customer(t, db)
	stranger := testkit.Customer(t, db)
	buyerToken := testkit.Token(t, buyer.ID, auth.RoleCustomer)

	order := map[string]any{
		"customerId": buyer.ID,
		"items": []map[string]any{
			{"productId": a.ID, "quantity": 2, "price": 0.01},
			{"productId": b.ID, "quantity": 1},
		},
		"shippingAddress": map[string]any{"name": "Buyer", "address": "Plot 9", "city": "Ndola"},
		"total":           1,
	}

	rec := testkit.Do(t, h, http.MethodPost, "/api/orders", order, buyerToken)
	testkit.AssertStatus(t, rec, http.StatusCreated)
	placed := testkit.Decode[map[string]any](t, rec)
	orderID := placed["id"].(string)
	assert.Equal(t, 25.0, placed["total"])
	assert.Equal(t, "pending", placed["status"])
	assert.Len(t, placed["items"], 2)
	assert.Equal(t, 3, testkit.Stock(t, db, a.ID))

	sellerToken := testkit.Token(t, seller.ID, auth.RoleMerchant)
	testkit.RunCases(t, h, []testkit.Case{
		{Name: "ordering for someone else", Method: http.MethodPost, URL: "/api/orders", Token: testkit.Token(t, stranger.ID, auth.RoleCustomer),
			Body: order, ExpectedCode: http.StatusForbidden},
		{Name: "merchants cannot order", Method: http.MethodPost, URL: "/api/orders", Token: sellerToken,
			Body: order, ExpectedCode: http.StatusForbidden},
		{Name: "empty order", Method: http.MethodPost, URL: "/api/orders", Token: buyerToken,
			Body: map[string]any{"items": []any{}}, ExpectedCode: http.StatusBadRequest,
			ExpectedBody: map[string]any{"error": "Order must contain at least one item"}},
		{Name: "too many", Method: http.MethodPost, URL: "/api/orders", Token: buyerToken,
			Body: map[string]any{"items": []map[string]any{{"productId": a.ID, "quantity": 50}}}, ExpectedCode: http.StatusConflict},
		{Name: "missing customerId", URL: "/api/orders", Token: adminToken(t), ExpectedCode: http.StatusBadRequest},
		{Name: "someone else's orders", URL: "/api/orders?customerId=" + buyer.ID,
			Token: testkit.Token(t, stranger.ID, auth.RoleCustomer), ExpectedCode: http.StatusForbidden},
		{Name: "customer orders alias", URL: "/api/customers/" + buyer.ID + "/orders", Token: buyerToken, ExpectedCode: http.StatusOK},
		{Name: "outside merchant cannot move it", Method: http.MethodPatch, URL: "/api/orders/" + orderID,
			Token: testkit.Token(t, outsider.ID, auth.RoleMerchant), Body: map[string]any{"status": "processing"}, ExpectedCode: http.StatusForbidden},
		{Name: "customers cannot move it", Method: http.MethodPatch, URL: "/api/orders/" + orderID,
			Token: buyerToken, Body: map[string]any{"status": "processing"}, ExpectedCode: http.StatusForbidden},
		{Name: "seller moves it", Method: http.MethodPatch, URL: "/api/orders/" + orderID, Token: sellerToken,
			Body: map[string]any{"status": "processing"}, ExpectedCode: http.StatusOK, ExpectedBody: map[string]any{"status": "processing"}},
		{Name: "skipping ahead", Method: http.MethodPatch, URL: "/api/orders/" + orderID, Token: sellerToken,
			Body: map[string]any{"status": "delivered"}, ExpectedCode: http.StatusConflict},
		{Name: "unknown order", Method: http.MethodPatch, URL: "/api/orders/nope", Token: adminToken(t),
			Body: map[string]any{"status": "shipped"}, ExpectedCode: http.StatusNotFound},
		{Name: "seller orders", URL: "/api/merchants/" + seller.ID + "/orders", Token: sellerToken, ExpectedCode: http.StatusOK},
		{Name: "another seller's orders", URL: "/api/merchants/" + seller.ID + "/orders",
			Token: testkit.Token(t, outsider.ID, auth.RoleMerchant), ExpectedCode: http.StatusForbidden},
		{Name: "seller stats", URL: "/api/merchants/" + seller.ID + "/stats", Token: sellerToken,
			ExpectedCode: http.StatusOK, ExpectedBody: map[string]any{"totalProducts": 2, "totalOrders": 1, "totalRevenue": 25}},
		{Name: "stranger cannot delete", Method: http.MethodDelete, URL: "/api/orders/" + orderID,
			Token: testkit.Token(t, stranger.ID, auth.RoleCustomer), ExpectedCode: http.StatusForbidden},
		{Name: "owner deletes", Method: http.MethodDelete, URL: "/api/orders/" + orderID, Token: buyerToken,
			ExpectedCode: http.StatusOK, ExpectedBody: map[string]any{"success": true}},
	})

	assert.Equal(t, 5, testkit.Stock(t, db, a.ID), "deleting a processing order restocks")

	rec = testkit.Do(t, h, http.MethodGet, "/api/orders?customerId="+buyer.ID, nil, buyerToken)
	testkit.AssertStatus(t, rec, http.StatusOK)
	assert.Empty(t, testkit.Decode[[]map[string]any](t, rec))
}

func TestCustomerAndAdminSessions(t *testing.T) {
	h, _ := newAPI(t)
	config.Set("ADMIN_EMAIL", "ops@b2zi.test")
	config.Set("ADMIN_PASSWORD", "letmein")
	t.Cleanup(func() {
		config.Set("ADMIN_EMAIL", "")
		config.Set("ADMIN_PASSWORD", "")
	})

	register := map[string]any{"email": "mutale@example.com", "name": "Mutale", "password": "secret123", "confirmPassword": "secret123"}
	rec := testkit.Do(t, h, http.MethodPost, "/api/customers/register", register, "")
	testkit.AssertStatus(t, rec, http.StatusCreated)
	session := testkit.Decode[map[string]any](t, rec)
	customer := session["customer"].(map[string]any)
	assert.Equal(t, "mutale@example.com", customer["email"])
	assert.NotContains(t, customer, "password")

	claims, err := auth.ValidateToken(session["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCustomer, claims.Role)

	testkit.RunCases(t, h, []testkit.Case{
		{Name: "email taken", Method: http.MethodPost, URL: "/api/customers/register", Body: register,
			ExpectedCode: http.StatusConflict, ExpectedBody: map[string]any{"error": "Email already registered"}},
		{Name: "passwords differ", Method: http.MethodPost, URL: "/api/customers/register",
			Body:         map[string]any{"email": "a@b.zm", "name": "A", "password": "one", "confirmPassword": "two"},
			ExpectedCode: http.StatusBadRequest, ExpectedBody: map[string]any{"error": "Passwords do not match"}},
		{Name: "customer login", Method: http.MethodPost, URL: "/api/customers/login",
			Body: map[string]any{"email": "MUTALE@example.com", "password": "secret123"}, ExpectedCode: http.StatusOK},
		{Name: "customer login missing fields", Method: http.MethodPost, URL: "/api/customers/login",
			Body: map[string]any{"email": "mutale@example.com"}, ExpectedCode: http.StatusBadRequest},
		{Name: "admin login", Method: http.MethodPost, URL: "/api/admin/login",
			Body: map[string]any{"email": "ops@b2zi.test", "password": "letmein"}, ExpectedCode: http.StatusOK,
			ExpectedBody: map[string]any{"success": true}},
		{Name: "admin wrong password", Method: http.MethodPost, URL: "/api/admin/login",
			Body: map[string]any{"email": "ops@b2zi.test", "password": "guess"}, ExpectedCode: http.StatusUnauthorized},
	})
}

func TestGraphQLRoute(t *testing.T) {
	h, db := newAPI(t)
	m := testkit.Merchant(t, db, models.MerchantApproved)
	p := testkit.Product(t, db, m.ID, "7.50", 3)

	rec := testkit.Do(t, h, http.MethodPost, "/api/graphql",
		map[string]any{"query": fmt.Sprintf(`{ product(id: %q) { name price seller { id } } }`, p.ID)}, "")
	testkit.AssertStatus(t, rec, http.StatusOK)

	res := testkit.Decode[struct {
		Data struct {
			Product struct {
				Name   string  `json:"name"`
				Price  float64 `json:"price"`
				Seller struct {
					ID string `json:"id"`
				} `json:"seller"`
			} `json:"product"`
		} `json:"data"`
	}](t, rec)
	assert.Equal(t, p.Name, res.Data.Product.Name)
	assert.Equal(t, 7.5, res.Data.Product.Price)
	assert.Equal(t, m.ID, res.Data.Product.Seller.ID)
}

func TestRouteNames(t *testing.T) {
	r := router.New()
	require.NoError(t, routes.RegisterAPI(r, testkit.NewDB(t), cache.NewMemoryCounter()))

	url, err := r.URL("merchants.stats", map[string]string{"id": "m-1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/merchants/m-1/stats", url)

	path, ok := r.Path("merchants.decide")
	require.True(t, ok)
	assert.Equal(t, "/api/merchant", path)
}

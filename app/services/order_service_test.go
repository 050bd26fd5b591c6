package services_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mogusu300/b2zi-merchant/app/cart"
	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/apperr"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/event"
	"github.com/mogusu300/b2zi-merchant/pkg/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type shop struct {
	db       *gorm.DB
	svc      *services.OrderService
	merchant models.Merchant
	customer models.Customer
}

func newShop(t *testing.T) shop {
	t.Helper()
	db := testkit.NewDB(t)
	return shop{
		db:       db,
		svc:      services.NewOrderService(db),
		merchant: testkit.Merchant(t, db, models.MerchantApproved),
		customer: testkit.Customer(t, db),
	}
}

func items(lines ...services.OrderItemInput) services.CreateOrderInput {
	return services.CreateOrderInput{
		Items: lines,
		ShippingAddress: models.ShippingAddress{
			Name: "Bupe", Email: "bupe@example.com", Address: "12 Independence Ave",
			City: "Lusaka", State: "Lusaka", ZipCode: "10101",
		},
	}
}

func TestCreateOrderRecomputesTotal(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	a := testkit.Product(t, s.db, s.merchant.ID, "10.00", 5)
	b := testkit.Product(t, s.db, s.merchant.ID, "5.00", 5)

	o, err := s.svc.CreateOrder(ctx, s.customer.ID, items(
		services.OrderItemInput{ProductID: a.ID, Quantity: 2},
		services.OrderItemInput{ProductID: b.ID, Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, o.Status)
	assert.True(t, decimal.RequireFromString("25.00").Equal(o.Total), "total %s", o.Total)
	require.Len(t, o.Items, 2)
	assert.Equal(t, a.ID, o.Items[0].ProductID)
	require.NotNil(t, o.Items[0].Product)
	assert.Equal(t, a.Name, o.Items[0].Product.Name)
	assert.True(t, models.SumItems(o.Items).Equal(o.Total))
	assert.Equal(t, "Lusaka", o.ShippingAddress.City)

	assert.Equal(t, 3, testkit.Stock(t, s.db, a.ID))
	assert.Equal(t, 4, testkit.Stock(t, s.db, b.ID))

	// A later price change leaves the captured price alone.
	require.NoError(t, s.db.Model(&models.Product{}).Where("id = ?", a.ID).
		Update("price", decimal.RequireFromString("99.00")).Error)
	again, err := s.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.00").Equal(again.Items[0].Price))
	assert.True(t, decimal.RequireFromString("25.00").Equal(again.Total))
}

func TestCreateOrderMergesIdenticalLines(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	p := testkit.Product(t, s.db, s.merchant.ID, "2.50", 10, func(p *models.Product) {
		p.Colors = []string{"Red", "Blue"}
	})

	o, err := s.svc.CreateOrder(ctx, s.customer.ID, items(
		services.OrderItemInput{ProductID: p.ID, Quantity: 1, SelectedColor: "Red"},
		services.OrderItemInput{ProductID: p.ID, Quantity: 2, SelectedColor: "Red"},
		services.OrderItemInput{ProductID: p.ID, Quantity: 1, SelectedColor: "Blue"},
	))
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, "Red", o.Items[0].SelectedColor)
	assert.Equal(t, "Blue", o.Items[1].SelectedColor)
	assert.True(t, decimal.RequireFromString("10.00").Equal(o.Total))
	assert.Equal(t, 6, testkit.Stock(t, s.db, p.ID))
}

func TestCreateOrderRefusesMergedQuantityOverflow(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	p := testkit.Product(t, s.db, s.merchant.ID, "10.00", 5)

	for _, qty := range []int{math.MaxInt, cart.MaxQuantity} {
		_, err := s.svc.CreateOrder(ctx, s.customer.ID, items(
			services.OrderItemInput{ProductID: p.ID, Quantity: qty},
			services.OrderItemInput{ProductID: p.ID, Quantity: qty},
		))
		require.Error(t, err, "quantity %d", qty)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}

	assert.Equal(t, 5, testkit.Stock(t, s.db, p.ID))
	var n int64
	require.NoError(t, s.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateOrderInsufficientStockChangesNothing(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	t.Cleanup(event.Flush)

	var reasons []string
	event.Listen(services.EventOrderRejected, func(_ context.Context, p interface{}) {
		reasons = append(reasons, p.(services.OrderRejected).Reason)
	})

	plenty := testkit.Product(t, s.db, s.merchant.ID, "1.00", 10)
	scarce := testkit.Product(t, s.db, s.merchant.ID, "1.00", 1)

	_, err := s.svc.CreateOrder(ctx, s.customer.ID, items(
		services.OrderItemInput{ProductID: plenty.ID, Quantity: 4},
		services.OrderItemInput{ProductID: scarce.ID, Quantity: 2},
	))
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 409, apperr.Status(err))

	assert.Equal(t, 10, testkit.Stock(t, s.db, plenty.ID), "earlier reservation must roll back")
	assert.Equal(t, 1, testkit.Stock(t, s.db, scarce.ID))
	var n int64
	require.NoError(t, s.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, s.db.Model(&models.OrderItem{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, []string{"stock"}, reasons)
}

func TestCreateOrderRejections(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	p := testkit.Product(t, s.db, s.merchant.ID, "1.00", 10, func(p *models.Product) {
		p.Colors = []string{"Red"}
	})
	gone := testkit.Product(t, s.db, s.merchant.ID, "1.00", 10)
	require.NoError(t, s.db.Delete(&gone).Error)

	cases := []struct {
		name       string
		customerID string
		input      services.CreateOrderInput
		message    string
	}{
		{"empty cart", s.customer.ID, items(), "Order must contain at least one item"},
		{"zero quantity", s.customer.ID, items(services.OrderItemInput{ProductID: p.ID}), "Invalid order data"},
		{"quantity over limit", s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: cart.MaxQuantity + 1}), "Invalid order data"},
		{"missing product id", s.customer.ID, items(services.OrderItemInput{Quantity: 1}), "Invalid order data"},
		{"unknown customer", "ghost", items(services.OrderItemInput{ProductID: p.ID, Quantity: 1}), "Customer not found"},
		{"unknown product", s.customer.ID, items(services.OrderItemInput{ProductID: "nope", Quantity: 1}), "Product nope is not available"},
		{"deleted product", s.customer.ID, items(services.OrderItemInput{ProductID: gone.ID, Quantity: 1}), "Product " + gone.ID + " is not available"},
		{"color not offered", s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 1, SelectedColor: "Green"}),
			p.Name + ` is not available in color "Green"`},
		{"type on product without types", s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 1, SelectedType: "XL"}),
			p.Name + ` is not available in type "XL"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.svc.CreateOrder(ctx, tc.customerID, tc.input)
			assertAppErr(t, err, apperr.ErrValidation, tc.message)
		})
	}
	assert.Equal(t, 10, testkit.Stock(t, s.db, p.ID))
}

func TestUpdateOrderStatusWorkflow(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	t.Cleanup(event.Flush)

	var changes []services.OrderStatusChanged
	event.Listen(services.EventOrderStatusChanged, func(_ context.Context, p interface{}) {
		changes = append(changes, p.(services.OrderStatusChanged))
	})

	p := testkit.Product(t, s.db, s.merchant.ID, "4.00", 5)
	o, err := s.svc.CreateOrder(ctx, s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)

	_, err = s.svc.UpdateOrderStatus(ctx, o.ID, models.OrderShipped)
	assertAppErr(t, err, apperr.ErrInvalidTransition, "Cannot move order from pending to shipped")

	for _, next := range []models.OrderStatus{models.OrderProcessing, models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
		got, err := s.svc.UpdateOrderStatus(ctx, o.ID, next)
		require.NoError(t, err, "to %s", next)
		assert.Equal(t, next, got.Status)
	}
	assert.Len(t, changes, 3, "re-applying processing fires nothing")

	_, err = s.svc.UpdateOrderStatus(ctx, o.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, 3, testkit.Stock(t, s.db, p.ID), "delivered orders keep their stock")

	_, err = s.svc.UpdateOrderStatus(ctx, o.ID, "")
	assertAppErr(t, err, apperr.ErrValidation, "Status is required")
	_, err = s.svc.UpdateOrderStatus(ctx, o.ID, "lost")
	assertAppErr(t, err, apperr.ErrValidation, "Invalid status")
	_, err = s.svc.UpdateOrderStatus(ctx, "ghost", models.OrderShipped)
	assertAppErr(t, err, apperr.ErrNotFound, "Order not found")
}

func TestCancelRestoresStock(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	p := testkit.Product(t, s.db, s.merchant.ID, "4.00", 2)

	o, err := s.svc.CreateOrder(ctx, s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.Equal(t, 0, testkit.Stock(t, s.db, p.ID))

	_, err = s.svc.UpdateOrderStatus(ctx, o.ID, models.OrderProcessing)
	require.NoError(t, err)
	got, err := s.svc.UpdateOrderStatus(ctx, o.ID, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
	assert.Equal(t, 2, testkit.Stock(t, s.db, p.ID))

	var prod models.Product
	require.NoError(t, s.db.Where("id = ?", p.ID).First(&prod).Error)
	assert.True(t, prod.InStock)
}

func TestDeleteOrder(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	p := testkit.Product(t, s.db, s.merchant.ID, "4.00", 5)

	pending, err := s.svc.CreateOrder(ctx, s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	shipped, err := s.svc.CreateOrder(ctx, s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	for _, st := range []models.OrderStatus{models.OrderProcessing, models.OrderShipped} {
		_, err = s.svc.UpdateOrderStatus(ctx, shipped.ID, st)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, testkit.Stock(t, s.db, p.ID))

	require.NoError(t, s.svc.DeleteOrder(ctx, pending.ID))
	assert.Equal(t, 4, testkit.Stock(t, s.db, p.ID), "pending orders give their units back")

	require.NoError(t, s.svc.DeleteOrder(ctx, shipped.ID))
	assert.Equal(t, 4, testkit.Stock(t, s.db, p.ID), "shipped units are gone")

	var n int64
	require.NoError(t, s.db.Model(&models.OrderItem{}).Where("order_id IN ?", []string{pending.ID, shipped.ID}).Count(&n).Error)
	assert.Zero(t, n, "no item may outlive its order")

	assertAppErr(t, s.svc.DeleteOrder(ctx, pending.ID), apperr.ErrNotFound, "Order not found")
}

func TestListCustomerOrders(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	p := testkit.Product(t, s.db, s.merchant.ID, "4.00", 5)

	older, err := s.svc.CreateOrder(ctx, s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, s.db.Model(&models.Order{}).Where("id = ?", older.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)
	newer, err := s.svc.CreateOrder(ctx, s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	list, err := s.svc.ListCustomerOrders(ctx, s.customer.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	require.NotNil(t, list[0].Items[0].Product)

	_, err = s.svc.ListCustomerOrders(ctx, " ")
	assertAppErr(t, err, apperr.ErrValidation, "Customer ID is required")
}

func TestAuthorize(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	p := testkit.Product(t, s.db, s.merchant.ID, "4.00", 5)
	stranger := testkit.Merchant(t, s.db, models.MerchantApproved)
	other := testkit.Customer(t, s.db)

	o, err := s.svc.CreateOrder(ctx, s.customer.ID, items(services.OrderItemInput{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	merchant := auth.Principal{ID: s.merchant.ID, Role: auth.RoleMerchant}
	owner := auth.Principal{ID: s.customer.ID, Role: auth.RoleCustomer}
	admin := auth.Principal{ID: services.AdminSubject, Role: auth.RoleAdmin}

	assert.NoError(t, s.svc.Authorize(ctx, merchant, o.ID, services.ActionUpdateStatus))
	assert.NoError(t, s.svc.Authorize(ctx, admin, o.ID, services.ActionUpdateStatus))
	assert.ErrorIs(t, s.svc.Authorize(ctx, auth.Principal{ID: stranger.ID, Role: auth.RoleMerchant}, o.ID, services.ActionUpdateStatus), apperr.ErrForbidden)
	assert.ErrorIs(t, s.svc.Authorize(ctx, owner, o.ID, services.ActionUpdateStatus), apperr.ErrForbidden)

	assert.NoError(t, s.svc.Authorize(ctx, owner, o.ID, services.ActionDelete))
	assert.NoError(t, s.svc.Authorize(ctx, admin, o.ID, services.ActionDelete))
	assert.ErrorIs(t, s.svc.Authorize(ctx, auth.Principal{ID: other.ID, Role: auth.RoleCustomer}, o.ID, services.ActionDelete), apperr.ErrForbidden)
	assert.ErrorIs(t, s.svc.Authorize(ctx, merchant, o.ID, services.ActionDelete), apperr.ErrForbidden)

	assert.ErrorIs(t, s.svc.Authorize(ctx, admin, "ghost", services.ActionDelete), apperr.ErrNotFound)
}

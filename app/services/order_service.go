package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/cart"
	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/repositories"
	"github.com/mogusu300/b2zi-merchant/pkg/apperr"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"gorm.io/gorm"
)

// OrderItemInput is one requested line. Any client-side price is ignored.
type OrderItemInput struct {
	ProductID     string `json:"productId"     validate:"required"`
	Quantity      int    `json:"quantity"      validate:"gte=1,lte=10000"`
	SelectedColor string `json:"selectedColor"`
	SelectedType  string `json:"selectedType"`
}

// CreateOrderInput is a checkout request.
type CreateOrderInput struct {
	Items           []OrderItemInput       `json:"items"           validate:"dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

// OrderAction is what a caller wants to do with an existing order.
type OrderAction int

const (
	ActionUpdateStatus OrderAction = iota
	ActionDelete
)

type OrderService struct {
	db        *gorm.DB
	orders    *repositories.OrderRepository
	products  *repositories.ProductRepository
	customers *repositories.CustomerRepository
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		db:        db,
		orders:    repositories.NewOrderRepository(db),
		products:  repositories.NewProductRepository(db),
		customers: repositories.NewCustomerRepository(db),
	}
}

// CreateOrder places an order for customerID. Identical lines are merged,
// prices are read from the catalogue and stock is reserved; the order, its
// items and the stock changes commit together or not at all.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, in CreateOrderInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, s.reject(ctx, customerID, "validation",
			apperr.Validation("Order must contain at least one item", map[string]string{"items": "The items field is required."}))
	}
	if err := checkInput(in, "Invalid order data", "Invalid order data"); err != nil {
		return models.Order{}, s.reject(ctx, customerID, "validation", err)
	}

	ok, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return models.Order{}, fmt.Errorf("order: check customer: %w", err)
	}
	if !ok {
		return models.Order{}, s.reject(ctx, customerID, "customer",
			apperr.Validation("Customer not found", map[string]string{"customerId": "The selected customerId is invalid."}))
	}

	c := cart.New()
	for _, it := range in.Items {
		line := cart.Line{
			ProductID:     strings.TrimSpace(it.ProductID),
			Quantity:      it.Quantity,
			SelectedColor: strings.TrimSpace(it.SelectedColor),
			SelectedType:  strings.TrimSpace(it.SelectedType),
		}
		if err := c.Add(line); err != nil {
			return models.Order{}, s.reject(ctx, customerID, "validation", apperr.Validation(
				fmt.Sprintf("Quantity of %s exceeds %d", line.ProductID, cart.MaxQuantity),
				map[string]string{"items": fmt.Sprintf("The quantity must be less than or equal to %d.", cart.MaxQuantity)},
			))
		}
	}

	var order models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)

		items := make([]models.OrderItem, 0, c.Len())
		for i, line := range c.Lines() {
			item, err := s.priceLine(ctx, products, line)
			if err != nil {
				return err
			}
			item.Position = i
			items = append(items, item)
		}

		order = models.Order{
			CustomerID:      customerID,
			Status:          models.OrderPending,
			ShippingAddress: in.ShippingAddress,
			Items:           items,
			Total:           models.SumItems(items),
		}
		return s.orders.WithTx(tx).Create(ctx, &order)
	})
	if err != nil {
		var rejected *lineError
		if errors.As(err, &rejected) {
			return models.Order{}, s.reject(ctx, customerID, rejected.reason, rejected.err)
		}
		return models.Order{}, fmt.Errorf("order: create: %w", err)
	}

	created, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return models.Order{}, fmt.Errorf("order: reload %s: %w", order.ID, err)
	}

	logger.WithCtx(ctx).Info("order created",
		"order_id", created.ID,
		"customer_id", customerID,
		"items", len(created.Items),
		"total", created.Total.StringFixed(2),
	)
	fire(ctx, EventOrderCreated, created)
	return created, nil
}

// lineError aborts the checkout transaction with a client error.
type lineError struct {
	reason string
	err    error
}

func (e *lineError) Error() string { return e.err.Error() }
func (e *lineError) Unwrap() error { return e.err }

// priceLine turns a cart line into an order item priced from the catalogue
// and reserves its stock.
func (s *OrderService) priceLine(ctx context.Context, products *repositories.ProductRepository, line cart.Line) (models.OrderItem, error) {
	if line.Quantity <= 0 || line.Quantity > cart.MaxQuantity {
		return models.OrderItem{}, &lineError{"validation", apperr.Validation(
			"Invalid order data", map[string]string{"items": "The quantity is invalid."},
		)}
	}
	p, err := products.FindByID(ctx, line.ProductID)
	if repositories.IsNotFound(err) {
		return models.OrderItem{}, &lineError{"product", apperr.Validation(
			fmt.Sprintf("Product %s is not available", line.ProductID),
			map[string]string{"items": "The selected productId is invalid."},
		)}
	}
	if err != nil {
		return models.OrderItem{}, fmt.Errorf("load product %s: %w", line.ProductID, err)
	}

	colorOK, typeOK := p.Offers(line.SelectedColor, line.SelectedType)
	if !colorOK {
		return models.OrderItem{}, &lineError{"variant", apperr.Validation(
			fmt.Sprintf("%s is not available in color %q", p.Name, line.SelectedColor),
			map[string]string{"items": "The selected selectedColor is invalid."},
		)}
	}
	if !typeOK {
		return models.OrderItem{}, &lineError{"variant", apperr.Validation(
			fmt.Sprintf("%s is not available in type %q", p.Name, line.SelectedType),
			map[string]string{"items": "The selected selectedType is invalid."},
		)}
	}

	reserved, err := products.Reserve(ctx, p.ID, line.Quantity)
	if err != nil {
		return models.OrderItem{}, fmt.Errorf("reserve product %s: %w", p.ID, err)
	}
	if !reserved {
		return models.OrderItem{}, &lineError{"stock", apperr.New(apperr.ErrInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s", p.Name))}
	}

	return models.OrderItem{
		ProductID:     p.ID,
		Quantity:      line.Quantity,
		SelectedColor: line.SelectedColor,
		SelectedType:  line.SelectedType,
		Price:         p.Price,
	}, nil
}

func (s *OrderService) reject(ctx context.Context, customerID, reason string, err error) error {
	logger.WithCtx(ctx).Info("order rejected", "customer_id", customerID, "reason", reason, "error", err)
	fire(ctx, EventOrderRejected, OrderRejected{CustomerID: customerID, Reason: reason})
	return err
}

// GetOrder loads an order with its items and products.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if repositories.IsNotFound(err) {
		return models.Order{}, errOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("order: load %s: %w", orderID, err)
	}
	return o, nil
}

var errOrderNotFound = apperr.New(apperr.ErrNotFound, "Order not found")

// Authorize checks that p may perform action on the order. Admins may do
// anything; merchants may move orders that include their products; customers
// may delete their own orders.
func (s *OrderService) Authorize(ctx context.Context, p auth.Principal, orderID string, action OrderAction) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if repositories.IsNotFound(err) {
		return errOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("order: load %s: %w", orderID, err)
	}
	if p.IsAdmin() {
		return nil
	}

	switch action {
	case ActionUpdateStatus:
		if p.Is(auth.RoleMerchant) {
			in, err := s.orders.InvolvesMerchant(ctx, o.ID, p.ID)
			if err != nil {
				return fmt.Errorf("order: check merchant: %w", err)
			}
			if in {
				return nil
			}
		}
	case ActionDelete:
		if p.Is(auth.RoleCustomer) && p.ID == o.CustomerID {
			return nil
		}
	}
	return apperr.New(apperr.ErrForbidden, "You are not allowed to change this order")
}

// UpdateOrderStatus moves an order along the workflow. Cancelling returns the
// reserved units to stock in the same transaction.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	if status == "" {
		return models.Order{}, apperr.Validation("Status is required", map[string]string{"status": "The status field is required."})
	}
	if !status.Valid() {
		return models.Order{}, apperr.Validation("Invalid status", map[string]string{"status": "The selected status is invalid."})
	}

	var from models.OrderStatus
	var restock bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		o, err := orders.FindByID(ctx, orderID)
		if repositories.IsNotFound(err) {
			return errOrderNotFound
		}
		if err != nil {
			return err
		}

		from = o.Status
		if from == status {
			return nil
		}
		if !from.CanBecome(status) {
			return orderTransitionErr(from, status)
		}

		moved, err := orders.UpdateStatus(ctx, o.ID, from, status)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.New(apperr.ErrInvalidTransition, "Order status changed concurrently, reload and retry")
		}

		if status == models.OrderCancelled && from.HoldsStock() {
			restock = true
			return release(ctx, s.products.WithTx(tx), o.Items)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperr.Public(err); ok {
			return models.Order{}, err
		}
		return models.Order{}, fmt.Errorf("order: update status %s: %w", orderID, err)
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if from != status {
		logger.WithCtx(ctx).Info("order status changed", "order_id", orderID, "from", from, "to", status, "restock", restock)
		fire(ctx, EventOrderStatusChanged, OrderStatusChanged{OrderID: orderID, From: from, To: status, Restock: restock})
	}
	return o, nil
}

func orderTransitionErr(from, to models.OrderStatus) error {
	return apperr.New(apperr.ErrInvalidTransition,
		fmt.Sprintf("Cannot move order from %s to %s", from, to))
}

// DeleteOrder removes an order and its items. Units still reserved by a
// pending or processing order go back to stock.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	var status models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		o, err := orders.FindByID(ctx, orderID)
		if repositories.IsNotFound(err) {
			return errOrderNotFound
		}
		if err != nil {
			return err
		}
		status = o.Status

		if o.Status.HoldsStock() {
			if err := release(ctx, s.products.WithTx(tx), o.Items); err != nil {
				return err
			}
		}
		return orders.Delete(ctx, o.ID)
	})
	if err != nil {
		if _, ok := apperr.Public(err); ok {
			return err
		}
		return fmt.Errorf("order: delete %s: %w", orderID, err)
	}

	logger.WithCtx(ctx).Info("order deleted", "order_id", orderID, "status", status)
	fire(ctx, EventOrderDeleted, OrderDeleted{OrderID: orderID, Status: status, Restock: status.HoldsStock()})
	return nil
}

func release(ctx context.Context, products *repositories.ProductRepository, items []models.OrderItem) error {
	for _, it := range items {
		if err := products.Release(ctx, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("release product %s: %w", it.ProductID, err)
		}
	}
	return nil
}

// ListCustomerOrders returns a customer's orders newest first.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.Validation("Customer ID is required", map[string]string{"customerId": "The customerId field is required."})
	}
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("order: list for customer: %w", err)
	}
	return orders, nil
}

// Package services holds the b2zi business rules: merchant onboarding,
// customer accounts, the catalogue and the order workflow. Services speak in
// models and *apperr.Error values; they know nothing about HTTP.
package services

import (
	"context"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/pkg/apperr"
	"github.com/mogusu300/b2zi-merchant/pkg/event"
	"github.com/mogusu300/b2zi-merchant/pkg/validate"
)

// Domain events fired after a change commits.
const (
	EventMerchantRegistered = "merchant.registered"
	EventMerchantDecided    = "merchant.decided"
	EventCustomerRegistered = "customer.registered"
	EventOrderCreated       = "order.created"
	EventOrderRejected      = "order.rejected"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// MerchantDecided is the payload of EventMerchantDecided.
type MerchantDecided struct {
	MerchantID string
	From, To   models.MerchantStatus
}

// OrderRejected is the payload of EventOrderRejected.
type OrderRejected struct {
	CustomerID string
	Reason     string // "validation" | "customer" | "product" | "variant" | "stock"
}

// OrderStatusChanged is the payload of EventOrderStatusChanged.
type OrderStatusChanged struct {
	OrderID  string
	From, To models.OrderStatus
	Restock  bool
}

// OrderDeleted is the payload of EventOrderDeleted.
type OrderDeleted struct {
	OrderID string
	Status  models.OrderStatus
	Restock bool
}

const msgMissingFields = "Missing required fields"

// checkInput runs struct-tag validation. When a required field is missing the
// error carries missing as its message, otherwise invalid.
func checkInput(in any, missing, invalid string) error {
	errs := validate.Struct(in)
	if !validate.HasErrors(errs) {
		return nil
	}
	for _, msg := range errs {
		if strings.HasSuffix(msg, "field is required.") {
			return apperr.Validation(missing, errs)
		}
	}
	return apperr.Validation(invalid, errs)
}

func normaliseEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func fire(ctx context.Context, name string, payload any) { event.Fire(ctx, name, payload) }

package models

import "slices"

var merchantTransitions = map[MerchantStatus][]MerchantStatus{
	MerchantPending:  {MerchantApproved, MerchantRejected},
	MerchantApproved: {},
	MerchantRejected: {},
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// Valid reports whether s is a known merchant status.
func (s MerchantStatus) Valid() bool {
	_, ok := merchantTransitions[s]
	return ok
}

// CanBecome reports whether an admin may move a merchant from s to next.
// Re-applying the current status is allowed and changes nothing.
func (s MerchantStatus) CanBecome(next MerchantStatus) bool {
	return s == next || slices.Contains(merchantTransitions[s], next)
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanBecome reports whether an order may move from s to next.
// Re-applying the current status is allowed and changes nothing.
func (s OrderStatus) CanBecome(next OrderStatus) bool {
	return s == next || slices.Contains(orderTransitions[s], next)
}

// HoldsStock reports whether items of an order in state s still have their
// quantity reserved against product stock.
func (s OrderStatus) HoldsStock() bool {
	return s == OrderPending || s == OrderProcessing
}

// NextOrderStatuses lists the states an order in s may move to.
func NextOrderStatuses(s OrderStatus) []OrderStatus {
	return slices.Clone(orderTransitions[s])
}

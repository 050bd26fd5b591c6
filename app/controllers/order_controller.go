package controllers

import (
	"net/http"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Index lists the orders of ?customerId.
func (c *OrderController) Index(cx *ctx.Context) {
	customerID := cx.Query("customerId")
	if customerID != "" && !actingFor(cx, auth.RoleCustomer, customerID) {
		return
	}

	orders, err := c.orders.ListCustomerOrders(cx.Context(), customerID)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, orders)
}

// Store places an order for the calling customer. A customerId in the body
// is accepted only when it names the caller.
func (c *OrderController) Store(cx *ctx.Context) {
	p, ok := principal(cx)
	if !ok {
		return
	}
	var in struct {
		CustomerID string `json:"customerId"`
		services.CreateOrderInput
	}
	if !cx.DecodeJSON(&in) {
		return
	}
	if id := strings.TrimSpace(in.CustomerID); id != "" && id != p.ID {
		cx.Forbidden()
		return
	}

	order, err := c.orders.CreateOrder(cx.Context(), p.ID, in.CreateOrderInput)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusCreated, order)
}

// Update moves an order to the status in the body.
func (c *OrderController) Update(cx *ctx.Context) {
	p, ok := principal(cx)
	if !ok {
		return
	}
	var in struct {
		Status models.OrderStatus `json:"status"`
	}
	if !cx.DecodeJSON(&in) {
		return
	}

	id := cx.Param("id")
	if err := c.orders.Authorize(cx.Context(), p, id, services.ActionUpdateStatus); err != nil {
		cx.Fail(err)
		return
	}

	order, err := c.orders.UpdateOrderStatus(cx.Context(), id, in.Status)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, order)
}

func (c *OrderController) Destroy(cx *ctx.Context) {
	p, ok := principal(cx)
	if !ok {
		return
	}

	id := cx.Param("id")
	if err := c.orders.Authorize(cx.Context(), p, id, services.ActionDelete); err != nil {
		cx.Fail(err)
		return
	}
	if err := c.orders.DeleteOrder(cx.Context(), id); err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, successBody{Success: true})
}

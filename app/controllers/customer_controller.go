package controllers

import (
	"net/http"

	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
)

type CustomerController struct {
	customers *services.CustomerService
	orders    *services.OrderService
}

func NewCustomerController(customers *services.CustomerService, orders *services.OrderService) *CustomerController {
	return &CustomerController{customers: customers, orders: orders}
}

func (c *CustomerController) Register(cx *ctx.Context) {
	var in services.RegisterCustomerInput
	if !cx.DecodeJSON(&in) {
		return
	}

	session, err := c.customers.Register(cx.Context(), in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusCreated, map[string]any{
		"success":  true,
		"customer": session.Customer,
		"token":    session.Token,
	})
}

func (c *CustomerController) Login(cx *ctx.Context) {
	var in credentials
	if !cx.DecodeJSON(&in) {
		return
	}

	session, err := c.customers.Login(cx.Context(), in.Email, in.Password)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"customer": session.Customer,
		"token":    session.Token,
	})
}

func (c *CustomerController) Orders(cx *ctx.Context) {
	id := cx.Param("id")
	if !actingFor(cx, auth.RoleCustomer, id) {
		return
	}

	orders, err := c.orders.ListCustomerOrders(cx.Context(), id)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, orders)
}

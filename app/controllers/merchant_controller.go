package controllers

import (
	"fmt"
	"net/http"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
)

type MerchantController struct {
	merchants *services.MerchantService
	catalog   *services.CatalogService
}

func NewMerchantController(merchants *services.MerchantService, catalog *services.CatalogService) *MerchantController {
	return &MerchantController{merchants: merchants, catalog: catalog}
}

// Register handles a merchant application.
func (c *MerchantController) Register(cx *ctx.Context) {
	var in services.RegisterMerchantInput
	if !cx.DecodeJSON(&in) {
		return
	}

	id, err := c.merchants.SubmitRegistration(cx.Context(), in)
	if err != nil {
		cx.Fail(err)
		return
	}

	cx.JSON(http.StatusCreated, map[string]any{
		"success":    true,
		"message":    "Merchant registered successfully",
		"merchantId": id,
	})
}

func (c *MerchantController) Login(cx *ctx.Context) {
	var in credentials
	if !cx.DecodeJSON(&in) {
		return
	}

	session, err := c.merchants.Login(cx.Context(), in.Email, in.Password)
	if err != nil {
		cx.Fail(err)
		return
	}

	cx.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"merchant": session.Merchant,
		"token":    session.Token,
	})
}

// Decide approves or rejects an application.
func (c *MerchantController) Decide(cx *ctx.Context) {
	var in struct {
		MerchantID string                `json:"merchantId"`
		Status     models.MerchantStatus `json:"status"`
	}
	if !cx.DecodeJSON(&in) {
		return
	}

	m, err := c.merchants.Decide(cx.Context(), in.MerchantID, in.Status)
	if err != nil {
		cx.Fail(err)
		return
	}

	cx.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("Merchant status updated to %s", m.Status),
		"merchant": m,
	})
}

func (c *MerchantController) Index(cx *ctx.Context) {
	merchants, err := c.merchants.ListMerchants(cx.Context(), cx.Query("status"), cx.Query("search"))
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, merchants)
}

func (c *MerchantController) Products(cx *ctx.Context) {
	products, err := c.catalog.ListMerchantProducts(cx.Context(), cx.Param("id"))
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, products)
}

// Orders lists orders containing the merchant's products, trimmed to the
// merchant's own lines.
func (c *MerchantController) Orders(cx *ctx.Context) {
	id := cx.Param("id")
	if !actingFor(cx, auth.RoleMerchant, id) {
		return
	}

	orders, err := c.catalog.ListMerchantOrders(cx.Context(), id)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, orders)
}

func (c *MerchantController) Stats(cx *ctx.Context) {
	id := cx.Param("id")
	if !actingFor(cx, auth.RoleMerchant, id) {
		return
	}

	stats, err := c.catalog.MerchantStats(cx.Context(), id)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, stats)
}

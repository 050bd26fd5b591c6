package controllers

import (
	"net/http"

	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
)

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

func (c *ProductController) Index(cx *ctx.Context) {
	products, err := c.catalog.ListProducts(cx.Context(), cx.Query("category"), cx.Query("search"))
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, products)
}

func (c *ProductController) Show(cx *ctx.Context) {
	p, err := c.catalog.GetProduct(cx.Context(), cx.Param("id"))
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, p)
}

// Store adds a product to the calling merchant's shop.
func (c *ProductController) Store(cx *ctx.Context) {
	p, ok := principal(cx)
	if !ok {
		return
	}
	var in services.ProductInput
	if !cx.DecodeJSON(&in) {
		return
	}

	product, err := c.catalog.CreateProduct(cx.Context(), p.ID, in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusCreated, product)
}

func (c *ProductController) Update(cx *ctx.Context) {
	p, ok := principal(cx)
	if !ok {
		return
	}
	var in services.ProductInput
	if !cx.DecodeJSON(&in) {
		return
	}

	product, err := c.catalog.UpdateProduct(cx.Context(), p.ID, cx.Param("id"), in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, product)
}

func (c *ProductController) Destroy(cx *ctx.Context) {
	p, ok := principal(cx)
	if !ok {
		return
	}

	if err := c.catalog.DeleteProduct(cx.Context(), p.ID, cx.Param("id")); err != nil {
		cx.Fail(err)
		return
	}
	cx.JSON(http.StatusOK, successBody{Success: true})
}

package routes

import (
	"fmt"

	"github.com/mogusu300/b2zi-merchant/app/controllers"
	catalogql "github.com/mogusu300/b2zi-merchant/app/graphql"
	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/cache"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
	"github.com/mogusu300/b2zi-merchant/pkg/graphql"
	"github.com/mogusu300/b2zi-merchant/pkg/middleware"
	"github.com/mogusu300/b2zi-merchant/pkg/rbac"
	"github.com/mogusu300/b2zi-merchant/pkg/router"
	"gorm.io/gorm"
)

// RegisterAPI mounts every /api endpoint on r.
func RegisterAPI(r *router.Router, db *gorm.DB, views cache.Counter) error {
	catalog := services.NewCatalogService(db, views)
	merchantSvc := services.NewMerchantService(db)
	orderSvc := services.NewOrderService(db)

	merchants := controllers.NewMerchantController(merchantSvc, catalog)
	products := controllers.NewProductController(catalog)
	orders := controllers.NewOrderController(orderSvc)
	customers := controllers.NewCustomerController(services.NewCustomerService(db), orderSvc)
	admin := controllers.NewAdminController(services.NewAdminService())
	uploads := controllers.NewUploadController()

	schema, err := catalogql.NewSchema(catalog)
	if err != nil {
		return fmt.Errorf("routes: graphql schema: %w", err)
	}

	api := r.Group("/api")

	// Public
	api.Post("/register", "merchants.register", ctx.Wrap(merchants.Register))
	api.Post("/merchants/login", "merchants.login", ctx.Wrap(merchants.Login))
	api.Get("/merchants/{id}/products", "merchants.products", ctx.Wrap(merchants.Products))
	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))
	api.Post("/customers/register", "customers.register", ctx.Wrap(customers.Register))
	api.Post("/customers/login", "customers.login", ctx.Wrap(customers.Login))
	api.Post("/admin/login", "admin.login", ctx.Wrap(admin.Login))
	api.Post("/upload", "upload.store", ctx.Wrap(uploads.Store))
	api.Post("/graphql", "graphql", graphql.Handler(schema))

	authed := api.Group("", middleware.Authenticate)

	adminOnly := authed.Group("", rbac.HasRole(auth.RoleAdmin))
	adminOnly.Get("/merchants", "merchants.index", ctx.Wrap(merchants.Index))
	adminOnly.Put("/merchant", "merchants.decide", ctx.Wrap(merchants.Decide))

	merchantOrAdmin := authed.Group("", rbac.HasRole(auth.RoleMerchant, auth.RoleAdmin))
	merchantOrAdmin.Get("/merchants/{id}/orders", "merchants.orders", ctx.Wrap(merchants.Orders))
	merchantOrAdmin.Get("/merchants/{id}/stats", "merchants.stats", ctx.Wrap(merchants.Stats))
	merchantOrAdmin.Patch("/orders/{id}", "orders.update", ctx.Wrap(orders.Update))

	merchantOnly := authed.Group("", rbac.HasRole(auth.RoleMerchant))
	merchantOnly.Post("/products", "products.store", ctx.Wrap(products.Store))
	merchantOnly.Put("/products/{id}", "products.update", ctx.Wrap(products.Update))
	merchantOnly.Delete("/products/{id}", "products.destroy", ctx.Wrap(products.Destroy))

	customerOrAdmin := authed.Group("", rbac.HasRole(auth.RoleCustomer, auth.RoleAdmin))
	customerOrAdmin.Get("/orders", "orders.index", ctx.Wrap(orders.Index))
	customerOrAdmin.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(orders.Destroy))
	customerOrAdmin.Get("/customers/{id}/orders", "customers.orders", ctx.Wrap(customers.Orders))

	customerOnly := authed.Group("", rbac.HasRole(auth.RoleCustomer))
	customerOnly.Post("/orders", "orders.store", ctx.Wrap(orders.Store))

	return nil
}

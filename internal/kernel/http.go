// Package kernel assembles the b2zi HTTP handler: the global middleware
// stack, operational endpoints and the /api routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/mogusu300/b2zi-merchant/app/listeners"
	"github.com/mogusu300/b2zi-merchant/app/routes"
	"github.com/mogusu300/b2zi-merchant/config"
	"github.com/mogusu300/b2zi-merchant/pkg/cache"
	"github.com/mogusu300/b2zi-merchant/pkg/metrics"
	"github.com/mogusu300/b2zi-merchant/pkg/middleware"
	"github.com/mogusu300/b2zi-merchant/pkg/reqid"
	"github.com/mogusu300/b2zi-merchant/pkg/response"
	"github.com/mogusu300/b2zi-merchant/pkg/router"
	"gorm.io/gorm"
)

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel wires every route against db and the product view counter.
func NewHTTPKernel(db *gorm.DB, views cache.Counter) (*HTTPKernel, error) {
	listeners.Register()

	r := router.New()

	// outermost first
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(corsOptions()))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", "health", health(db))
	r.Get("/metrics", "metrics", metrics.Handler())

	if err := routes.RegisterAPI(r, db, views); err != nil {
		return nil, err
	}
	return &HTTPKernel{router: r}, nil
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }

func corsOptions() middleware.CORSOptions {
	opts := middleware.DefaultCORSOptions()
	if origins := middleware.ParseOrigins(config.Get("CORS_ORIGINS", "")); len(origins) > 0 {
		opts.AllowedOrigins = origins
	}
	return opts
}

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil {
			dbStatus = "unavailable"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				dbStatus = "unavailable"
			}
		}

		status := http.StatusOK
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		response.JSON(w, status, map[string]string{"status": "ok", "database": dbStatus})
	}
}

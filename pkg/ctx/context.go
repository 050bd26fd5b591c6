// Package ctx provides the request context handed to b2zi controllers.
//
// A handler takes one *Context instead of (http.ResponseWriter, *http.Request)
// and reports service errors through Fail:
//
//	func (c *ProductController) Show(cx *ctx.Context) {
//	    p, err := c.catalog.GetProduct(cx.Context(), cx.Param("id"))
//	    if err != nil {
//	        cx.Fail(err)
//	        return
//	    }
//	    cx.JSON(http.StatusOK, p)
//	}
//
//	r.Get("/products/{id}", "products.show", ctx.Wrap(c.Show))
package ctx

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	"github.com/mogusu300/b2zi-merchant/pkg/bind"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"github.com/mogusu300/b2zi-merchant/pkg/response"
)

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc for the router.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{W: w, R: r})
	}
}

type Context struct {
	W http.ResponseWriter
	R *http.Request
}

// Context returns the request's context.Context for service calls.
func (c *Context) Context() context.Context { return c.R.Context() }

// Log returns the logger tagged by the request middleware.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// Param returns a chi path parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// Query returns a trimmed query-string value, or "".
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// Principal returns the caller set by middleware.Authenticate.
func (c *Context) Principal() (auth.Principal, bool) { return auth.FromCtx(c.R.Context()) }

// FormFile parses the multipart body, keeping at most maxMemory bytes in
// memory, and returns the named file part.
func (c *Context) FormFile(field string, maxMemory int64) (multipart.File, *multipart.FileHeader, error) {
	if err := c.R.ParseMultipartForm(maxMemory); err != nil {
		return nil, nil, err
	}
	return c.R.FormFile(field)
}

// DecodeJSON decodes the body into dest. Field validation belongs to the
// service; only a malformed or empty body is answered here, with a 400.
func (c *Context) DecodeJSON(dest any) bool {
	if err := bind.Decode(c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (c *Context) JSON(code int, v any) { response.JSON(c.W, code, v) }

// Error sends {"error": message}.
func (c *Context) Error(code int, message string) { response.Error(c.W, code, message) }

// Fail maps a service error to its status code. Unclassified errors are
// logged and answered with an opaque 500.
func (c *Context) Fail(err error) { response.Fail(c.W, c.R, err) }

func (c *Context) Unauthorized(message string) { c.Error(http.StatusUnauthorized, message) }

func (c *Context) Forbidden() { c.Error(http.StatusForbidden, "Forbidden") }

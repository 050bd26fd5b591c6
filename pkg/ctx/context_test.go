package ctx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mogusu300/b2zi-merchant/pkg/apperr"
	"github.com/mogusu300/b2zi-merchant/pkg/auth"
	appctx "github.com/mogusu300/b2zi-merchant/pkg/ctx"
)

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.JSON(http.StatusCreated, map[string]any{"success": true})
	})(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestParamAndQuery(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/merchants/{id}", appctx.Wrap(func(c *appctx.Context) {
		if got := c.Param("id"); got != "m-1" {
			t.Errorf("expected m-1, got %s", got)
		}
		if got := c.Query("search"); got != "mug" {
			t.Errorf("expected trimmed query, got %q", got)
		}
		if got := c.Query("status"); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
		c.JSON(http.StatusOK, nil)
	}))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/merchants/m-1?search=%20mug%20", nil))
}

func TestFailMapsServiceErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(apperr.New(apperr.ErrInvalidTransition, "Cannot move order from delivered to pending"))
	})(rec, httptest.NewRequest(http.MethodPatch, "/", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(errors.New("database is locked"))
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "locked") {
		t.Errorf("expected opaque 500, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{ID: "c-1", Role: auth.RoleCustomer}))

	appctx.Wrap(func(c *appctx.Context) {
		p, ok := c.Principal()
		if !ok || p.ID != "c-1" {
			t.Errorf("expected principal c-1, got %+v", p)
		}
	})(httptest.NewRecorder(), req)
}

func TestDecodeJSONSkipsValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name" validate:"required"`
		}
		if !c.DecodeJSON(&input) {
			t.Error("expected DecodeJSON to accept a well-formed body")
		}
	})(rec, req)

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		var input map[string]any
		if c.DecodeJSON(&input) {
			t.Error("expected malformed JSON to fail")
		}
	})(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

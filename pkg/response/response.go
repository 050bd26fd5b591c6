// Package response writes JSON bodies for handlers and middleware.
//
// Success bodies are whatever the handler passes in. Failures share one
// shape:
//
//	{"error": "Invalid order data", "errors": {"items": "The items field is required."}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/mogusu300/b2zi-merchant/pkg/apperr"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// Fail maps a service error to its status code. Errors without a public
// message are logged and reported as a generic 500.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	e, ok := apperr.Public(err)
	if !ok || status == http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	JSON(w, status, ErrorBody{Error: e.Error(), Errors: e.Fields})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

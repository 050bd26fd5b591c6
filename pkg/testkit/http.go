package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Case is one HTTP exchange in a table-driven test.
type Case struct {
	Name   string
	Method string
	URL    string
	Token  string
	// Body is marshalled to JSON unless it is already a string or []byte.
	Body any

	ExpectedCode int
	// ExpectedBody, when set, must be a subset of the JSON response.
	ExpectedBody map[string]any
}

// RunCases fires each case as a subtest.
func RunCases(t *testing.T, h http.Handler, cases []Case) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			rec := Do(t, h, tc.Method, tc.URL, tc.Body, tc.Token)
			AssertStatus(t, rec, tc.ExpectedCode)
			if tc.ExpectedBody != nil {
				AssertJSONSubset(t, tc.ExpectedBody, rec.Body.Bytes())
			}
		})
	}
}

// Do sends one request to h and returns the recorded response.
func Do(t testing.TB, h http.Handler, method, url string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err, "testkit: marshal body")
		r = bytes.NewReader(data)
	}

	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(strings.ToUpper(method), url, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the JSON response into a T.
func Decode[T any](t testing.TB, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "testkit: decode %s", rec.Body.String())
	return v
}

// AssertStatus checks the status code and prints the body on mismatch.
func AssertStatus(t testing.TB, rec *httptest.ResponseRecorder, want int) bool {
	t.Helper()
	return assert.Equal(t, want, rec.Code, "status mismatch, body: %s", rec.Body.String())
}

package testkit

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertJSONSubset checks that every key in expected is present in the
// actual JSON object with an equal value. Values are normalised through JSON
// so numbers compare as float64 regardless of the Go type used in expected.
func AssertJSONSubset(t testing.TB, expected map[string]any, actual []byte) bool {
	t.Helper()

	var act map[string]any
	if !assert.NoError(t, json.Unmarshal(actual, &act), "response is not a JSON object: %s", actual) {
		return false
	}

	ok := true
	for k, want := range expected {
		got, exists := act[k]
		if !exists {
			ok = assert.Fail(t, fmt.Sprintf("key %q missing in response", k), "body: %s", actual) && ok
			continue
		}
		ok = assert.Equal(t, normalise(want), got, "key %q", k) && ok
	}
	return ok
}

// AssertError checks an error response's status and its "error" message.
func AssertError(t testing.TB, rec *httptest.ResponseRecorder, code int, message string) bool {
	t.Helper()
	if !AssertStatus(t, rec, code) {
		return false
	}
	return AssertJSONSubset(t, map[string]any{"error": message}, rec.Body.Bytes())
}

func normalise(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

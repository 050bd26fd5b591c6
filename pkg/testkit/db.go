// Package testkit is the shared harness for b2zi tests: a migrated in-memory
// SQLite database, fixture builders, and table-driven HTTP cases fired
// through httptest.
//
//	func TestCreateOrder(t *testing.T) {
//	    db := testkit.NewDB(t)
//	    m := testkit.Merchant(t, db, models.MerchantApproved)
//	    ...
//	    testkit.RunCases(t, handler, []testkit.Case{
//	        {Name: "empty cart", Method: "POST", URL: "/api/orders", Token: tok,
//	            Body: map[string]any{"items": []any{}}, ExpectedCode: 400},
//	    })
//	}
package testkit

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mogusu300/b2zi-merchant/database/migrations" // registers the schema
	"github.com/mogusu300/b2zi-merchant/pkg/database"
	"github.com/mogusu300/b2zi-merchant/pkg/migration"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database, runs every registered
// migration against it and closes it when the test ends.
//
// The pool is capped at one connection so every statement sees the same
// in-memory database; code under test must therefore run all statements of a
// transaction through the transaction handle.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err, "testkit: open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.New(db).Quiet().Run(), "testkit: migrate")
	return db
}

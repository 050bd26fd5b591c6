package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestRunAndRollback(t *testing.T) {
	saved := registry
	registry = map[string]Migration{}
	t.Cleanup(func() { registry = saved })

	Register("20260101000000_create_widgets", createWidgets{})

	db := openDB(t)
	r := New(db).Quiet()

	require.NoError(t, r.Run())
	assert.True(t, db.Migrator().HasTable(&widget{}))

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	// second run is a no-op
	require.NoError(t, r.Run())

	require.NoError(t, r.Rollback())
	assert.False(t, db.Migrator().HasTable(&widget{}))

	pending, err = r.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "20260101000000_create_widgets", pending[0].Name())
}

type failing struct{}

func (failing) Up(db *gorm.DB) error   { return errors.New("boom") }
func (failing) Down(db *gorm.DB) error { return nil }

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	saved := registry
	registry = map[string]Migration{}
	t.Cleanup(func() { registry = saved })

	Register("20260101000001_broken", failing{})
	Register("20260101000000_create_widgets", createWidgets{})

	db := openDB(t)
	r := New(db).Quiet()
	require.Error(t, r.Run())

	states, err := r.Status()
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "20260101000000_create_widgets", states[0].Name)
	assert.True(t, states[0].Applied())
	assert.False(t, states[1].Applied())
}

func TestRunWithoutMigrations(t *testing.T) {
	saved := registry
	registry = map[string]Migration{}
	t.Cleanup(func() { registry = saved })

	assert.ErrorIs(t, New(openDB(t)).Quiet().Run(), ErrNoMigrations)
}

func TestRegisterTwicePanics(t *testing.T) {
	saved := registry
	registry = map[string]Migration{}
	t.Cleanup(func() { registry = saved })

	Register("x", createWidgets{})
	assert.Panics(t, func() { Register("x", createWidgets{}) })
}

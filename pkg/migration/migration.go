// Package migration applies the versioned schema in database/migrations.
//
// Migrations register themselves from init:
//
//	func init() {
//	    migration.Register("20260101000000_create_merchants_table", &CreateMerchantsTable{})
//	}
//
// and run from the CLI (b2zi migrate, migrate:rollback, migrate:status) or on
// server boot when AUTO_MIGRATE is set.
package migration

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"gorm.io/gorm"
)

// Migration changes the schema one step forward and back.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// ErrNoMigrations is returned by Run when nothing has been registered, which
// usually means the migrations package was not imported.
var ErrNoMigrations = errors.New("no migrations registered")

type applied struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (applied) TableName() string { return "b2zi_migrations" }

type entry struct {
	name string
	m    Migration
}

func (e entry) Name() string { return e.name }

var registry = map[string]Migration{}

// Register adds m under name. Names sort in the order they must run.
func Register(name string, m Migration) {
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("migration: %s registered twice", name))
	}
	registry[name] = m
}

func sorted() []entry {
	out := make([]entry, 0, len(registry))
	for name, m := range registry {
		out = append(out, entry{name: name, m: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Runner applies registered migrations to one database.
type Runner struct {
	db  *gorm.DB
	out io.Writer
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db, out: os.Stdout}
}

// Quiet stops progress lines going to stdout.
func (r *Runner) Quiet() *Runner {
	r.out = io.Discard
	return r
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&applied{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) appliedByName() (map[string]applied, error) {
	var rows []applied
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read applied: %w", err)
	}
	m := make(map[string]applied, len(rows))
	for _, row := range rows {
		m[row.Name] = row
	}
	return m, nil
}

// Pending lists registered migrations that have not been applied, in run
// order.
func (r *Runner) Pending() ([]entry, error) {
	done, err := r.appliedByName()
	if err != nil {
		return nil, err
	}
	var pending []entry
	for _, e := range sorted() {
		if _, ok := done[e.name]; !ok {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// Run applies every pending migration as one batch. Each migration and its
// bookkeeping row commit together, so a failure leaves earlier steps applied
// and the failing one absent.
func (r *Runner) Run() error {
	if len(registry) == 0 {
		return ErrNoMigrations
	}
	if err := r.ensureTable(); err != nil {
		return err
	}
	pending, err := r.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	last, err := r.lastBatch()
	if err != nil {
		return err
	}
	batch := last + 1

	for _, e := range pending {
		fmt.Fprintf(r.out, "  migrating  %s\n", e.name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := e.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&applied{Name: e.name, Batch: batch}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s: %w", e.name, err)
		}
	}

	logger.Info("migrations applied", "count", len(pending), "batch", batch)
	return nil
}

// Rollback reverts the most recent batch, newest first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	last, err := r.lastBatch()
	if err != nil {
		return err
	}
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	var rows []applied
	if err := r.db.Where("batch = ?", last).Order("name desc").Find(&rows).Error; err != nil {
		return fmt.Errorf("migration: read batch %d: %w", last, err)
	}

	for _, row := range rows {
		m, ok := registry[row.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}
		fmt.Fprintf(r.out, "  reverting  %s\n", row.Name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&applied{}, row.ID).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s: %w", row.Name, err)
		}
	}

	logger.Info("migrations rolled back", "count", len(rows), "batch", last)
	return nil
}

// State describes one registered migration. Batch is zero while pending.
type State struct {
	Name  string
	Batch int
	RunAt time.Time
}

func (s State) Applied() bool { return s.Batch > 0 }

// Status reports every registered migration in run order.
func (r *Runner) Status() ([]State, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.appliedByName()
	if err != nil {
		return nil, err
	}
	var out []State
	for _, e := range sorted() {
		st := State{Name: e.name}
		if row, ok := done[e.name]; ok {
			st.Batch, st.RunAt = row.Batch, row.RunAt
		}
		out = append(out, st)
	}
	return out, nil
}

func (r *Runner) lastBatch() (int, error) {
	var last struct{ Max int }
	if err := r.db.Model(&applied{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&last).Error; err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return last.Max, nil
}

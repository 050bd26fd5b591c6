package database

import (
	"time"

	"github.com/mogusu300/b2zi-merchant/pkg/metrics"
	"gorm.io/gorm"
)

const startedAtKey = "b2zi:started_at"

// queryMetrics is a gorm plugin that times every statement into
// metrics.DBQueryDuration.
type queryMetrics struct{}

func (queryMetrics) Name() string { return "b2zi:query_metrics" }

func (queryMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, markStart) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, observe("create")) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, markStart) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, observe("query")) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, markStart) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, observe("update")) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, markStart) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, observe("delete")) }},
		{"row", func(n string) error { return cb.Row().Before("gorm:row").Register(n, markStart) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, observe("row")) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, markStart) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, observe("raw")) }},
	}

	for _, h := range hooks {
		if err := h.before("b2zi:before_" + h.op); err != nil {
			return err
		}
		if err := h.after("b2zi:after_" + h.op); err != nil {
			return err
		}
	}
	return nil
}

func markStart(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func observe(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		if start, ok := v.(time.Time); ok {
			metrics.ObserveDBQuery(op, start)
		}
	}
}

package database

import (
	"time"

	"gorm.io/gorm"
)

// QueryObserver receives one observation per executed statement
type QueryObserver interface {
	ObserveQuery(operation, table string, elapsed time.Duration, err error)
}

const startKey = "metrics:start_time"

// MetricsPlugin is a GORM plugin timing create/query/update/delete/row/raw callbacks
type MetricsPlugin struct {
	observer QueryObserver
}

func NewMetricsPlugin(observer QueryObserver) *MetricsPlugin {
	return &MetricsPlugin{observer: observer}
}

func (p *MetricsPlugin) Name() string { return "chat:metrics" }

type registerFunc = func(name string, fn func(*gorm.DB)) error

func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name, operation string
		before, after   registerFunc
	}{
		{"create", "create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", "select", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", "update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", "delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", "row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", "raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		if err := h.before("metrics:before_"+h.name, p.before); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+h.name, p.after(h.operation)); err != nil {
			return err
		}
	}
	return nil
}

func (p *MetricsPlugin) before(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func (p *MetricsPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		err := db.Error
		if IsNotFound(err) {
			err = nil
		}
		p.observer.ObserveQuery(operation, table, time.Since(start), err)
	}
}

package testutil

import "gorm.io/gorm"

// DBHelper reads tables directly, bypassing services and the cache
type DBHelper struct {
	DB *gorm.DB
}

func NewDBHelper(db *gorm.DB) *DBHelper {
	return &DBHelper{DB: db}
}

// DeleteAll empties a table without resetting its sequence
func (h *DBHelper) DeleteAll(tableName string) error {
	return h.DB.Exec("DELETE FROM " + tableName).Error
}

func (h *DBHelper) Count(tableName string) (int64, error) {
	var count int64
	err := h.DB.Table(tableName).Count(&count).Error
	return count, err
}

func (h *DBHelper) CountWhere(tableName string, where string, args ...any) (int64, error) {
	var count int64
	err := h.DB.Table(tableName).Where(where, args...).Count(&count).Error
	return count, err
}

func (h *DBHelper) Exists(tableName string, where string, args ...any) (bool, error) {
	count, err := h.CountWhere(tableName, where, args...)
	return count > 0, err
}

// Exec runs raw SQL, used to change rows behind the cache's back
func (h *DBHelper) Exec(sql string, args ...any) error {
	return h.DB.Exec(sql, args...).Error
}

func (h *DBHelper) Seed(data any) error {
	return h.DB.Create(data).Error
}

package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrInvalidConfig  = errors.New("invalid database config")
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// IsDuplicateKey recognises unique constraint violations from every supported driver.
// gorm translates most of them to ErrDuplicatedKey when TranslateError is on; the
// string check covers sqlite builds where translation is unavailable.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicateKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// IsNotFound matches both the package sentinel and gorm's
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

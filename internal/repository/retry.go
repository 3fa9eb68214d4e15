package repository

import (
	"errors"

	"gorm.io/gorm"
)

// withReadRetry runs fn and retries exactly once when it fails with a
// transient storage error. Only pure reads go through this path; writes are
// never retried here because a duplicated side effect is worse than a
// surfaced error.
func withReadRetry(fn func() error) error {
	err := fn()
	if err == nil || !transient(err) {
		return err
	}
	return fn()
}

// transient reports whether the error looks like a connectivity problem
// rather than a definitive answer from the store.
func transient(err error) bool {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidTransaction):
		return false
	}
	return true
}

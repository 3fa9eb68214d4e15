package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestWithReadRetry(t *testing.T) {
	t.Run("no retry on success", func(t *testing.T) {
		calls := 0
		err := withReadRetry(func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries once on transient failure", func(t *testing.T) {
		calls := 0
		transientErr := errors.New("connection reset by peer")
		err := withReadRetry(func() error {
			calls++
			if calls == 1 {
				return transientErr
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("retries at most once", func(t *testing.T) {
		calls := 0
		transientErr := errors.New("connection reset by peer")
		err := withReadRetry(func() error {
			calls++
			return transientErr
		})
		assert.ErrorIs(t, err, transientErr)
		assert.Equal(t, 2, calls)
	})

	t.Run("definitive answers are not retried", func(t *testing.T) {
		for _, definitive := range []error{
			gorm.ErrRecordNotFound,
			gorm.ErrDuplicatedKey,
			gorm.ErrForeignKeyViolated,
		} {
			calls := 0
			err := withReadRetry(func() error {
				calls++
				return definitive
			})
			assert.ErrorIs(t, err, definitive)
			assert.Equal(t, 1, calls, "error %v must not trigger a retry", definitive)
		}
	})
}

// TestFindByIDRetriesTransientFailure drives the retry through a real query
// path: the first SELECT dies at the wire level, the second succeeds.
func TestFindByIDRetriesTransientFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
		AddRow(1, "member@acme.test", "x", "member")

	mock.ExpectQuery(`SELECT \* FROM "principals"`).
		WillReturnError(errors.New("broken pipe"))
	mock.ExpectQuery(`SELECT \* FROM "principals"`).
		WillReturnRows(rows)

	repo := NewPrincipalRepository(db)
	p, err := repo.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "member@acme.test", p.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

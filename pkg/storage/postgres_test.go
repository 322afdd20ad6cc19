package storage

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlobMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS blobs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewPostgresStore(sqlx.NewDb(db, "sqlmock"))
	require.NoError(t, err)
	return store, mock, func() { db.Close() }
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock, cleanup := newBlobMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"version":2}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM blobs WHERE key = $1")).
		WithArgs("assessments").
		WillReturnRows(rows)

	data, found, err := store.Get(context.Background(), "assessments")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"version":2}`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	store, mock, cleanup := newBlobMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM blobs WHERE key = $1")).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, found, err := store.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorePutAndDelete(t *testing.T) {
	store, mock, cleanup := newBlobMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO blobs").
		WithArgs("users", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Put(context.Background(), "users", []byte(`[]`)))

	mock.ExpectExec("DELETE FROM blobs").
		WithArgs("users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Delete(context.Background(), "users"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresLoadLatest(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT raw FROM _zone_datasets ORDER BY id DESC LIMIT 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"raw"}).AddRow([]byte(`[{"id":"a","name":"A"}]`)))

	raw, err := NewPostgresRepository(db, "test", 0).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a","name":"A"}]`, string(raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT raw FROM _zone_datasets`).WillReturnRows(sqlmock.NewRows([]string{"raw"}))

	_, err := NewPostgresRepository(db, "test", 0).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSavePrunes(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO _zone_datasets(raw, source) VALUES($1, $2) RETURNING id`)).
		WithArgs(`[]`, "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec(`DELETE FROM _zone_datasets WHERE id NOT IN`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, NewPostgresRepository(db, "admin", 5).Save(context.Background(), []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveVersionWithoutPrune(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO _zone_datasets`).
		WithArgs(`[]`, "zonectl:zones.json").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := NewPostgresRepository(db, "admin", 0).SaveVersion(context.Background(), []byte(`[]`), "zonectl:zones.json")
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVersions(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, source, octet_length\(raw::text\), created_at FROM _zone_datasets`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source", "len", "created_at"}).
			AddRow(int64(3), "admin", 120, at).
			AddRow(int64(2), "zonectl:zones.json", 118, at.Add(-time.Hour)))

	vs, err := NewPostgresRepository(db, "admin", 0).Versions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, Version{ID: 3, Source: "admin", Bytes: 120, CreatedAt: at}, vs[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRollback(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO _zone_datasets\(raw, source\)\s+SELECT raw, 'rollback:'`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery(`INSERT INTO _zone_datasets\(raw, source\)\s+SELECT raw, 'rollback:'`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewPostgresRepository(db, "admin", 0)
	id, err := repo.Rollback(context.Background(), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)

	_, err = repo.Rollback(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestStatusStore_Get(t *testing.T) {
	db, mock := newMock(t)
	store := NewStatusStore(db, zaptest.NewLogger(t))
	attempt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(statusColumns).
		AddRow("r1", "d1", "success", attempt, "/cache/r1.csv", int64(128), "abc")
	mock.ExpectQuery(`SELECT .* FROM archival_status WHERE resource_id = \$1`).
		WithArgs("r1").
		WillReturnRows(rows)

	rec, found, err := store.Get(context.Background(), "r1")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ArchivalStatusSuccess, rec.Status)
	assert.Equal(t, "d1", rec.DatasetID)
	require.NotNil(t, rec.ContentSize)
	assert.Equal(t, int64(128), *rec.ContentSize)
	assert.True(t, attempt.Equal(*rec.LastAttemptAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusStore_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	store := NewStatusStore(db, zaptest.NewLogger(t))

	mock.ExpectQuery(`SELECT .* FROM archival_status`).
		WithArgs("r1").
		WillReturnError(sql.ErrNoRows)

	rec, found, err := store.Get(context.Background(), "r1")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
}

func TestStatusStore_GetUnavailable(t *testing.T) {
	db, mock := newMock(t)
	store := NewStatusStore(db, zaptest.NewLogger(t))

	mock.ExpectQuery(`SELECT .* FROM archival_status`).
		WithArgs("r1").
		WillReturnError(errors.New("connection refused"))

	_, _, err := store.Get(context.Background(), "r1")

	assert.ErrorIs(t, err, infra.ErrStoreUnavailable)
}

func TestStatusStore_ListForDataset(t *testing.T) {
	db, mock := newMock(t)
	store := NewStatusStore(db, zaptest.NewLogger(t))

	rows := sqlmock.NewRows(statusColumns).
		AddRow("r1", "d1", "success", nil, nil, nil, nil).
		AddRow("r2", "d1", "failure", nil, nil, nil, nil)
	mock.ExpectQuery(`SELECT .* FROM archival_status WHERE dataset_id = \$1`).
		WithArgs("d1").
		WillReturnRows(rows)

	records, err := store.ListForDataset(context.Background(), "d1")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.ArchivalStatusFailure, records[1].Status)
	assert.Nil(t, records[0].LastAttemptAt)
}

func TestStatusStore_Upsert(t *testing.T) {
	db, mock := newMock(t)
	store := NewStatusStore(db, zaptest.NewLogger(t))

	mock.ExpectExec(`INSERT INTO archival_status .* ON CONFLICT \(resource_id\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Upsert(context.Background(), &models.StatusRecord{
		ResourceID: "r1",
		DatasetID:  "d1",
		Status:     models.ArchivalStatusPending,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusStore_UpsertDatasetMismatch(t *testing.T) {
	db, mock := newMock(t)
	store := NewStatusStore(db, zaptest.NewLogger(t))

	mock.ExpectExec(`INSERT INTO archival_status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Upsert(context.Background(), &models.StatusRecord{
		ResourceID: "r1",
		DatasetID:  "d2",
		Status:     models.ArchivalStatusSuccess,
	})

	assert.ErrorIs(t, err, infra.ErrDatasetMismatch)
}

func TestStatusStore_UpsertValidation(t *testing.T) {
	db, _ := newMock(t)
	store := NewStatusStore(db, zaptest.NewLogger(t))
	ctx := context.Background()

	assert.ErrorIs(t, store.Upsert(ctx, nil), ErrRecordNil)
	assert.ErrorIs(t, store.Upsert(ctx, &models.StatusRecord{DatasetID: "d1"}), ErrResourceIDEmpty)
	assert.ErrorIs(t, store.Upsert(ctx, &models.StatusRecord{ResourceID: "r1"}), ErrDatasetIDEmpty)
}

func TestClaimStore_TryClaim(t *testing.T) {
	db, mock := newMock(t)
	claims := NewClaimStore(db, zaptest.NewLogger(t))

	mock.ExpectExec(`INSERT INTO archival_claims .* WHERE archival_claims.expires_at <= now\(\)`).
		WithArgs("resource:r1", sqlmock.AnyArg(), float64(600)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO archival_claims`).
		WithArgs("resource:r1", sqlmock.AnyArg(), float64(600)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	token, ok, err := claims.TryClaim(context.Background(), "resource:r1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = claims.TryClaim(context.Background(), "resource:r1", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimStore_ReleaseAndRefresh(t *testing.T) {
	db, mock := newMock(t)
	claims := NewClaimStore(db, zaptest.NewLogger(t))

	mock.ExpectExec(`DELETE FROM archival_claims WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO archival_claims .* ON CONFLICT \(claim_key\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, claims.Release(context.Background(), "dataset:d1", "token"))
	token, err := claims.Refresh(context.Background(), "dataset:d1", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimStore_Unavailable(t *testing.T) {
	db, mock := newMock(t)
	claims := NewClaimStore(db, zaptest.NewLogger(t))

	mock.ExpectExec(`INSERT INTO archival_claims`).
		WillReturnError(errors.New("broken pipe"))

	_, _, err := claims.TryClaim(context.Background(), "resource:r1", time.Minute)

	assert.ErrorIs(t, err, infra.ErrStoreUnavailable)
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS archival_status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

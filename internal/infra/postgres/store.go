package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/models"
)

const statusTable = "archival_status"

var statusColumns = []string{
	"resource_id",
	"dataset_id",
	"status",
	"last_attempt_at",
	"cache_location",
	"content_size",
	"content_hash",
}

var _ infra.StatusStore = (*statusStore)(nil)

type statusStore struct {
	db     *sqlx.DB
	qb     sq.StatementBuilderType
	logger *zap.Logger
}

func NewStatusStore(db *sqlx.DB, log *zap.Logger) infra.StatusStore {
	return &statusStore{
		db:     db,
		qb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: log,
	}
}

func (s *statusStore) Get(ctx context.Context, resourceID string) (*models.StatusRecord, bool, error) {
	if resourceID == "" {
		return nil, false, ErrResourceIDEmpty
	}

	query, args, err := s.qb.
		Select(statusColumns...).
		From(statusTable).
		Where(sq.Eq{"resource_id": resourceID}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	var record models.StatusRecord
	err = s.db.GetContext(ctx, &record, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}

	return &record, true, nil
}

func (s *statusStore) ListForDataset(ctx context.Context, datasetID string) ([]models.StatusRecord, error) {
	if datasetID == "" {
		return nil, ErrDatasetIDEmpty
	}

	query, args, err := s.qb.
		Select(statusColumns...).
		From(statusTable).
		Where(sq.Eq{"dataset_id": datasetID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	records := []models.StatusRecord{}
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}

	return records, nil
}

// Upsert не меняет dataset_id существующей записи: конфликт возвращает ErrDatasetMismatch.
func (s *statusStore) Upsert(ctx context.Context, record *models.StatusRecord) error {
	if record == nil {
		return ErrRecordNil
	}
	if record.ResourceID == "" {
		return ErrResourceIDEmpty
	}
	if record.DatasetID == "" {
		return ErrDatasetIDEmpty
	}

	query, args, err := s.qb.
		Insert(statusTable).
		Columns(statusColumns...).
		Values(
			record.ResourceID,
			record.DatasetID,
			string(record.Status),
			record.LastAttemptAt,
			record.CacheLocation,
			record.ContentSize,
			record.ContentHash,
		).
		Suffix(`ON CONFLICT (resource_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_attempt_at = EXCLUDED.last_attempt_at,
			cache_location = EXCLUDED.cache_location,
			content_size = EXCLUDED.content_size,
			content_hash = EXCLUDED.content_hash,
			updated_at = now()
			WHERE archival_status.dataset_id = EXCLUDED.dataset_id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: ресурс %s", infra.ErrDatasetMismatch, record.ResourceID)
	}

	s.logger.Info("статус архивации сохранен",
		zap.String("resource_id", record.ResourceID),
		zap.String("dataset_id", record.DatasetID),
		zap.String("status", string(record.Status)),
	)
	return nil
}

func (s *statusStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}
	return nil
}

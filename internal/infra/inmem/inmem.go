package inmem

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/models"
)

var _ infra.StatusStore = (*inmemDB)(nil)

type inmemDB struct {
	logger    *zap.Logger
	db        map[string]*models.StatusRecord
	byDataset map[string]map[string]struct{}
	mu        sync.RWMutex
}

func New(log *zap.Logger) infra.StatusStore {
	return &inmemDB{
		logger:    log,
		db:        make(map[string]*models.StatusRecord),
		byDataset: make(map[string]map[string]struct{}),
	}
}

func (db *inmemDB) Get(ctx context.Context, resourceID string) (*models.StatusRecord, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if resourceID == "" {
		return nil, false, ErrResourceIDEmpty
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	record, exists := db.db[resourceID]
	if !exists {
		return nil, false, nil
	}

	return copyRecord(record), true, nil
}

func (db *inmemDB) ListForDataset(ctx context.Context, datasetID string) ([]models.StatusRecord, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if datasetID == "" {
		return nil, ErrDatasetIDEmpty
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := db.byDataset[datasetID]
	records := make([]models.StatusRecord, 0, len(ids))
	for id := range ids {
		records = append(records, *copyRecord(db.db[id]))
	}

	return records, nil
}

func (db *inmemDB) Upsert(ctx context.Context, record *models.StatusRecord) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if record == nil {
		return ErrRecordNil
	}
	if record.ResourceID == "" {
		return ErrResourceIDEmpty
	}
	if record.DatasetID == "" {
		return ErrDatasetIDEmpty
	}
	if !record.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, record.Status)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if existing, ok := db.db[record.ResourceID]; ok && existing.DatasetID != record.DatasetID {
		return fmt.Errorf("%w: %s -> %s", infra.ErrDatasetMismatch, existing.DatasetID, record.DatasetID)
	}

	db.db[record.ResourceID] = copyRecord(record)
	if db.byDataset[record.DatasetID] == nil {
		db.byDataset[record.DatasetID] = make(map[string]struct{})
	}
	db.byDataset[record.DatasetID][record.ResourceID] = struct{}{}

	db.logger.Info("статус архивации сохранен",
		zap.String("resource_id", record.ResourceID),
		zap.String("dataset_id", record.DatasetID),
		zap.String("status", string(record.Status)),
	)

	return nil
}

func (db *inmemDB) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}
	return nil
}

func copyRecord(r *models.StatusRecord) *models.StatusRecord {
	out := *r
	if r.LastAttemptAt != nil {
		t := *r.LastAttemptAt
		out.LastAttemptAt = &t
	}
	if r.CacheLocation != nil {
		s := *r.CacheLocation
		out.CacheLocation = &s
	}
	if r.ContentSize != nil {
		n := *r.ContentSize
		out.ContentSize = &n
	}
	if r.ContentHash != nil {
		h := *r.ContentHash
		out.ContentHash = &h
	}
	return &out
}

package infra

import (
	"context"

	"github.com/sunr3d/archiver-status/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=StatusStore --output=../../../mocks
type StatusStore interface {
	Get(ctx context.Context, resourceID string) (*models.StatusRecord, bool, error)
	ListForDataset(ctx context.Context, datasetID string) ([]models.StatusRecord, error)
	Upsert(ctx context.Context, record *models.StatusRecord) error
	Ping(ctx context.Context) error
}

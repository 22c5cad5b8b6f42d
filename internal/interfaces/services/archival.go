package services

import (
	"context"

	"github.com/sunr3d/archiver-status/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=ArchivalService --output=../../../mocks
type ArchivalService interface {
	GetResourceStatus(ctx context.Context, resourceID string) (*models.StatusRecord, error)
	GetDatasetStatus(ctx context.Context, datasetID string) (*models.DatasetSummary, error)
	GetOrInitiateResourceStatus(ctx context.Context, resourceID string) (*models.StatusRecord, error)
	GetOrInitiateDatasetStatus(ctx context.Context, datasetID string) (*models.DatasetSummary, error)

	HandleChange(ctx context.Context, event models.ChangeEvent) (bool, error)
	TriggerDataset(ctx context.Context, datasetID string) error
	TriggerResource(ctx context.Context, resourceID string) error

	ListResourceRecords(ctx context.Context, datasetID string) ([]models.StatusRecord, error)
	SaveRecord(ctx context.Context, record *models.StatusRecord) error

	// Drain ждет завершения фоновых постановок задач.
	Drain(ctx context.Context) error
}

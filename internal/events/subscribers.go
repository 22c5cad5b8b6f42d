package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/services"
	"github.com/sunr3d/archiver-status/models"
)

type CatalogWriter interface {
	PutDataset(ctx context.Context, ds *models.Dataset) error
	DeleteDataset(ctx context.Context, id string) error
}

// CatalogSubscriber держит локальный каталог в актуальном состоянии.
type CatalogSubscriber struct {
	catalog CatalogWriter
}

func NewCatalogSubscriber(catalog CatalogWriter) *CatalogSubscriber {
	return &CatalogSubscriber{catalog: catalog}
}

func (s *CatalogSubscriber) Name() string { return "catalog" }

func (s *CatalogSubscriber) OnChange(ctx context.Context, event models.ChangeEvent) error {
	if event.Operation == models.OperationDeleted || event.After == nil {
		return s.catalog.DeleteDataset(ctx, event.DatasetID())
	}
	return s.catalog.PutDataset(ctx, event.After)
}

// ArchivalSubscriber передает событие классификатору и проактивному запуску архивации.
type ArchivalSubscriber struct {
	svc    services.ArchivalService
	logger *zap.Logger
}

func NewArchivalSubscriber(svc services.ArchivalService, log *zap.Logger) *ArchivalSubscriber {
	return &ArchivalSubscriber{svc: svc, logger: log}
}

func (s *ArchivalSubscriber) Name() string { return "archival" }

func (s *ArchivalSubscriber) OnChange(ctx context.Context, event models.ChangeEvent) error {
	triggered, err := s.svc.HandleChange(ctx, event)
	if err != nil {
		return err
	}

	if triggered {
		s.logger.Info("архивация датасета запущена по событию",
			zap.String("dataset_id", event.DatasetID()),
			zap.String("operation", string(event.Operation)),
		)
	}
	return nil
}

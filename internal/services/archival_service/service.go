package archival_service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/config"
	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/internal/interfaces/services"
	"github.com/sunr3d/archiver-status/internal/metrics"
	"github.com/sunr3d/archiver-status/models"
)

const dispatchTimeout = 10 * time.Second

var _ services.ArchivalService = (*archivalService)(nil)

type Deps struct {
	Store      infra.StatusStore
	Claims     infra.ClaimStore
	Dispatcher infra.Dispatcher
	Catalog    infra.Catalog
	Metrics    *metrics.Metrics
}

type archivalService struct {
	store      infra.StatusStore
	claims     infra.ClaimStore
	dispatcher infra.Dispatcher
	catalog    infra.Catalog
	metrics    *metrics.Metrics
	classifier *Classifier
	logger     *zap.Logger
	claimTTL   time.Duration
	inflight   sync.WaitGroup
}

func New(log *zap.Logger, cfg *config.Config, deps Deps) services.ArchivalService {
	m := deps.Metrics
	if m == nil {
		m = metrics.New(cfg.MetricsNamespace, nil)
	}

	return &archivalService{
		store:      deps.Store,
		claims:     deps.Claims,
		dispatcher: deps.Dispatcher,
		catalog:    deps.Catalog,
		metrics:    m,
		classifier: NewClassifier(ClassifierMode(cfg.ClassifierMode)),
		logger:     log,
		claimTTL:   cfg.ClaimTTL,
	}
}

func (s *archivalService) GetResourceStatus(ctx context.Context, resourceID string) (*models.StatusRecord, error) {
	record, err := s.resourceRecord(ctx, resourceID, "get_resource_status")
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	res, err := s.lookupResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	s.metrics.Read("get_resource_status", metrics.OutcomePlaceholder)
	return models.PlaceholderRecord(res.ID, res.DatasetID), nil
}

func (s *archivalService) GetOrInitiateResourceStatus(ctx context.Context, resourceID string) (*models.StatusRecord, error) {
	record, err := s.resourceRecord(ctx, resourceID, "get_or_initiate_resource_status")
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	res, err := s.lookupResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	s.initiate(ctx, models.JobKindResource, res.ID, func(ctx context.Context) error {
		return s.dispatcher.EnqueueResource(ctx, res.ID)
	})

	s.metrics.Read("get_or_initiate_resource_status", metrics.OutcomePlaceholder)
	return models.PlaceholderRecord(res.ID, res.DatasetID), nil
}

func (s *archivalService) GetDatasetStatus(ctx context.Context, datasetID string) (*models.DatasetSummary, error) {
	ds, records, err := s.datasetRecords(ctx, datasetID, "get_dataset_status")
	if err != nil {
		return nil, err
	}

	summary, ok := Reduce(ds.ID, records)
	if !ok {
		s.metrics.Read("get_dataset_status", metrics.OutcomePlaceholder)
		summary = models.PlaceholderSummary(ds.ID)
	} else {
		s.metrics.Read("get_dataset_status", metrics.OutcomeHit)
	}

	summary.CatalogResourceCount = catalogCount(ds)
	return summary, nil
}

func (s *archivalService) GetOrInitiateDatasetStatus(ctx context.Context, datasetID string) (*models.DatasetSummary, error) {
	ds, records, err := s.datasetRecords(ctx, datasetID, "get_or_initiate_dataset_status")
	if err != nil {
		return nil, err
	}

	summary, ok := Reduce(ds.ID, records)
	if ok {
		s.metrics.Read("get_or_initiate_dataset_status", metrics.OutcomeHit)
		summary.CatalogResourceCount = catalogCount(ds)
		return summary, nil
	}

	s.initiate(ctx, models.JobKindDataset, ds.ID, func(ctx context.Context) error {
		return s.dispatcher.EnqueueDataset(ctx, ds.ID)
	})

	s.metrics.Read("get_or_initiate_dataset_status", metrics.OutcomePlaceholder)
	summary = models.PlaceholderSummary(ds.ID)
	summary.CatalogResourceCount = catalogCount(ds)
	return summary, nil
}

func (s *archivalService) HandleChange(ctx context.Context, event models.ChangeEvent) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	datasetID := event.DatasetID()
	if datasetID == "" {
		return false, fmt.Errorf("%w: событие без ID датасета", ErrInvalidID)
	}

	decision := s.classifier.Classify(event)
	s.metrics.ChangeEvent(string(event.Operation), decision.Trigger)

	s.logger.Debug("получено событие изменения датасета",
		zap.String("dataset_id", datasetID),
		zap.String("operation", string(event.Operation)),
		zap.Bool("trigger", decision.Trigger),
		zap.Strings("reasons", decision.Reasons),
	)

	if !decision.Trigger {
		return false, nil
	}

	if err := s.TriggerDataset(ctx, datasetID); err != nil {
		return true, err
	}
	return true, nil
}

// TriggerDataset ставит задачу без проверки существующих записей: изменение содержимого
// должно перезапустить архивацию даже поверх устаревшего успешного статуса.
func (s *archivalService) TriggerDataset(ctx context.Context, datasetID string) error {
	return s.trigger(ctx, models.JobKindDataset, datasetID, s.dispatcher.EnqueueDataset)
}

func (s *archivalService) TriggerResource(ctx context.Context, resourceID string) error {
	return s.trigger(ctx, models.JobKindResource, resourceID, s.dispatcher.EnqueueResource)
}

func (s *archivalService) ListResourceRecords(ctx context.Context, datasetID string) ([]models.StatusRecord, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if strings.TrimSpace(datasetID) == "" {
		return nil, ErrInvalidID
	}

	records, err := s.store.ListForDataset(ctx, datasetID)
	if err != nil {
		return nil, s.storeError("list_for_dataset", err)
	}
	return records, nil
}

func (s *archivalService) SaveRecord(ctx context.Context, record *models.StatusRecord) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if record == nil || strings.TrimSpace(record.ResourceID) == "" || strings.TrimSpace(record.DatasetID) == "" {
		return fmt.Errorf("%w: требуются resource_id и dataset_id", ErrInvalidRecord)
	}
	if !record.Status.Valid() {
		return fmt.Errorf("%w: статус %q", ErrInvalidRecord, record.Status)
	}
	if record.LastAttemptAt == nil {
		now := time.Now().UTC()
		record.LastAttemptAt = &now
	}

	if err := s.store.Upsert(ctx, record); err != nil {
		if errors.Is(err, infra.ErrDatasetMismatch) {
			return fmt.Errorf("%w: %v", ErrDatasetConflict, err)
		}
		return s.storeError("upsert", err)
	}

	s.logger.Info("статус архивации ресурса обновлен",
		zap.String("resource_id", record.ResourceID),
		zap.String("dataset_id", record.DatasetID),
		zap.String("status", string(record.Status)),
	)
	return nil
}

func (s *archivalService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	}
}

// initiate занимает ключ и ставит задачу в фоне: чтение никогда не ждет очередь и воркера.
func (s *archivalService) initiate(ctx context.Context, kind models.JobKind, id string, enqueue func(context.Context) error) {
	key := claimKey(kind, id)

	token, claimed, err := s.claims.TryClaim(ctx, key, s.claimTTL)
	if err != nil {
		s.metrics.Dispatch(string(kind), metrics.ResultFailed)
		s.logger.Error("не удалось занять ключ, задача не поставлена",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %v", ErrDispatchFailed, err)),
		)
		return
	}
	if !claimed {
		s.metrics.Dispatch(string(kind), metrics.ResultSkipped)
		s.logger.Debug("задача уже в процессе, повторная постановка пропущена", zap.String("key", key))
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()

		if err := enqueue(dctx); err != nil {
			s.dispatchFailed(dctx, kind, key, token, id, err)
			return
		}

		s.metrics.Dispatch(string(kind), metrics.ResultSuccess)
		s.logger.Info("архивация инициирована",
			zap.String("kind", string(kind)),
			zap.String("id", id),
		)
	}()
}

func (s *archivalService) trigger(ctx context.Context, kind models.JobKind, id string, enqueue func(context.Context, string) error) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}

	key := claimKey(kind, id)
	token, err := s.claims.Refresh(ctx, key, s.claimTTL)
	if err != nil {
		s.logger.Warn("не удалось обновить захват ключа", zap.String("key", key), zap.Error(err))
	}

	dctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	if err := enqueue(dctx, id); err != nil {
		s.dispatchFailed(dctx, kind, key, token, id, err)
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	s.metrics.Dispatch(string(kind), metrics.ResultSuccess)
	s.logger.Info("архивация запущена по изменению",
		zap.String("kind", string(kind)),
		zap.String("id", id),
	)
	return nil
}

func (s *archivalService) dispatchFailed(ctx context.Context, kind models.JobKind, key, token, id string, err error) {
	s.metrics.Dispatch(string(kind), metrics.ResultFailed)
	s.logger.Error("не удалось поставить задачу архивации",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.Error(fmt.Errorf("%w: %v", ErrDispatchFailed, err)),
	)

	if token == "" {
		return
	}
	if err := s.claims.Release(context.WithoutCancel(ctx), key, token); err != nil {
		s.logger.Warn("не удалось освободить ключ", zap.String("key", key), zap.Error(err))
	}
}

func (s *archivalService) resourceRecord(ctx context.Context, resourceID, op string) (*models.StatusRecord, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if strings.TrimSpace(resourceID) == "" {
		return nil, ErrInvalidID
	}

	record, found, err := s.store.Get(ctx, resourceID)
	if err != nil {
		return nil, s.storeError("get", err)
	}
	if !found {
		return nil, nil
	}

	s.metrics.Read(op, metrics.OutcomeHit)
	return record, nil
}

func (s *archivalService) lookupResource(ctx context.Context, resourceID string) (*models.Resource, error) {
	res, found, err := s.catalog.GetResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: ресурс %s", ErrNotFound, resourceID)
	}
	return res, nil
}

func (s *archivalService) datasetRecords(ctx context.Context, datasetID, op string) (*models.Dataset, []models.StatusRecord, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if strings.TrimSpace(datasetID) == "" {
		return nil, nil, ErrInvalidID
	}

	ds, found, err := s.catalog.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: датасет %s", ErrNotFound, datasetID)
	}

	records, err := s.store.ListForDataset(ctx, ds.ID)
	if err != nil {
		return nil, nil, s.storeError("list_for_dataset", err)
	}

	s.logger.Debug("статусы датасета получены",
		zap.String("operation", op),
		zap.String("dataset_id", ds.ID),
		zap.Int("records", len(records)),
	)
	return ds, records, nil
}

func (s *archivalService) storeError(op string, err error) error {
	s.metrics.StoreError(op)
	s.logger.Error("ошибка хранилища статусов", zap.String("operation", op), zap.Error(err))
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrContextDone, err)
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func claimKey(kind models.JobKind, id string) string {
	return string(kind) + ":" + id
}

func catalogCount(ds *models.Dataset) *int {
	n := len(ds.Resources)
	return &n
}

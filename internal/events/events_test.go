package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sunr3d/archiver-status/internal/config"
	"github.com/sunr3d/archiver-status/internal/infra/inmem"
	"github.com/sunr3d/archiver-status/internal/services/archival_service"
	"github.com/sunr3d/archiver-status/models"
)

type stubSubscriber struct {
	name  string
	err   error
	calls int
}

func (s *stubSubscriber) Name() string { return s.name }

func (s *stubSubscriber) OnChange(context.Context, models.ChangeEvent) error {
	s.calls++
	return s.err
}

func TestBus_PublishReachesEverySubscriber(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	failing := &stubSubscriber{name: "failing", err: errors.New("boom")}
	healthy := &stubSubscriber{name: "healthy"}
	require.NoError(t, bus.Subscribe(failing))
	require.NoError(t, bus.Subscribe(healthy))

	err := bus.Publish(context.Background(), models.ChangeEvent{
		Operation: models.OperationCreated,
		After:     &models.Dataset{ID: "d1"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestBus_RejectsInvalidEvents(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	sub := &stubSubscriber{name: "s"}
	require.NoError(t, bus.Subscribe(sub))

	err := bus.Publish(context.Background(), models.ChangeEvent{Operation: models.OperationUpdated})
	assert.ErrorIs(t, err, ErrEventInvalid)

	err = bus.Publish(context.Background(), models.ChangeEvent{Operation: "renamed", After: &models.Dataset{ID: "d1"}})
	assert.ErrorIs(t, err, ErrEventInvalid)

	assert.Zero(t, sub.calls)
	assert.ErrorIs(t, bus.Subscribe(nil), ErrSubscriberNil)
}

func TestBus_CatalogAndArchivalSubscribers(t *testing.T) {
	log := zaptest.NewLogger(t)
	catalog := inmem.NewCatalog(log)
	dispatcher := inmem.NewDispatcher(log)
	svc := archival_service.New(log, &config.Config{ClaimTTL: time.Minute}, archival_service.Deps{
		Store:      inmem.New(log),
		Claims:     inmem.NewClaimStore(log),
		Dispatcher: dispatcher,
		Catalog:    catalog,
	})

	bus := NewBus(log)
	require.NoError(t, bus.Subscribe(NewCatalogSubscriber(catalog)))
	require.NoError(t, bus.Subscribe(NewArchivalSubscriber(svc, log)))
	ctx := context.Background()

	ds := &models.Dataset{ID: "d1", Name: "one", Resources: []models.Resource{{ID: "r1", URL: "http://x/a.csv"}}}
	require.NoError(t, bus.Publish(ctx, models.ChangeEvent{Operation: models.OperationCreated, After: ds}))

	_, found, err := catalog.GetResource(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, dispatcher.Count(models.JobKindDataset, "d1"))

	summary, err := svc.GetDatasetStatus(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, models.ArchivalStatusUnarchived, summary.OverallStatus)

	require.NoError(t, bus.Publish(ctx, models.ChangeEvent{Operation: models.OperationDeleted, Before: ds}))

	_, found, err = catalog.GetDataset(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, dispatcher.Count(models.JobKindDataset, "d1"))
}

package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/models"
)

const localQueue = "inmem"

var _ infra.Dispatcher = (*Dispatcher)(nil)

// Dispatcher складывает задачи в память. Используется локально и в тестах.
type Dispatcher struct {
	logger *zap.Logger
	sinks  []infra.DataSink
	jobs   []models.ArchiveJob
	mu     sync.Mutex
}

func NewDispatcher(log *zap.Logger, sinks ...infra.DataSink) *Dispatcher {
	return &Dispatcher{
		logger: log,
		sinks:  sinks,
	}
}

func (d *Dispatcher) EnqueueResource(ctx context.Context, resourceID string) error {
	return d.enqueue(ctx, models.JobKindResource, resourceID)
}

func (d *Dispatcher) EnqueueDataset(ctx context.Context, datasetID string) error {
	return d.enqueue(ctx, models.JobKindDataset, datasetID)
}

func (d *Dispatcher) enqueue(ctx context.Context, kind models.JobKind, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	job := models.ArchiveJob{
		JobID:       uuid.NewString(),
		Kind:        kind,
		ID:          id,
		Queue:       localQueue,
		RequestedAt: time.Now().UTC(),
	}

	d.mu.Lock()
	d.jobs = append(d.jobs, job)
	d.mu.Unlock()

	d.logger.Info("задача архивации поставлена в очередь",
		zap.String("job_id", job.JobID),
		zap.String("kind", string(kind)),
		zap.String("id", id),
	)

	for _, sink := range d.sinks {
		params := map[string]any{"job_id": job.JobID, "kind": string(kind), "id": id}
		if err := sink.Receive(ctx, "archive."+string(kind), localQueue, params); err != nil {
			d.logger.Warn("приемник не принял задачу", zap.String("job_id", job.JobID), zap.Error(err))
		}
	}
	return nil
}

func (d *Dispatcher) Jobs() []models.ArchiveJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.ArchiveJob(nil), d.jobs...)
}

func (d *Dispatcher) Count(kind models.JobKind, id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, j := range d.jobs {
		if j.Kind == kind && j.ID == id {
			n++
		}
	}
	return n
}

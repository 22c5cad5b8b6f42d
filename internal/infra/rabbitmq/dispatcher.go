package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/models"
)

const dedupHeader = "x-deduplication-header"

var _ infra.Dispatcher = (*Dispatcher)(nil)

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Dispatcher struct {
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger *zap.Logger
	sinks  []infra.DataSink
	mu     sync.Mutex
}

func New(url, queue string, log *zap.Logger, sinks ...infra.DataSink) (*Dispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrChannel, err)
	}

	d, err := newWithChannel(ch, queue, log, sinks...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	d.conn = conn
	return d, nil
}

func newWithChannel(ch channel, queue string, log *zap.Logger, sinks ...infra.DataSink) (*Dispatcher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("%w %s: %v", ErrDeclareQueue, queue, err)
	}

	log.Info("очередь задач архивации готова", zap.String("queue", queue))

	return &Dispatcher{
		ch:     ch,
		queue:  queue,
		logger: log,
		sinks:  sinks,
	}, nil
}

func (d *Dispatcher) EnqueueResource(ctx context.Context, resourceID string) error {
	return d.publish(ctx, models.JobKindResource, resourceID)
}

func (d *Dispatcher) EnqueueDataset(ctx context.Context, datasetID string) error {
	return d.publish(ctx, models.JobKindDataset, datasetID)
}

func (d *Dispatcher) publish(ctx context.Context, kind models.JobKind, id string) error {
	if id == "" {
		return ErrIDEmpty
	}

	job := models.ArchiveJob{
		JobID:       uuid.NewString(),
		Kind:        kind,
		ID:          id,
		Queue:       d.queue,
		RequestedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshal, err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    job.JobID,
		Timestamp:    job.RequestedAt,
		Type:         "archive." + string(kind),
		Headers:      amqp.Table{dedupHeader: string(kind) + ":" + id},
		Body:         body,
	}

	d.mu.Lock()
	err = d.ch.PublishWithContext(ctx, "", d.queue, false, false, msg)
	d.mu.Unlock()
	if err != nil {
		d.logger.Error("не удалось опубликовать задачу архивации",
			zap.String("queue", d.queue),
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	d.logger.Info("задача архивации опубликована",
		zap.String("queue", d.queue),
		zap.String("job_id", job.JobID),
		zap.String("kind", string(kind)),
		zap.String("id", id),
	)

	for _, sink := range d.sinks {
		params := map[string]any{"job_id": job.JobID, "kind": string(kind), "id": id}
		if err := sink.Receive(ctx, msg.Type, d.queue, params); err != nil {
			d.logger.Warn("приемник не принял задачу", zap.String("job_id", job.JobID), zap.Error(err))
		}
	}
	return nil
}

func (d *Dispatcher) Close() error {
	if d.ch != nil {
		d.ch.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

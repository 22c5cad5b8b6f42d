package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=EventSubscriber --output=../../mocks
type EventSubscriber interface {
	Name() string
	OnChange(ctx context.Context, event models.ChangeEvent) error
}

// Bus доставляет события каталога подписчикам в порядке регистрации.
// Каталог знает только о шине, обратных ссылок на подписчиков у него нет.
type Bus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
	logger      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{logger: log}
}

func (b *Bus) Subscribe(sub EventSubscriber) error {
	if sub == nil {
		return ErrSubscriberNil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, sub)
	b.logger.Info("подписчик зарегистрирован", zap.String("subscriber", sub.Name()))
	return nil
}

// Publish вызывает всех подписчиков даже если кто-то из них упал; ошибки собираются вместе.
func (b *Bus) Publish(ctx context.Context, event models.ChangeEvent) error {
	if event.DatasetID() == "" {
		return fmt.Errorf("%w: нет ID датасета", ErrEventInvalid)
	}
	switch event.Operation {
	case models.OperationCreated, models.OperationUpdated, models.OperationDeleted:
	default:
		return fmt.Errorf("%w: операция %q", ErrEventInvalid, event.Operation)
	}

	b.mu.RLock()
	subs := make([]EventSubscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	var result *multierror.Error
	for _, sub := range subs {
		if err := sub.OnChange(ctx, event); err != nil {
			b.logger.Error("подписчик не обработал событие",
				zap.String("subscriber", sub.Name()),
				zap.String("dataset_id", event.DatasetID()),
				zap.String("operation", string(event.Operation)),
				zap.Error(err),
			)
			result = multierror.Append(result, fmt.Errorf("%s: %w", sub.Name(), err))
		}
	}

	return result.ErrorOrNil()
}

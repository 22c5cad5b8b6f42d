package infra

import "context"

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=Dispatcher --output=../../../mocks
type Dispatcher interface {
	EnqueueResource(ctx context.Context, resourceID string) error
	EnqueueDataset(ctx context.Context, datasetID string) error
}

// DataSink получает копию каждой отправленной задачи.
type DataSink interface {
	Receive(ctx context.Context, operation, channel string, params map[string]any) error
}

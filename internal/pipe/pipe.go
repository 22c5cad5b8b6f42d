package pipe

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
)

var (
	_ infra.DataSink = (*RecordingSink)(nil)
	_ infra.DataSink = (*LogSink)(nil)
)

type Call struct {
	Operation string
	Channel   string
	Params    map[string]any
}

// RecordingSink запоминает все вызовы. Нужен тестам.
type RecordingSink struct {
	mu    sync.Mutex
	calls []Call
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Receive(_ context.Context, operation, channel string, params map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]any, len(params))
	for k, v := range params {
		cp[k] = v
	}
	s.calls = append(s.calls, Call{Operation: operation, Channel: channel, Params: cp})
	return nil
}

func (s *RecordingSink) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Receive(_ context.Context, operation, channel string, params map[string]any) error {
	s.logger.Debug("задача передана в канал",
		zap.String("operation", operation),
		zap.String("channel", channel),
		zap.Any("params", params),
	)
	return nil
}

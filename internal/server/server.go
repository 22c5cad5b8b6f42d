package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 15 * time.Second
	httpTimeout     = 10 * time.Second
)

// Drainer завершает фоновую работу после остановки приема запросов.
type Drainer interface {
	Drain(ctx context.Context) error
}

type Server struct {
	server   *http.Server
	drainers []Drainer
	logger   *zap.Logger
}

func New(port string, handler http.Handler, logger *zap.Logger, drainers ...Drainer) *Server {
	return &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  httpTimeout,
			WriteTimeout: httpTimeout,
		},
		drainers: drainers,
		logger:   logger,
	}
}

func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)

	go func() {
		s.logger.Info("Запуск HTTP сервера", zap.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("ошибка HTTP сервера: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		s.logger.Info("Получен сигнал завершения")
	}

	return s.Shutdown()
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при завершении сервера: %w", err)
	}

	for _, d := range s.drainers {
		if err := d.Drain(ctx); err != nil {
			s.logger.Warn("фоновые задачи не завершились до таймаута", zap.Error(err))
		}
	}

	s.logger.Info("HTTP сервер успешно остановлен")
	return nil
}

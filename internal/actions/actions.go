package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/sunr3d/archiver-status/internal/access"
	"github.com/sunr3d/archiver-status/internal/interfaces/services"
)

var ErrUnknownAction = errors.New("неизвестное действие")

type Action func(ctx context.Context, id string) (any, error)

// Registry - явная таблица действий; каждое действие проходит через Gate перед вызовом.
type Registry struct {
	actions map[string]Action
	gate    *access.Gate
}

func New(svc services.ArchivalService, gate *access.Gate) *Registry {
	return &Registry{
		gate: gate,
		actions: map[string]Action{
			access.OpGetResourceStatus: func(ctx context.Context, id string) (any, error) {
				return svc.GetResourceStatus(ctx, id)
			},
			access.OpGetDatasetStatus: func(ctx context.Context, id string) (any, error) {
				return svc.GetDatasetStatus(ctx, id)
			},
			access.OpGetOrInitiateResourceStatus: func(ctx context.Context, id string) (any, error) {
				return svc.GetOrInitiateResourceStatus(ctx, id)
			},
			access.OpGetOrInitiateDatasetStatus: func(ctx context.Context, id string) (any, error) {
				return svc.GetOrInitiateDatasetStatus(ctx, id)
			},
		},
	}
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

func (r *Registry) Invoke(ctx context.Context, name string, p access.Principal, id string) (any, error) {
	action, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	if err := r.gate.Check(name, p); err != nil {
		return nil, err
	}
	return action(ctx, id)
}

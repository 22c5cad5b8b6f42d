package inmem

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/models"
)

var _ infra.Catalog = (*Catalog)(nil)

// Catalog - локальная копия каталога, которую поддерживают события изменений.
type Catalog struct {
	logger    *zap.Logger
	datasets  map[string]*models.Dataset
	names     map[string]string
	resources map[string]*models.Resource
	mu        sync.RWMutex
}

func NewCatalog(log *zap.Logger) *Catalog {
	return &Catalog{
		logger:    log,
		datasets:  make(map[string]*models.Dataset),
		names:     make(map[string]string),
		resources: make(map[string]*models.Resource),
	}
}

func (c *Catalog) GetDataset(ctx context.Context, idOrName string) (*models.Dataset, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	id := idOrName
	if byName, ok := c.names[idOrName]; ok {
		id = byName
	}

	ds, ok := c.datasets[id]
	if !ok {
		return nil, false, nil
	}
	return copyDataset(ds), true, nil
}

func (c *Catalog) GetResource(ctx context.Context, id string) (*models.Resource, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	res, ok := c.resources[id]
	if !ok {
		return nil, false, nil
	}
	out := *res
	return &out, true, nil
}

func (c *Catalog) PutDataset(ctx context.Context, ds *models.Dataset) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if ds == nil {
		return ErrDatasetNil
	}
	if ds.ID == "" {
		return ErrDatasetIDEmpty
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked(ds.ID)

	stored := copyDataset(ds)
	for i := range stored.Resources {
		stored.Resources[i].DatasetID = stored.ID
		res := stored.Resources[i]
		c.resources[res.ID] = &res
	}
	c.datasets[stored.ID] = stored
	if stored.Name != "" {
		c.names[stored.Name] = stored.ID
	}

	c.logger.Debug("датасет сохранен в каталоге",
		zap.String("dataset_id", stored.ID),
		zap.Int("resources", len(stored.Resources)),
	)
	return nil
}

func (c *Catalog) DeleteDataset(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if id == "" {
		return ErrDatasetIDEmpty
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked(id)
	c.logger.Debug("датасет удален из каталога", zap.String("dataset_id", id))
	return nil
}

func (c *Catalog) dropLocked(id string) {
	old, ok := c.datasets[id]
	if !ok {
		return
	}
	for _, res := range old.Resources {
		delete(c.resources, res.ID)
	}
	if old.Name != "" {
		delete(c.names, old.Name)
	}
	delete(c.datasets, id)
}

func copyDataset(ds *models.Dataset) *models.Dataset {
	out := *ds
	out.Resources = append([]models.Resource(nil), ds.Resources...)
	return &out
}

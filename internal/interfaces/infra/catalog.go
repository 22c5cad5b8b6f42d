package infra

import (
	"context"

	"github.com/sunr3d/archiver-status/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=Catalog --output=../../../mocks
type Catalog interface {
	GetDataset(ctx context.Context, idOrName string) (*models.Dataset, bool, error)
	GetResource(ctx context.Context, id string) (*models.Resource, bool, error)
}

package ckan

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/models"
)

const (
	packageShowPath  = "/api/3/action/package_show"
	resourceShowPath = "/api/3/action/resource_show"
	notFoundType     = "Not Found Error"
)

var _ infra.Catalog = (*Catalog)(nil)

type actionError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

type actionResponse[T any] struct {
	Success bool         `json:"success"`
	Result  T            `json:"result"`
	Error   *actionError `json:"error,omitempty"`
}

// Catalog читает датасеты и ресурсы через Action API каталога.
type Catalog struct {
	client *resty.Client
	logger *zap.Logger
}

func New(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) (*Catalog, error) {
	if baseURL == "" {
		return nil, ErrBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", apiKey)
	}

	return &Catalog{client: client, logger: log}, nil
}

func (c *Catalog) GetDataset(ctx context.Context, idOrName string) (*models.Dataset, bool, error) {
	if idOrName == "" {
		return nil, false, ErrIDEmpty
	}

	var ds models.Dataset
	found, err := call(ctx, c, packageShowPath, idOrName, &ds)
	if err != nil || !found {
		return nil, found, err
	}

	for i := range ds.Resources {
		if ds.Resources[i].DatasetID == "" {
			ds.Resources[i].DatasetID = ds.ID
		}
	}
	return &ds, true, nil
}

func (c *Catalog) GetResource(ctx context.Context, id string) (*models.Resource, bool, error) {
	if id == "" {
		return nil, false, ErrIDEmpty
	}

	var res models.Resource
	found, err := call(ctx, c, resourceShowPath, id, &res)
	if err != nil || !found {
		return nil, found, err
	}
	return &res, true, nil
}

func call[T any](ctx context.Context, c *Catalog, path, id string, out *T) (bool, error) {
	var (
		ok     actionResponse[T]
		failed actionResponse[T]
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("id", id).
		SetResult(&ok).
		SetError(&failed).
		Get(path)
	if err != nil {
		c.logger.Error("ошибка запроса к каталогу",
			zap.String("path", path),
			zap.String("id", id),
			zap.Error(err),
		)
		return false, fmt.Errorf("%w: %v", infra.ErrCatalogUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return false, nil
	case resp.IsError():
		if failed.Error != nil && failed.Error.Type == notFoundType {
			return false, nil
		}
		return false, fmt.Errorf("%w: статус %d", infra.ErrCatalogUnavailable, resp.StatusCode())
	case !ok.Success:
		if ok.Error != nil && ok.Error.Type == notFoundType {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", infra.ErrCatalogUnavailable, ErrBadResponse)
	}

	*out = ok.Result
	return true, nil
}

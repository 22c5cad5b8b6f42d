package archival_service

import (
	"errors"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
)

var (
	ErrContextDone = errors.New("отмена контекста")
	ErrInvalidID   = errors.New("некорректный ID")

	ErrNotFound = errors.New("объект не найден в каталоге")

	ErrStoreUnavailable   = infra.ErrStoreUnavailable
	ErrCatalogUnavailable = infra.ErrCatalogUnavailable
	ErrDispatchFailed     = infra.ErrDispatchFailed

	ErrInvalidRecord   = errors.New("некорректная запись статуса")
	ErrDatasetConflict = errors.New("ресурс уже принадлежит другому датасету")
)

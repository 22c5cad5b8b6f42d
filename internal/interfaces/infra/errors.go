package infra

import "errors"

var (
	ErrStoreUnavailable   = errors.New("хранилище статусов недоступно")
	ErrDatasetMismatch    = errors.New("ресурс уже принадлежит другому датасету")
	ErrCatalogUnavailable = errors.New("каталог недоступен")
	ErrDispatchFailed     = errors.New("не удалось поставить задачу в очередь")
)

package inmem

import "errors"

var (
	ErrRecordNil       = errors.New("запись не может быть nil")
	ErrResourceIDEmpty = errors.New("ID ресурса не может быть пустым")
	ErrDatasetIDEmpty  = errors.New("ID датасета не может быть пустым")
	ErrInvalidStatus   = errors.New("некорректный статус архивации")
	ErrClaimKeyEmpty   = errors.New("ключ захвата не может быть пустым")
	ErrDatasetNil      = errors.New("датасет не может быть nil")
	ErrContextDone     = errors.New("отмена контекста")
)

package postgres

import "errors"

var (
	ErrConnect         = errors.New("не удалось подключиться к PostgreSQL")
	ErrBuildQuery      = errors.New("не удалось собрать запрос")
	ErrMigrate         = errors.New("не удалось применить миграции")
	ErrRecordNil       = errors.New("запись не может быть nil")
	ErrResourceIDEmpty = errors.New("ID ресурса не может быть пустым")
	ErrDatasetIDEmpty  = errors.New("ID датасета не может быть пустым")
	ErrClaimKeyEmpty   = errors.New("ключ захвата не может быть пустым")
)

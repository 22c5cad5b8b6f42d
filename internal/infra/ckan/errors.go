package ckan

import "errors"

var (
	ErrIDEmpty     = errors.New("ID не может быть пустым")
	ErrBaseURL     = errors.New("не указан адрес каталога")
	ErrBadResponse = errors.New("некорректный ответ каталога")
)

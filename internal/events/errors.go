package events

import "errors"

var (
	ErrSubscriberNil = errors.New("подписчик не может быть nil")
	ErrEventInvalid  = errors.New("некорректное событие изменения")
)

package rabbitmq

import "errors"

var (
	ErrConnect      = errors.New("не удалось подключиться к RabbitMQ")
	ErrChannel      = errors.New("не удалось открыть канал RabbitMQ")
	ErrDeclareQueue = errors.New("не удалось объявить очередь")
	ErrMarshal      = errors.New("не удалось сериализовать задачу")
	ErrPublish      = errors.New("не удалось опубликовать задачу")
	ErrIDEmpty      = errors.New("ID задачи не может быть пустым")
)

package api

import (
	"errors"
	"net/http"

	"github.com/sunr3d/archiver-status/internal/access"
	"github.com/sunr3d/archiver-status/internal/actions"
	"github.com/sunr3d/archiver-status/internal/events"
	"github.com/sunr3d/archiver-status/internal/hooks"
	"github.com/sunr3d/archiver-status/internal/services/archival_service"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, archival_service.ErrInvalidID),
		errors.Is(err, archival_service.ErrInvalidRecord),
		errors.Is(err, events.ErrEventInvalid),
		errors.Is(err, hooks.ErrDatasetIDMissing):
		return http.StatusBadRequest
	case errors.Is(err, access.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, archival_service.ErrNotFound),
		errors.Is(err, actions.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, archival_service.ErrDatasetConflict):
		return http.StatusConflict
	case errors.Is(err, archival_service.ErrDispatchFailed):
		return http.StatusBadGateway
	case errors.Is(err, archival_service.ErrStoreUnavailable),
		errors.Is(err, archival_service.ErrCatalogUnavailable),
		errors.Is(err, archival_service.ErrContextDone):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func messageFor(code int, err error) string {
	switch code {
	case http.StatusBadRequest:
		return "Некорректный запрос: " + err.Error()
	case http.StatusForbidden:
		return "Недостаточно прав для выполнения операции"
	case http.StatusNotFound:
		return "Объект не найден в каталоге"
	case http.StatusConflict:
		return "Ресурс уже принадлежит другому датасету"
	case http.StatusBadGateway:
		return "Не удалось поставить задачу архивации"
	case http.StatusServiceUnavailable:
		return "Сервис временно недоступен, повторите запрос позже"
	}
	return "Внутренняя ошибка сервера"
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/access"
	"github.com/sunr3d/archiver-status/internal/actions"
	"github.com/sunr3d/archiver-status/internal/events"
	"github.com/sunr3d/archiver-status/internal/hooks"
	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/internal/interfaces/services"
	"github.com/sunr3d/archiver-status/internal/services/archival_service"
	"github.com/sunr3d/archiver-status/models"
)

type Deps struct {
	Service  services.ArchivalService
	Actions  *actions.Registry
	Gate     *access.Gate
	Resolver *access.KeyResolver
	Bus      *events.Bus
	Catalog  infra.Catalog
	Enricher *hooks.ViewEnricher
	Store    infra.StatusStore
}

type ArchivalAPI struct {
	Deps
	logger *zap.Logger
}

func New(deps Deps, logger *zap.Logger) *ArchivalAPI {
	return &ArchivalAPI{Deps: deps, logger: logger}
}

func (h *ArchivalAPI) Register(r chi.Router) {
	r.Route("/api/archiver", func(r chi.Router) {
		r.Get("/resources/{id}", h.action(access.OpGetResourceStatus))
		r.Post("/resources/{id}/initiate", h.action(access.OpGetOrInitiateResourceStatus))
		r.Put("/resources/{id}/status", h.SaveResourceStatus)

		r.Get("/datasets/{id}", h.action(access.OpGetDatasetStatus))
		r.Post("/datasets/{id}/initiate", h.action(access.OpGetOrInitiateDatasetStatus))
		r.Get("/datasets/{id}/view", h.ViewDataset)

		r.Post("/notifications", h.Notify)
	})
	r.Get("/healthz", h.Health)
}

// GET /api/archiver/resources/{id}, GET /api/archiver/datasets/{id}
// POST /api/archiver/resources/{id}/initiate, POST /api/archiver/datasets/{id}/initiate
func (h *ArchivalAPI) action(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		out, err := h.Actions.Invoke(r.Context(), name, h.Resolver.Resolve(r), id)
		if err != nil {
			h.fail(w, name, err, zap.String("id", id))
			return
		}

		h.writeJSON(w, http.StatusOK, out)
	}
}

// PUT /api/archiver/resources/{id}/status
func (h *ArchivalAPI) SaveResourceStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.Gate.Check(access.OpSaveResourceStatus, h.Resolver.Resolve(r)); err != nil {
		h.fail(w, access.OpSaveResourceStatus, err)
		return
	}

	var req saveStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("ошибка парсинга JSON запроса", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, errorResp{Error: "Некорректный JSON в теле запроса"})
		return
	}

	record := &models.StatusRecord{
		ResourceID:    chi.URLParam(r, "id"),
		DatasetID:     req.DatasetID,
		Status:        req.Status,
		LastAttemptAt: req.LastAttemptAt,
		CacheLocation: req.CacheLocation,
		ContentSize:   req.ContentSize,
		ContentHash:   req.ContentHash,
	}

	if err := h.Service.SaveRecord(r.Context(), record); err != nil {
		h.fail(w, access.OpSaveResourceStatus, err, zap.String("resource_id", record.ResourceID))
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

// POST /api/archiver/notifications
func (h *ArchivalAPI) Notify(w http.ResponseWriter, r *http.Request) {
	if err := h.Gate.Check(access.OpNotifyChange, h.Resolver.Resolve(r)); err != nil {
		h.fail(w, access.OpNotifyChange, err)
		return
	}

	var event models.ChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Error("ошибка парсинга JSON запроса", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, errorResp{Error: "Некорректный JSON в теле запроса"})
		return
	}

	if err := h.Bus.Publish(r.Context(), event); err != nil {
		h.fail(w, access.OpNotifyChange, err, zap.String("dataset_id", event.DatasetID()))
		return
	}

	h.writeJSON(w, http.StatusAccepted, notifyResp{Accepted: true, DatasetID: event.DatasetID()})
}

// GET /api/archiver/datasets/{id}/view
func (h *ArchivalAPI) ViewDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Gate.Check(access.OpViewDataset, h.Resolver.Resolve(r)); err != nil {
		h.fail(w, access.OpViewDataset, err)
		return
	}

	ds, found, err := h.Catalog.GetDataset(r.Context(), id)
	if err != nil {
		h.fail(w, access.OpViewDataset, archival_service.ErrCatalogUnavailable, zap.String("dataset_id", id), zap.Error(err))
		return
	}
	if !found {
		h.fail(w, access.OpViewDataset, archival_service.ErrNotFound, zap.String("dataset_id", id))
		return
	}

	dict, err := datasetDict(ds)
	if err != nil {
		h.fail(w, access.OpViewDataset, err)
		return
	}
	if err := h.Enricher.EnrichDataset(r.Context(), dict); err != nil {
		h.fail(w, access.OpViewDataset, err, zap.String("dataset_id", ds.ID))
		return
	}

	h.writeJSON(w, http.StatusOK, dict)
}

// GET /healthz
func (h *ArchivalAPI) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.logger.Error("хранилище статусов не отвечает", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, healthResp{Status: "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, healthResp{Status: "ok"})
}

func (h *ArchivalAPI) fail(w http.ResponseWriter, op string, err error, fields ...zap.Field) {
	code := statusFor(err)
	fields = append(fields, zap.String("operation", op), zap.Int("code", code), zap.Error(err))

	if code >= http.StatusInternalServerError {
		h.logger.Error("ошибка обработки запроса", fields...)
	} else {
		h.logger.Warn("запрос отклонен", fields...)
	}

	h.writeJSON(w, code, errorResp{Error: messageFor(code, err)})
}

func (h *ArchivalAPI) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("ошибка кодирования JSON ответа", zap.Error(err))
	}
}

func datasetDict(ds *models.Dataset) (map[string]any, error) {
	raw, err := json.Marshal(ds)
	if err != nil {
		return nil, err
	}
	dict := map[string]any{}
	if err := json.Unmarshal(raw, &dict); err != nil {
		return nil, err
	}
	return dict, nil
}

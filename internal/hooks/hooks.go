package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/services/archival_service"
	"github.com/sunr3d/archiver-status/models"
)

const ArchiverKey = "archiver"

var (
	ErrDatasetIDMissing = errors.New("в словаре датасета нет id")
	ErrEncode           = errors.New("не удалось сериализовать значение")
)

type RecordLister interface {
	ListResourceRecords(ctx context.Context, datasetID string) ([]models.StatusRecord, error)
}

// ViewEnricher только читает статусы и никогда не ставит задачи.
type ViewEnricher struct {
	records RecordLister
	logger  *zap.Logger
}

func NewViewEnricher(records RecordLister, log *zap.Logger) *ViewEnricher {
	return &ViewEnricher{records: records, logger: log}
}

// EnrichDataset добавляет сводку под ключ archiver, а записи ресурсов - в сами ресурсы.
// Датасет без записей остается без изменений.
func (e *ViewEnricher) EnrichDataset(ctx context.Context, dataset map[string]any) error {
	id, _ := dataset["id"].(string)
	if id == "" {
		return ErrDatasetIDMissing
	}

	records, err := e.records.ListResourceRecords(ctx, id)
	if err != nil {
		return err
	}

	summary, ok := archival_service.Reduce(id, records)
	if !ok {
		return nil
	}

	resources, _ := dataset["resources"].([]any)
	n := len(resources)
	summary.CatalogResourceCount = &n

	summaryDict, err := toDict(summary)
	if err != nil {
		return err
	}
	dataset[ArchiverKey] = summaryDict

	byResource := make(map[string]models.StatusRecord, len(records))
	for _, r := range records {
		byResource[r.ResourceID] = r
	}

	for _, raw := range resources {
		res, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		resID, _ := res["id"].(string)
		record, ok := byResource[resID]
		if !ok {
			continue
		}

		recordDict, err := toDict(record)
		if err != nil {
			return err
		}
		delete(recordDict, "id")
		delete(recordDict, "dataset_id")
		delete(recordDict, "resource_id")
		res[ArchiverKey] = recordDict
	}

	e.logger.Debug("представление датасета дополнено статусами",
		zap.String("dataset_id", id),
		zap.Int("records", len(records)),
	)
	return nil
}

// TransformForIndex убирает статусы из документа индекса и сворачивает вложенные словари в JSON.
func TransformForIndex(dataset map[string]any) (map[string]any, error) {
	delete(dataset, ArchiverKey)

	for key, value := range dataset {
		nested, ok := value.(map[string]any)
		if !ok {
			continue
		}
		encoded, err := json.Marshal(nested)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrEncode, key, err)
		}
		dataset[key] = string(encoded)
	}
	return dataset, nil
}

func toDict(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out, nil
}

package archival_service

import (
	"time"

	"github.com/sunr3d/archiver-status/models"
)

// Reduce сворачивает статусы ресурсов в сводку датасета: побеждает худшая новость.
// Пустой набор сводки не имеет.
func Reduce(datasetID string, records []models.StatusRecord) (*models.DatasetSummary, bool) {
	if len(records) == 0 {
		return nil, false
	}

	var (
		archived, failed, pending int
		lastAttempt               *time.Time
	)

	for _, r := range records {
		switch r.Status {
		case models.ArchivalStatusSuccess:
			archived++
		case models.ArchivalStatusFailure:
			failed++
		case models.ArchivalStatusPending:
			pending++
		}

		if r.LastAttemptAt != nil && (lastAttempt == nil || r.LastAttemptAt.After(*lastAttempt)) {
			t := *r.LastAttemptAt
			lastAttempt = &t
		}
	}

	overall := models.ArchivalStatusUnarchived
	switch {
	case failed > 0:
		overall = models.ArchivalStatusFailure
	case pending > 0:
		overall = models.ArchivalStatusPending
	case archived == len(records):
		overall = models.ArchivalStatusSuccess
	}

	return &models.DatasetSummary{
		DatasetID:     datasetID,
		OverallStatus: overall,
		ResourceCount: len(records),
		ArchivedCount: archived,
		LastAttemptAt: lastAttempt,
	}, true
}

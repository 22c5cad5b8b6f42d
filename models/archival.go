package models

import "time"

type ArchivalStatus string

const (
	ArchivalStatusUnarchived ArchivalStatus = "unarchived"
	ArchivalStatusSuccess    ArchivalStatus = "success"
	ArchivalStatusFailure    ArchivalStatus = "failure"
	ArchivalStatusPending    ArchivalStatus = "pending"
)

func (s ArchivalStatus) Valid() bool {
	switch s {
	case ArchivalStatusUnarchived, ArchivalStatusSuccess, ArchivalStatusFailure, ArchivalStatusPending:
		return true
	}
	return false
}

// StatusRecord - результат архивации одного ресурса.
type StatusRecord struct {
	ResourceID    string         `json:"resource_id" db:"resource_id"`
	DatasetID     string         `json:"dataset_id" db:"dataset_id"`
	Status        ArchivalStatus `json:"status" db:"status"`
	LastAttemptAt *time.Time     `json:"last_attempt_at,omitempty" db:"last_attempt_at"`
	CacheLocation *string        `json:"cache_location,omitempty" db:"cache_location"`
	ContentSize   *int64         `json:"content_size,omitempty" db:"content_size"`
	ContentHash   *string        `json:"content_hash,omitempty" db:"content_hash"`
}

// DatasetSummary вычисляется на лету и нигде не хранится.
type DatasetSummary struct {
	DatasetID            string         `json:"dataset_id"`
	OverallStatus        ArchivalStatus `json:"overall_status"`
	ResourceCount        int            `json:"resource_count"`
	ArchivedCount        int            `json:"archived_count"`
	CatalogResourceCount *int           `json:"catalog_resource_count,omitempty"`
	LastAttemptAt        *time.Time     `json:"last_attempt_at,omitempty"`
}

func PlaceholderRecord(resourceID, datasetID string) *StatusRecord {
	return &StatusRecord{
		ResourceID: resourceID,
		DatasetID:  datasetID,
		Status:     ArchivalStatusUnarchived,
	}
}

func PlaceholderSummary(datasetID string) *DatasetSummary {
	return &DatasetSummary{
		DatasetID:     datasetID,
		OverallStatus: ArchivalStatusUnarchived,
	}
}

package api

import (
	"time"

	"github.com/sunr3d/archiver-status/models"
)

// SaveResourceStatus
type saveStatusReq struct {
	DatasetID     string                `json:"dataset_id"`
	Status        models.ArchivalStatus `json:"status"`
	LastAttemptAt *time.Time            `json:"last_attempt_at,omitempty"`
	CacheLocation *string               `json:"cache_location,omitempty"`
	ContentSize   *int64                `json:"content_size,omitempty"`
	ContentHash   *string               `json:"content_hash,omitempty"`
}

// Notify
type notifyResp struct {
	Accepted  bool   `json:"accepted"`
	DatasetID string `json:"dataset_id"`
}

type errorResp struct {
	Error string `json:"error"`
}

type healthResp struct {
	Status string `json:"status"`
}

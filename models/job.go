package models

import "time"

type JobKind string

const (
	JobKindResource JobKind = "resource"
	JobKindDataset  JobKind = "dataset"
)

// ArchiveJob - сообщение для воркера архивации.
type ArchiveJob struct {
	JobID       string    `json:"job_id"`
	Kind        JobKind   `json:"kind"`
	ID          string    `json:"id"`
	Queue       string    `json:"queue"`
	RequestedAt time.Time `json:"requested_at"`
}

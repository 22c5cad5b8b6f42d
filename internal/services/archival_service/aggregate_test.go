package archival_service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunr3d/archiver-status/models"
)

func recordsWith(statuses ...models.ArchivalStatus) []models.StatusRecord {
	out := make([]models.StatusRecord, 0, len(statuses))
	for i, st := range statuses {
		out = append(out, models.StatusRecord{
			ResourceID: "r" + string(rune('a'+i)),
			DatasetID:  "d1",
			Status:     st,
		})
	}
	return out
}

func TestReduce_WorstNewsWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.ArchivalStatus
		overall  models.ArchivalStatus
		archived int
	}{
		{"one failure", []models.ArchivalStatus{models.ArchivalStatusSuccess, models.ArchivalStatusFailure, models.ArchivalStatusSuccess}, models.ArchivalStatusFailure, 2},
		{"all success", []models.ArchivalStatus{models.ArchivalStatusSuccess, models.ArchivalStatusSuccess}, models.ArchivalStatusSuccess, 2},
		{"pending", []models.ArchivalStatus{models.ArchivalStatusSuccess, models.ArchivalStatusPending}, models.ArchivalStatusPending, 1},
		{"failure beats pending", []models.ArchivalStatus{models.ArchivalStatusPending, models.ArchivalStatusFailure}, models.ArchivalStatusFailure, 0},
		{"unarchived mix", []models.ArchivalStatus{models.ArchivalStatusSuccess, models.ArchivalStatusUnarchived}, models.ArchivalStatusUnarchived, 1},
		{"only unarchived", []models.ArchivalStatus{models.ArchivalStatusUnarchived}, models.ArchivalStatusUnarchived, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, ok := Reduce("d1", recordsWith(tt.statuses...))
			require.True(t, ok)
			assert.Equal(t, tt.overall, summary.OverallStatus)
			assert.Equal(t, tt.archived, summary.ArchivedCount)
			assert.Equal(t, len(tt.statuses), summary.ResourceCount)
			assert.Equal(t, "d1", summary.DatasetID)
		})
	}
}

func TestReduce_Empty(t *testing.T) {
	summary, ok := Reduce("d1", nil)
	assert.False(t, ok)
	assert.Nil(t, summary)

	summary, ok = Reduce("d1", []models.StatusRecord{})
	assert.False(t, ok)
	assert.Nil(t, summary)
}

func TestReduce_PermutationsGiveSameSummary(t *testing.T) {
	base := recordsWith(
		models.ArchivalStatusSuccess,
		models.ArchivalStatusPending,
		models.ArchivalStatusSuccess,
		models.ArchivalStatusUnarchived,
		models.ArchivalStatusFailure,
	)
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	base[1].LastAttemptAt = &ts

	want, ok := Reduce("d1", base)
	require.True(t, ok)

	var permute func(prefix, rest []models.StatusRecord)
	count := 0
	permute = func(prefix, rest []models.StatusRecord) {
		if len(rest) == 0 {
			got, ok := Reduce("d1", prefix)
			require.True(t, ok)
			assert.Equal(t, want, got)
			count++
			return
		}
		for i := range rest {
			next := append(append([]models.StatusRecord{}, prefix...), rest[i])
			remaining := append(append([]models.StatusRecord{}, rest[:i]...), rest[i+1:]...)
			permute(next, remaining)
		}
	}
	permute(nil, base)

	assert.Equal(t, 120, count)
}

func TestReduce_LastAttemptIsMostRecent(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	records := recordsWith(models.ArchivalStatusSuccess, models.ArchivalStatusSuccess)
	records[0].LastAttemptAt = &newer
	records[1].LastAttemptAt = &older

	summary, ok := Reduce("d1", records)
	require.True(t, ok)
	require.NotNil(t, summary.LastAttemptAt)
	assert.True(t, newer.Equal(*summary.LastAttemptAt))
}

package progress

import (
	"math"
	"taxflow/domain"
	"taxflow/domain/history"
	"taxflow/domain/stage"
	"taxflow/persistence"
	"taxflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
)

var SummaryFunc = Summary

type StageDuration struct {
	Stage stage.Stage `json:"stage"`
	Days  int         `json:"days"`
}

type ProgressSummary struct {
	RecordID           types.ID        `json:"recordId"`
	CurrentStage       stage.Stage     `json:"currentStage"`
	IsCompleted        bool            `json:"isCompleted"`
	ProgressPercentage int             `json:"progressPercentage"`
	TotalElapsedDays   int             `json:"totalElapsedDays"`
	StageDurations     []StageDuration `json:"stageDurations"`
}

// Summary derives the read-side progress view from the record and its
// ledger. It performs no writes.
func Summary(recordID types.ID, s *session.Session) (*ProgressSummary, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.WorkflowRecord{}
	if err := db.Where(&domain.WorkflowRecord{ID: recordID}).First(&record).Error; err != nil {
		return nil, err
	}

	entries, err := history.ListForFunc(recordID, s)
	if err != nil {
		return nil, err
	}

	durations := []StageDuration{}
	for _, entry := range entries {
		if entry.DaysInPreviousStage == nil {
			continue
		}
		durations = append(durations, StageDuration{Stage: entry.FromStage, Days: *entry.DaysInPreviousStage})
	}

	summary := &ProgressSummary{
		RecordID:           record.ID,
		CurrentStage:       record.CurrentStage,
		IsCompleted:        record.IsCompleted,
		ProgressPercentage: percentage(&record),
		TotalElapsedDays:   totalElapsedDays(&record),
		StageDurations:     durations,
	}
	return summary, nil
}

func percentage(record *domain.WorkflowRecord) int {
	if record.IsCompleted {
		return 100
	}
	count := stage.StageCount(record.Type)
	if count <= 1 {
		return 100
	}
	idx := stage.IndexOf(record.Type, record.CurrentStage)
	pct := int(math.Round(float64(idx) / float64(count-1) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

func totalElapsedDays(record *domain.WorkflowRecord) int {
	end := time.Now()
	if record.IsCompleted && record.CompletedAt != nil {
		end = *record.CompletedAt
	}
	if end.Before(record.CreateTime) {
		return 0
	}
	return int(end.Sub(record.CreateTime) / (24 * time.Hour))
}

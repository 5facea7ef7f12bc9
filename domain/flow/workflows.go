package flow

import (
	"errors"
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/domain/assignment"
	"taxflow/domain/history"
	"taxflow/domain/stage"
	"taxflow/idgen"
	"taxflow/persistence"
	"taxflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const selfFilingNote = "client handling own filing"

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateWorkflowRecordFunc = CreateWorkflowRecord
	DetailWorkflowRecordFunc = DetailWorkflowRecord
	TransitionFunc           = Transition
	SelfFilingExitFunc       = SelfFilingExit
)

func CreateWorkflowRecord(c *domain.WorkflowRecordCreation, s *session.Session) (*domain.WorkflowRecord, error) {
	if !stage.Known(c.Type) {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("unknown workflow type " + string(c.Type))}
	}

	now := time.Now()
	record := &domain.WorkflowRecord{
		ID:             idgen.NextID(idWorker),
		FilingPeriodID: c.FilingPeriodID,
		Type:           c.Type,
		RegistryVer:    stage.RegistryFor(c.Type).Version,
		CurrentStage:   stage.InitialStage(c.Type),
		CreateTime:     now,
		Version:        1,
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		period := domain.FilingPeriod{}
		if err := tx.Where(&domain.FilingPeriod{ID: c.FilingPeriodID}).First(&period).Error; err != nil {
			return err
		}
		if period.Type != c.Type {
			return &bizerror.ErrBadParam{Cause: errors.New("filing period is of type " + string(period.Type))}
		}
		record.ClientID = period.ClientID

		existing := domain.WorkflowRecord{}
		err := tx.Where(&domain.WorkflowRecord{FilingPeriodID: c.FilingPeriodID, Type: c.Type}).First(&existing).Error
		if err == nil {
			return &bizerror.ErrBadParam{Cause: errors.New("workflow record already exists for this filing period")}
		}
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}

		assignee, err := assignment.EffectiveAssigneeFunc(period.ClientID, c.Type, s)
		if err != nil {
			return err
		}
		record.AssignedUserID = assignee

		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if err := stampMilestone(tx, record.ID, record.CurrentStage, now, s); err != nil {
			return err
		}
		return history.Append(tx, &domain.WorkflowHistoryEntry{
			RecordID:  record.ID,
			ToStage:   record.CurrentStage,
			ChangedAt: now,
			ActorID:   s.Identity.ID,
			ActorName: s.Identity.DisplayName(),
			ActorRole: s.Identity.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func DetailWorkflowRecord(id types.ID, s *session.Session) (*domain.WorkflowRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.WorkflowRecord{}
	if err := db.Where(&domain.WorkflowRecord{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Transition moves a record to any selectable stage of its type,
// forward or backward. The milestone stamp, stage update and history
// append commit atomically or not at all.
func Transition(recordID types.ID, c *domain.TransitionCreation, s *session.Session) (*domain.WorkflowRecord, error) {
	var updated domain.WorkflowRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		record := domain.WorkflowRecord{}
		if err := tx.Where(&domain.WorkflowRecord{ID: recordID}).First(&record).Error; err != nil {
			return err
		}
		if record.IsCompleted {
			return bizerror.ErrWorkflowLocked
		}
		if !stage.Contains(record.Type, c.TargetStage) || !stage.IsSelectable(record.Type, c.TargetStage) {
			return bizerror.ErrInvalidStage
		}
		return applyTransition(tx, &record, c.TargetStage, c.Note, s, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SelfFilingExit closes a record whose client is doing their own
// bookkeeping or filing: no further internal stages apply. It is only
// valid while the record is still open.
func SelfFilingExit(recordID types.ID, note string, s *session.Session) (*domain.WorkflowRecord, error) {
	if note == "" {
		note = selfFilingNote
	}
	var updated domain.WorkflowRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		record := domain.WorkflowRecord{}
		if err := tx.Where(&domain.WorkflowRecord{ID: recordID}).First(&record).Error; err != nil {
			return err
		}
		if record.IsCompleted {
			return bizerror.ErrWorkflowLocked
		}
		return applyTransition(tx, &record, stage.SelfFilingStage(record.Type), note, s, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func applyTransition(tx *gorm.DB, record *domain.WorkflowRecord, target stage.Stage, note string,
	s *session.Session, updated *domain.WorkflowRecord) error {

	now := time.Now()

	// days spent in the vacated stage, from the previous ledger entry
	lastEntry, err := history.LastEntry(tx, record.ID)
	if err != nil {
		return err
	}
	var daysInPreviousStage *int
	if lastEntry != nil {
		days := wholeDays(lastEntry.ChangedAt, now)
		daysInPreviousStage = &days
	}

	// re-entering a stage keeps its original milestone
	if err := stampMilestone(tx, record.ID, target, now, s); err != nil {
		return err
	}

	terminal := stage.IsTerminal(record.Type, target)
	updates := map[string]interface{}{
		"current_stage": target,
		"version":       record.Version + 1,
	}
	if terminal {
		updates["is_completed"] = true
		updates["completed_at"] = now
	}
	ret := tx.Model(&domain.WorkflowRecord{}).
		Where("id = ? AND version = ?", record.ID, record.Version).
		Updates(updates)
	if ret.Error != nil {
		return ret.Error
	}
	if ret.RowsAffected != 1 {
		return bizerror.ErrStaleVersion
	}

	if err := history.Append(tx, &domain.WorkflowHistoryEntry{
		RecordID:            record.ID,
		FromStage:           record.CurrentStage,
		ToStage:             target,
		ChangedAt:           now,
		ActorID:             s.Identity.ID,
		ActorName:           s.Identity.DisplayName(),
		ActorRole:           s.Identity.Role,
		DaysInPreviousStage: daysInPreviousStage,
		Note:                note,
	}); err != nil {
		return err
	}

	*updated = *record
	updated.CurrentStage = target
	updated.Version = record.Version + 1
	if terminal {
		updated.IsCompleted = true
		updated.CompletedAt = &now
	}
	return nil
}

func stampMilestone(tx *gorm.DB, recordID types.ID, target stage.Stage, now time.Time, s *session.Session) error {
	existing := domain.WorkflowMilestone{}
	err := tx.Where(&domain.WorkflowMilestone{RecordID: recordID, Stage: target}).First(&existing).Error
	if err == nil {
		return nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return err
	}
	milestone := &domain.WorkflowMilestone{
		ID:        idgen.NextID(idWorker),
		RecordID:  recordID,
		Stage:     target,
		Timestamp: now,
		ActorID:   s.Identity.ID,
		ActorName: s.Identity.DisplayName(),
	}
	return tx.Create(milestone).Error
}

func wholeDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}

package domain

import (
	"taxflow/domain/deadline"
	"taxflow/domain/stage"
	"time"

	"github.com/fundwit/go-commons/types"
)

// Client is the practice's customer. It owns the default assignee and
// the company dates the confirmation-statement deadline derives from.
type Client struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Name string   `json:"name"`

	DefaultAssigneeID types.ID `json:"defaultAssigneeId"`

	IncorporationDate    *time.Time `json:"incorporationDate" sql:"type:DATETIME(6)"`
	LastConfirmationDate *time.Time `json:"lastConfirmationDate" sql:"type:DATETIME(6)"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// AssignmentOverride routes one service type of one client to a
// specific user, taking precedence over the client default.
type AssignmentOverride struct {
	ID          types.ID           `json:"id" gorm:"primary_key"`
	ClientID    types.ID           `json:"clientId" gorm:"index"`
	ServiceType stage.WorkflowType `json:"serviceType"`
	UserID      types.ID           `json:"userId"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// FilingPeriod is one statutory obligation instance, e.g. a VAT quarter
// or an accounting year. Due dates are derived from its boundaries.
type FilingPeriod struct {
	ID       types.ID           `json:"id" gorm:"primary_key"`
	ClientID types.ID           `json:"clientId" gorm:"index"`
	Type     stage.WorkflowType `json:"type"`

	PeriodStart time.Time `json:"periodStart" sql:"type:DATETIME(6) NOT NULL"`
	PeriodEnd   time.Time `json:"periodEnd" sql:"type:DATETIME(6) NOT NULL"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// DeadlineOverride pins one obligation of one filing period to a
// manually chosen date. Its presence flips the due date source to
// MANUAL; deleting it reverts to the computed value.
type DeadlineOverride struct {
	ID             types.ID            `json:"id" gorm:"primary_key"`
	FilingPeriodID types.ID            `json:"filingPeriodId" gorm:"index"`
	Obligation     deadline.Obligation `json:"obligation"`
	DueDate        time.Time           `json:"dueDate" sql:"type:DATETIME(6) NOT NULL"`

	CreatorID   types.ID  `json:"creatorId"`
	CreatorName string    `json:"creatorName"`
	CreateTime  time.Time `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// WorkflowRecord tracks one filing period through one workflow type's
// stage sequence. Version implements per-record optimistic locking:
// every stage or assignee mutation must match and bump it.
type WorkflowRecord struct {
	ID             types.ID           `json:"id" gorm:"primary_key"`
	FilingPeriodID types.ID           `json:"filingPeriodId" gorm:"index"`
	ClientID       types.ID           `json:"clientId" gorm:"index"`
	Type           stage.WorkflowType `json:"type"`
	RegistryVer    int                `json:"registryVersion"`

	CurrentStage stage.Stage `json:"currentStage"`
	IsCompleted  bool        `json:"isCompleted"`
	CompletedAt  *time.Time  `json:"completedAt" sql:"type:DATETIME(6)"`

	AssignedUserID types.ID `json:"assignedUserId"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	Version    int       `json:"version"`
}

// WorkflowMilestone is the first entry of a record into a stage:
// stamped once, never overwritten on re-entry.
type WorkflowMilestone struct {
	ID       types.ID    `json:"id" gorm:"primary_key"`
	RecordID types.ID    `json:"recordId" gorm:"index"`
	Stage    stage.Stage `json:"stage"`

	Timestamp time.Time `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
	ActorID   types.ID  `json:"actorId"`
	ActorName string    `json:"actorName"`
}

// WorkflowHistoryEntry is one row of the append-only audit ledger.
// FromStage is empty and DaysInPreviousStage nil on the creation entry.
// DaysInPreviousStage is frozen at write time.
type WorkflowHistoryEntry struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	RecordID types.ID `json:"recordId" gorm:"index"`

	FromStage stage.Stage `json:"fromStage"`
	ToStage   stage.Stage `json:"toStage"`

	ChangedAt time.Time `json:"changedAt" sql:"type:DATETIME(6) NOT NULL"`
	ActorID   types.ID  `json:"actorId"`
	ActorName string    `json:"actorName"`
	ActorRole string    `json:"actorRole"`

	DaysInPreviousStage *int   `json:"daysInPreviousStage"`
	Note                string `json:"note"`
}

type WorkflowRecordCreation struct {
	FilingPeriodID types.ID           `json:"filingPeriodId" binding:"required" validate:"required"`
	Type           stage.WorkflowType `json:"type" binding:"required" validate:"required"`
}

type TransitionCreation struct {
	TargetStage stage.Stage `json:"targetStage" binding:"required" validate:"required"`
	Note        string      `json:"note"`
}

type FilingPeriodCreation struct {
	ClientID    types.ID           `json:"clientId" binding:"required" validate:"required"`
	Type        stage.WorkflowType `json:"type" binding:"required" validate:"required"`
	PeriodStart time.Time          `json:"periodStart" binding:"required" validate:"required"`
	PeriodEnd   time.Time          `json:"periodEnd" binding:"required" validate:"required"`
}

type AssigneeUpdating struct {
	// zero unassigns the record
	UserID types.ID `json:"userId"`
}

package assignment

import (
	"taxflow/account"
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/domain/stage"
	"taxflow/persistence"
	"taxflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	EffectiveAssigneeFunc = EffectiveAssignee
	ReassignFunc          = Reassign
)

// EffectiveAssignee resolves who is responsible for a client's work of
// one service type: the per-service override wins, then the client's
// general default, then nobody (zero).
func EffectiveAssignee(clientID types.ID, serviceType stage.WorkflowType, s *session.Session) (types.ID, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	override := domain.AssignmentOverride{}
	err := db.Where(&domain.AssignmentOverride{ClientID: clientID, ServiceType: serviceType}).First(&override).Error
	if err == nil {
		return override.UserID, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return 0, err
	}

	client := domain.Client{}
	if err := db.Where(&domain.Client{ID: clientID}).First(&client).Error; err != nil {
		return 0, err
	}
	return client.DefaultAssigneeID, nil
}

// Reassign updates only the record's assignee. It writes no history
// entry: assignment changes are tracked apart from stage changes. A
// zero userID unassigns the record.
func Reassign(recordID types.ID, userID types.ID, s *session.Session) (*domain.WorkflowRecord, error) {
	if userID != 0 {
		if _, err := account.FindActiveUserFunc(userID, s); err != nil {
			return nil, err
		}
	}

	var updated domain.WorkflowRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		record := domain.WorkflowRecord{}
		if err := tx.Where(&domain.WorkflowRecord{ID: recordID}).First(&record).Error; err != nil {
			return err
		}

		ret := tx.Model(&domain.WorkflowRecord{}).
			Where("id = ? AND version = ?", record.ID, record.Version).
			Updates(map[string]interface{}{"assigned_user_id": userID, "version": record.Version + 1})
		if ret.Error != nil {
			return ret.Error
		}
		if ret.RowsAffected != 1 {
			return bizerror.ErrStaleVersion
		}

		updated = record
		updated.AssignedUserID = userID
		updated.Version = record.Version + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

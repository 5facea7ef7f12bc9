package flow

import (
	"taxflow/domain"
	"taxflow/persistence"
	"taxflow/session"

	"github.com/fundwit/go-commons/types"
)

var ListMilestonesFunc = ListMilestones

// ListMilestones returns the record's milestones in stamping order.
func ListMilestones(recordID types.ID, s *session.Session) ([]domain.WorkflowMilestone, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	milestones := []domain.WorkflowMilestone{}
	if err := db.Where(&domain.WorkflowMilestone{RecordID: recordID}).
		Order("timestamp ASC, id ASC").Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

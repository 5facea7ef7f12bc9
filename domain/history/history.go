package history

import (
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/idgen"
	"taxflow/persistence"
	"taxflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	ListForFunc     = ListFor
	ListForDescFunc = ListForDesc
)

// Append writes one ledger entry inside the caller's transaction, so a
// failed append rolls the owning transition back entirely. There is no
// update or delete counterpart.
func Append(tx *gorm.DB, entry *domain.WorkflowHistoryEntry) error {
	if entry.ID == 0 {
		entry.ID = idgen.NextID(idWorker)
	}
	if err := tx.Create(entry).Error; err != nil {
		return &bizerror.ErrHistoryWrite{Cause: err}
	}
	return nil
}

// ListFor returns the record's entries oldest-first.
func ListFor(recordID types.ID, s *session.Session) ([]domain.WorkflowHistoryEntry, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	entries := []domain.WorkflowHistoryEntry{}
	if err := db.Where(&domain.WorkflowHistoryEntry{RecordID: recordID}).
		Order("changed_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListForDesc returns the record's entries newest-first.
func ListForDesc(recordID types.ID, s *session.Session) ([]domain.WorkflowHistoryEntry, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	entries := []domain.WorkflowHistoryEntry{}
	if err := db.Where(&domain.WorkflowHistoryEntry{RecordID: recordID}).
		Order("changed_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LastEntry returns the newest entry of a record within the caller's
// transaction, used to compute days spent in the vacated stage.
func LastEntry(tx *gorm.DB, recordID types.ID) (*domain.WorkflowHistoryEntry, error) {
	entry := domain.WorkflowHistoryEntry{}
	err := tx.Where(&domain.WorkflowHistoryEntry{RecordID: recordID}).
		Order("changed_at DESC, id DESC").First(&entry).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

package period

import (
	"errors"
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/domain/stage"
	"taxflow/idgen"
	"taxflow/persistence"
	"taxflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateFilingPeriodFunc = CreateFilingPeriod
	DetailFilingPeriodFunc = DetailFilingPeriod
)

func CreateFilingPeriod(c *domain.FilingPeriodCreation, s *session.Session) (*domain.FilingPeriod, error) {
	if !stage.Known(c.Type) {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("unknown workflow type " + string(c.Type))}
	}
	if !c.PeriodStart.Before(c.PeriodEnd) {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("periodStart must be before periodEnd")}
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	client := domain.Client{}
	if err := db.Where(&domain.Client{ID: c.ClientID}).First(&client).Error; err != nil {
		return nil, err
	}

	filingPeriod := &domain.FilingPeriod{
		ID:          idgen.NextID(idWorker),
		ClientID:    c.ClientID,
		Type:        c.Type,
		PeriodStart: c.PeriodStart,
		PeriodEnd:   c.PeriodEnd,
		CreateTime:  time.Now(),
	}
	if err := db.Create(filingPeriod).Error; err != nil {
		return nil, err
	}
	return filingPeriod, nil
}

func DetailFilingPeriod(id types.ID, s *session.Session) (*domain.FilingPeriod, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	filingPeriod := domain.FilingPeriod{}
	if err := db.Where(&domain.FilingPeriod{ID: id}).First(&filingPeriod).Error; err != nil {
		return nil, err
	}
	return &filingPeriod, nil
}

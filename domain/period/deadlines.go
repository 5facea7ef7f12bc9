package period

import (
	"errors"
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/domain/deadline"
	"taxflow/idgen"
	"taxflow/persistence"
	"taxflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ComputeDeadlinesFunc  = ComputeDeadlines
	SetManualOverrideFunc = SetManualOverride
	ResetToAutoFunc       = ResetToAuto
)

// ComputeDeadlines derives every due date the filing period feeds,
// applying manual overrides where present. Dates that cannot be
// determined yet come back with a nil Date rather than an error.
func ComputeDeadlines(periodID types.ID, s *session.Session) ([]deadline.DueDate, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	filingPeriod := domain.FilingPeriod{}
	if err := db.Where(&domain.FilingPeriod{ID: periodID}).First(&filingPeriod).Error; err != nil {
		return nil, err
	}
	client := domain.Client{}
	if err := db.Where(&domain.Client{ID: filingPeriod.ClientID}).First(&client).Error; err != nil {
		return nil, err
	}
	overrides := []domain.DeadlineOverride{}
	if err := db.Where(&domain.DeadlineOverride{FilingPeriodID: periodID}).Find(&overrides).Error; err != nil {
		return nil, err
	}
	overrideIndex := map[deadline.Obligation]domain.DeadlineOverride{}
	for _, o := range overrides {
		overrideIndex[o.Obligation] = o
	}

	now := time.Now()
	dueDates := []deadline.DueDate{}
	for _, obligation := range deadline.ObligationsFor(filingPeriod.Type) {
		if override, found := overrideIndex[obligation]; found {
			date := override.DueDate
			dueDates = append(dueDates, deadline.DueDate{
				Obligation: obligation, Date: &date, Source: deadline.SourceManual, Overdue: date.Before(now),
			})
			continue
		}
		dueDates = append(dueDates, computeAuto(&filingPeriod, &client, obligation, now))
	}
	return dueDates, nil
}

func computeAuto(filingPeriod *domain.FilingPeriod, client *domain.Client,
	obligation deadline.Obligation, now time.Time) deadline.DueDate {

	var date time.Time
	var err error
	switch obligation {
	case deadline.VATReturn:
		date, err = deadline.VATFilingDue(filingPeriod.PeriodEnd)
	case deadline.AccountsFiling:
		date, err = deadline.AccountsFilingDue(filingPeriod.PeriodEnd)
	case deadline.CorporationTax:
		date, err = deadline.CorporationTaxDue(filingPeriod.PeriodEnd)
	case deadline.ConfirmationStatement:
		date, err = deadline.ConfirmationStatementDue(confirmationRef(client))
	case deadline.SelfAssessment:
		date, err = deadline.SelfAssessmentDue(filingPeriod.PeriodEnd)
	default:
		err = bizerror.ErrInsufficientData
	}
	if err != nil {
		// not yet determinable, rendered as pending
		return deadline.DueDate{Obligation: obligation, Source: deadline.SourceAuto}
	}
	return deadline.DueDate{Obligation: obligation, Date: &date, Source: deadline.SourceAuto, Overdue: date.Before(now)}
}

func confirmationRef(client *domain.Client) time.Time {
	if client.LastConfirmationDate != nil {
		return *client.LastConfirmationDate
	}
	if client.IncorporationDate != nil {
		return *client.IncorporationDate
	}
	return time.Time{}
}

// SetManualOverride pins one obligation's due date, recording who set
// it. It replaces any previous override for the same obligation.
func SetManualOverride(periodID types.ID, obligation deadline.Obligation, date time.Time, s *session.Session) (*deadline.DueDate, error) {
	if date.IsZero() {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("override date is required")}
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		filingPeriod := domain.FilingPeriod{}
		if err := tx.Where(&domain.FilingPeriod{ID: periodID}).First(&filingPeriod).Error; err != nil {
			return err
		}
		if !deadline.AppliesTo(filingPeriod.Type, obligation) {
			return bizerror.ErrInvalidObligation
		}

		if err := tx.Where("filing_period_id = ? AND obligation = ?", periodID, string(obligation)).
			Delete(&domain.DeadlineOverride{}).Error; err != nil {
			return err
		}
		override := &domain.DeadlineOverride{
			ID:             idgen.NextID(idWorker),
			FilingPeriodID: periodID,
			Obligation:     obligation,
			DueDate:        date,
			CreatorID:      s.Identity.ID,
			CreatorName:    s.Identity.DisplayName(),
			CreateTime:     time.Now(),
		}
		return tx.Create(override).Error
	})
	if err != nil {
		return nil, err
	}
	return findDueDate(periodID, obligation, s)
}

// ResetToAuto discards the manual override and recomputes.
func ResetToAuto(periodID types.ID, obligation deadline.Obligation, s *session.Session) (*deadline.DueDate, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		filingPeriod := domain.FilingPeriod{}
		if err := tx.Where(&domain.FilingPeriod{ID: periodID}).First(&filingPeriod).Error; err != nil {
			return err
		}
		if !deadline.AppliesTo(filingPeriod.Type, obligation) {
			return bizerror.ErrInvalidObligation
		}
		return tx.Where("filing_period_id = ? AND obligation = ?", periodID, string(obligation)).
			Delete(&domain.DeadlineOverride{}).Error
	})
	if err != nil {
		return nil, err
	}
	return findDueDate(periodID, obligation, s)
}

func findDueDate(periodID types.ID, obligation deadline.Obligation, s *session.Session) (*deadline.DueDate, error) {
	dueDates, err := ComputeDeadlinesFunc(periodID, s)
	if err != nil {
		return nil, err
	}
	for _, d := range dueDates {
		if d.Obligation == obligation {
			result := d
			return &result, nil
		}
	}
	return nil, bizerror.ErrInvalidObligation
}

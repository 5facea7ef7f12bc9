package deadline

import (
	"taxflow/bizerror"
	"taxflow/domain/stage"
	"time"
)

type Obligation string

const (
	VATReturn             Obligation = "VAT_RETURN"
	AccountsFiling        Obligation = "ACCOUNTS_FILING"
	CorporationTax        Obligation = "CORPORATION_TAX"
	ConfirmationStatement Obligation = "CONFIRMATION_STATEMENT"
	SelfAssessment        Obligation = "SELF_ASSESSMENT"
)

type Source string

const (
	SourceAuto   Source = "AUTO"
	SourceManual Source = "MANUAL"
)

// DueDate is one computed or overridden statutory due date. A nil Date
// means "not yet determinable" and renders as pending, never as an
// error.
type DueDate struct {
	Obligation Obligation `json:"obligation"`
	Date       *time.Time `json:"date"`
	Source     Source     `json:"source"`
	Overdue    bool       `json:"overdue"`
}

var typeObligations = map[stage.WorkflowType][]Obligation{
	stage.VATQuarter:     {VATReturn},
	stage.LtdAccounts:    {AccountsFiling, CorporationTax, ConfirmationStatement},
	stage.NonLtdAccounts: {SelfAssessment},
}

func ObligationsFor(t stage.WorkflowType) []Obligation {
	obligations, found := typeObligations[t]
	if !found {
		return []Obligation{}
	}
	return obligations
}

func AppliesTo(t stage.WorkflowType, o Obligation) bool {
	for _, candidate := range ObligationsFor(t) {
		if candidate == o {
			return true
		}
	}
	return false
}

// VATFilingDue is one calendar month and seven days after the VAT
// period end. Month-end periods map onto the following month end, so
// 30 Sep yields 31 Oct + 7 days = 7 Nov.
func VATFilingDue(periodEnd time.Time) (time.Time, error) {
	if periodEnd.IsZero() {
		return time.Time{}, bizerror.ErrInsufficientData
	}
	return addMonthsSnapped(periodEnd, 1).AddDate(0, 0, 7), nil
}

// AccountsFilingDue is nine months after the accounting reference
// period end. Companies House applies the corresponding date rule:
// 30 Apr maps to 30 Jan, and only a missing corresponding date falls
// back to the target month end.
func AccountsFilingDue(periodEnd time.Time) (time.Time, error) {
	if periodEnd.IsZero() {
		return time.Time{}, bizerror.ErrInsufficientData
	}
	return addMonthsCorresponding(periodEnd, 9), nil
}

// CorporationTaxDue is nine months and one day after the accounting
// period end.
func CorporationTaxDue(periodEnd time.Time) (time.Time, error) {
	if periodEnd.IsZero() {
		return time.Time{}, bizerror.ErrInsufficientData
	}
	return addMonthsCorresponding(periodEnd, 9).AddDate(0, 0, 1), nil
}

// ConfirmationStatementDue is the anniversary of incorporation or of
// the last statement, plus the 14 day grace period.
func ConfirmationStatementDue(ref time.Time) (time.Time, error) {
	if ref.IsZero() {
		return time.Time{}, bizerror.ErrInsufficientData
	}
	return addMonthsCorresponding(ref, 12).AddDate(0, 0, 14), nil
}

// SelfAssessmentDue is 31 January following the UK tax year
// (6 April - 5 April) in which the accounting period ends.
func SelfAssessmentDue(periodEnd time.Time) (time.Time, error) {
	if periodEnd.IsZero() {
		return time.Time{}, bizerror.ErrInsufficientData
	}
	// compare at date granularity, a 5 Apr period end stays in the
	// closing tax year whatever its time of day
	y, m, d := periodEnd.Date()
	periodDate := time.Date(y, m, d, 0, 0, 0, 0, periodEnd.Location())
	taxYearEnd := time.Date(y, time.April, 5, 0, 0, 0, 0, periodEnd.Location())
	if periodDate.After(taxYearEnd) {
		taxYearEnd = taxYearEnd.AddDate(1, 0, 0)
	}
	return time.Date(taxYearEnd.Year()+1, time.January, 31, 0, 0, 0, 0, periodEnd.Location()), nil
}

// addMonthsSnapped adds calendar months HMRC-style: the last day of a
// month maps to the last day of the target month, and a missing
// corresponding date (31 Jan + 1 month) clamps to the target month end.
func addMonthsSnapped(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	targetLast := daysInMonth(y, m+time.Month(months))
	if day == daysInMonth(y, m) || day > targetLast {
		day = targetLast
	}
	return time.Date(y, m+time.Month(months), day, 0, 0, 0, 0, d.Location())
}

// addMonthsCorresponding keeps the same day of month, clamping only
// when the target month has no corresponding date. Unlike the HMRC
// snap, 30 Apr + 9 months stays 30 Jan.
func addMonthsCorresponding(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	targetLast := daysInMonth(y, m+time.Month(months))
	if day > targetLast {
		day = targetLast
	}
	return time.Date(y, m+time.Month(months), day, 0, 0, 0, 0, d.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

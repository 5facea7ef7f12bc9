package progress

import (
	"taxflow/domain/stage"
	"taxflow/persistence"
	"taxflow/session"
)

type Severity string

const (
	SeverityMild   Severity = "MILD"
	SeveritySevere Severity = "SEVERE"
)

// Thresholds configure bottleneck classification explicitly; there is
// no ambient global to tweak.
type Thresholds struct {
	MildDays   float64 `json:"mildDays"`
	SevereDays float64 `json:"severeDays"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{MildDays: 7, SevereDays: 14}
}

type Bottleneck struct {
	Stage       stage.Stage `json:"stage"`
	DisplayName string      `json:"displayName"`
	AverageDays float64     `json:"averageDays"`
	Samples     int         `json:"samples"`
	Severity    Severity    `json:"severity"`
}

var BottlenecksFunc = Bottlenecks

// Bottlenecks aggregates average days spent per stage across all
// records of a type and reports stages whose average exceeds the mild
// threshold. Operational reporting only; it never blocks transitions.
func Bottlenecks(t stage.WorkflowType, thresholds Thresholds, s *session.Session) ([]Bottleneck, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	type row struct {
		FromStage   string
		AverageDays float64
		Samples     int
	}
	rows := []row{}
	err := db.Raw(`SELECT e.from_stage AS from_stage, AVG(e.days_in_previous_stage) AS average_days, COUNT(*) AS samples
		FROM workflow_history_entries e
		JOIN workflow_records r ON r.id = e.record_id
		WHERE r.type = ? AND e.days_in_previous_stage IS NOT NULL AND e.from_stage != ''
		GROUP BY e.from_stage`, string(t)).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	bottlenecks := []Bottleneck{}
	for _, r := range rows {
		st := stage.Stage(r.FromStage)
		if !stage.Contains(t, st) {
			continue
		}
		if r.AverageDays < thresholds.MildDays {
			continue
		}
		severity := SeverityMild
		if r.AverageDays >= thresholds.SevereDays {
			severity = SeveritySevere
		}
		bottlenecks = append(bottlenecks, Bottleneck{
			Stage:       st,
			DisplayName: stage.DisplayName(t, st),
			AverageDays: r.AverageDays,
			Samples:     r.Samples,
			Severity:    severity,
		})
	}
	return bottlenecks, nil
}

package report

import (
	"sort"

	"github.com/gopherwall/gopherwall/pkg/models"
)

// Distribution holds attack and port shares within a period
type Distribution struct {
	TotalEvents            int                `json:"total_events"`
	AttackBreakdown        map[string]int     `json:"attack_breakdown"`
	AttackBreakdownPercent map[string]Percent `json:"attack_breakdown_percent"`
	AttackedPorts          map[string]int     `json:"attacked_ports"`
	AttackedPortsPercent   map[string]Percent `json:"attacked_ports_percent"`
}

func newDistribution(events []models.Event) Distribution {
	attacks := countBy(events, attackType)
	ports := countBy(events, portKey)
	return Distribution{
		TotalEvents:            len(events),
		AttackBreakdown:        attacks,
		AttackBreakdownPercent: percentages(attacks, len(events)),
		AttackedPorts:          ports,
		AttackedPortsPercent:   percentages(ports, len(events)),
	}
}

type WeekSummary struct {
	Week string `json:"week"`
	Distribution
}

type ByWeek struct {
	Weeks []WeekSummary `json:"summary_by_week"`
}

// BuildByWeek groups events per monday based week, most recent week first
func BuildByWeek(events []models.Event) ByWeek {
	tx := ByWeek{Weeks: make([]WeekSummary, 0)}
	for _, g := range groupBy(events, models.Event.Week) {
		tx.Weeks = append(tx.Weeks, WeekSummary{Week: g.Key, Distribution: newDistribution(g.Events)})
	}
	// zero padded labels sort chronologically
	sort.SliceStable(tx.Weeks, func(i, j int) bool { return tx.Weeks[i].Week > tx.Weeks[j].Week })
	return tx
}

type MonthSummary struct {
	Month string `json:"month"`
	Distribution
}

type ByMonth struct {
	Months []MonthSummary `json:"summary_by_month"`
}

// BuildByMonth groups events per calendar month, most recent month first
func BuildByMonth(events []models.Event) ByMonth {
	tx := ByMonth{Months: make([]MonthSummary, 0)}
	for _, g := range groupBy(events, models.Event.Month) {
		tx.Months = append(tx.Months, MonthSummary{Month: g.Key, Distribution: newDistribution(g.Events)})
	}
	sort.SliceStable(tx.Months, func(i, j int) bool { return tx.Months[i].Month > tx.Months[j].Month })
	return tx
}

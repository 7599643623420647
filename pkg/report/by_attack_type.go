package report

import "github.com/gopherwall/gopherwall/pkg/models"

type AttackTypeSummary struct {
	AttackType        string         `json:"attack_type"`
	TotalEvents       int            `json:"total_events"`
	PercentageOfTotal Percent        `json:"percentage_of_total"`
	PortDistribution  map[string]int `json:"port_distribution"`
	DaysWithEvents    int            `json:"days_with_events"`
}

type ByAttackType struct {
	AttackTypes []AttackTypeSummary `json:"summary_by_attack_type"`
}

// BuildByAttackType groups events per signature. Shares are relative to all events.
func BuildByAttackType(events []models.Event) ByAttackType {
	tx := ByAttackType{AttackTypes: make([]AttackTypeSummary, 0)}
	for _, g := range groupBy(events, attackType) {
		tx.AttackTypes = append(tx.AttackTypes, AttackTypeSummary{
			AttackType:        g.Key,
			TotalEvents:       len(g.Events),
			PercentageOfTotal: percent(len(g.Events), len(events)),
			PortDistribution:  countBy(g.Events, roleKey),
			DaysWithEvents:    distinct(g.Events, date),
		})
	}
	byCountDesc(tx.AttackTypes, func(a AttackTypeSummary) int { return a.TotalEvents })
	return tx
}

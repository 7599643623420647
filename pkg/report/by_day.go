package report

import (
	"sort"

	"github.com/gopherwall/gopherwall/pkg/models"
)

const dayTopAttackers = 5

type DayAttacker struct {
	IP               string         `json:"attack_ip"`
	Events           int            `json:"events"`
	EventsBreakdown  map[string]int `json:"events_breakdown"`
	TimeDistribution map[string]int `json:"time_distribution"`
}

type DayPort struct {
	Port      int            `json:"port"`
	PortType  string         `json:"port_type"`
	Events    int            `json:"events"`
	Breakdown map[string]int `json:"breakdown"`
	Attackers []DayAttacker  `json:"attackers"`
}

type DaySummary struct {
	Date        string    `json:"date"`
	TotalEvents int       `json:"total_events"`
	Ports       []DayPort `json:"ports"`
}

type ByDay struct {
	Days []DaySummary `json:"summary_by_day"`
}

// BuildByDay groups events per calendar day, most recent day first
func BuildByDay(events []models.Event) ByDay {
	tx := ByDay{Days: make([]DaySummary, 0)}
	for _, day := range groupBy(events, date) {
		summary := DaySummary{
			Date:        day.Key,
			TotalEvents: len(day.Events),
			Ports:       make([]DayPort, 0),
		}
		for _, portGroup := range groupBy(day.Events, destPort) {
			port := DayPort{
				Port:      portGroup.Key,
				PortType:  portGroup.Events[0].PortRole.String(),
				Events:    len(portGroup.Events),
				Breakdown: countBy(portGroup.Events, attackType),
				Attackers: make([]DayAttacker, 0),
			}
			for _, ipGroup := range groupBy(portGroup.Events, sourceIP) {
				port.Attackers = append(port.Attackers, DayAttacker{
					IP:               ipGroup.Key,
					Events:           len(ipGroup.Events),
					EventsBreakdown:  countBy(ipGroup.Events, attackType),
					TimeDistribution: timeDistribution(ipGroup.Events),
				})
			}
			byCountDesc(port.Attackers, func(a DayAttacker) int { return a.Events })
			port.Attackers = top(port.Attackers, dayTopAttackers)
			summary.Ports = append(summary.Ports, port)
		}
		byCountDesc(summary.Ports, func(p DayPort) int { return p.Events })
		tx.Days = append(tx.Days, summary)
	}
	sort.SliceStable(tx.Days, func(i, j int) bool {
		return tx.Days[i].Date > tx.Days[j].Date
	})
	return tx
}

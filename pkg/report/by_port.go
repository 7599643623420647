package report

import (
	"github.com/gopherwall/gopherwall/pkg/models"
)

const portTopAttackers = 10

type TimeSpan struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Duration string `json:"duration"`
}

type TimeSample struct {
	First       string         `json:"first"`
	Last        string         `json:"last"`
	CountPerDay map[string]int `json:"count_per_day"`
}

type PortAttacker struct {
	IP              string         `json:"attack_ip"`
	TotalEvents     int            `json:"attack_total_events"`
	EventsBreakdown map[string]int `json:"attack_events_breakdown"`
	TimeSample      TimeSample     `json:"attack_time_sample"`
}

type PortSummary struct {
	Port            int            `json:"port"`
	PortType        string         `json:"port_type"`
	TotalEvents     int            `json:"total_events"`
	EventsBreakdown map[string]int `json:"events_breakdown"`
	TimeSpan        TimeSpan       `json:"time_span"`
	Attackers       []PortAttacker `json:"attackers"`
}

type ByPort struct {
	Ports []PortSummary `json:"summary_by_port"`
}

// BuildByPort groups events per destination port, busiest port first
func BuildByPort(events []models.Event) ByPort {
	tx := ByPort{Ports: make([]PortSummary, 0)}
	for _, portGroup := range groupBy(events, destPort) {
		first, last := span(portGroup.Events)
		summary := PortSummary{
			Port:            portGroup.Key,
			PortType:        portGroup.Events[0].PortRole.String(),
			TotalEvents:     len(portGroup.Events),
			EventsBreakdown: countBy(portGroup.Events, attackType),
			TimeSpan: TimeSpan{
				First:    first.Timestamp.Format(models.StampFormat),
				Last:     last.Timestamp.Format(models.StampFormat),
				Duration: spanDuration(last.Timestamp.Sub(first.Timestamp)),
			},
			Attackers: make([]PortAttacker, 0),
		}
		for _, ipGroup := range groupBy(portGroup.Events, sourceIP) {
			first, last := span(ipGroup.Events)
			summary.Attackers = append(summary.Attackers, PortAttacker{
				IP:              ipGroup.Key,
				TotalEvents:     len(ipGroup.Events),
				EventsBreakdown: countBy(ipGroup.Events, attackType),
				TimeSample: TimeSample{
					First:       first.Timestamp.Format(models.StampFormat),
					Last:        last.Timestamp.Format(models.StampFormat),
					CountPerDay: countBy(ipGroup.Events, date),
				},
			})
		}
		byCountDesc(summary.Attackers, func(a PortAttacker) int { return a.TotalEvents })
		summary.Attackers = top(summary.Attackers, portTopAttackers)
		tx.Ports = append(tx.Ports, summary)
	}
	byCountDesc(tx.Ports, func(p PortSummary) int { return p.TotalEvents })
	return tx
}

package report

import (
	"sort"
	"strconv"

	"github.com/gopherwall/gopherwall/pkg/models"
)

const totalEventsKey = "Total_Events"

// Timeline describes attack activity of an IP during one day
type Timeline struct {
	FirstAttack    string `json:"First_Attack"`
	LastAttack     string `json:"Last_Attack"`
	AttackDuration string `json:"Attack_Duration"`
}

type DateActivity struct {
	Timeline Timeline `json:"Timeline"`
	Events   int      `json:"Events"`
	Types    []string `json:"Types"`
}

type AffectedPorts struct {
	GameServer []string `json:"GameServer"`
	SourceTV   []string `json:"SourceTV"`
}

// IPSummary is a single attacker entry of the by_ip report
type IPSummary struct {
	IP              string                  `json:"IP"`
	ActivityByDate  map[string]DateActivity `json:"Activity_By_Date"`
	TotalStatistics map[string]int          `json:"Total_Statistics"`
	AffectedPorts   AffectedPorts           `json:"Affected_Ports"`
}

/*
BuildByIP groups events per source address, then per day. Attackers are listed in the order
they first appear in the log.
*/
func BuildByIP(events []models.Event) []IPSummary {
	tx := make([]IPSummary, 0)
	for _, ipGroup := range groupBy(events, sourceIP) {
		summary := IPSummary{
			IP:              ipGroup.Key,
			ActivityByDate:  make(map[string]DateActivity),
			TotalStatistics: countBy(ipGroup.Events, attackType),
			AffectedPorts:   affectedPorts(ipGroup.Events),
		}
		summary.TotalStatistics[totalEventsKey] = len(ipGroup.Events)

		for _, day := range groupBy(ipGroup.Events, date) {
			first, last := span(day.Events)
			duration := "0 seconds"
			if len(day.Events) > 1 {
				duration = attackDuration(last.Timestamp.Sub(first.Timestamp))
			}
			summary.ActivityByDate[day.Key] = DateActivity{
				Timeline: Timeline{
					FirstAttack:    first.Clock(),
					LastAttack:     last.Clock(),
					AttackDuration: duration,
				},
				Events: len(day.Events),
				Types:  sortedKeys(countBy(day.Events, attackType)),
			}
		}
		tx = append(tx, summary)
	}
	return tx
}

func affectedPorts(events []models.Event) AffectedPorts {
	game := make(map[int]bool)
	tv := make(map[int]bool)
	for _, e := range events {
		switch e.PortRole {
		case models.RoleGameServer:
			game[e.DestPort] = true
		case models.RoleSourceTV:
			tv[e.DestPort] = true
		}
	}
	return AffectedPorts{GameServer: portStrings(game), SourceTV: portStrings(tv)}
}

func portStrings(set map[int]bool) []string {
	nums := make([]int, 0, len(set))
	for p := range set {
		nums = append(nums, p)
	}
	sort.Ints(nums)
	tx := make([]string, 0, len(nums))
	for _, p := range nums {
		tx = append(tx, strconv.Itoa(p))
	}
	return tx
}

func sortedKeys[V any](m map[string]V) []string {
	tx := make([]string, 0, len(m))
	for k := range m {
		tx = append(tx, k)
	}
	sort.Strings(tx)
	return tx
}

package report

import (
	"github.com/gopherwall/gopherwall/pkg/models"
)

const topCountries = 5

type CountryCount struct {
	Country string `json:"country"`
	Events  int    `json:"events"`
}

// Overview is a quick summary of an event collection
type Overview struct {
	Events      int            `json:"events"`
	UniqueIPs   int            `json:"unique_ips"`
	UniqueDays  int            `json:"unique_days"`
	UniquePorts int            `json:"unique_ports"`
	Period      models.Period  `json:"period"`
	AttackTypes map[string]int `json:"attack_types"`
	Roles       map[string]int `json:"roles"`
	Protocols   map[string]int `json:"protocols"`
	Countries   []CountryCount `json:"countries,omitempty"`
}

// NewOverview computes overview of events, countries are only filled with a resolver
func NewOverview(events []models.Event, o Options) Overview {
	ov := Overview{
		Events:      len(events),
		UniqueIPs:   distinct(events, sourceIP),
		UniqueDays:  distinct(events, date),
		UniquePorts: distinct(events, portKey),
		AttackTypes: countBy(events, attackType),
		Roles:       countBy(events, roleKey),
		Protocols: countBy(events, func(e models.Event) string {
			if e.Protocol == "" {
				return models.UnknownAttack
			}
			return e.Protocol
		}),
	}
	for _, e := range events {
		ov.Period.Extend(e.Timestamp)
	}
	if o.Countries != nil {
		byCountry := BuildByCountry(events, o.Countries)
		for _, c := range top(byCountry.Countries, topCountries) {
			ov.Countries = append(ov.Countries, CountryCount{Country: c.Country, Events: c.TotalEvents})
		}
	}
	return ov
}

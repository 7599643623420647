package report

import "github.com/gopherwall/gopherwall/pkg/models"

// UnknownCountry labels addresses missing from the geolocation database
const UnknownCountry = "UNKNOWN"

// CountryResolver maps a source address to an ISO country code
type CountryResolver interface {
	Country(ip string) string
}

type CountrySummary struct {
	Country           string         `json:"country"`
	TotalEvents       int            `json:"total_events"`
	UniqueIPs         int            `json:"unique_ips"`
	PercentageOfTotal Percent        `json:"percentage_of_total"`
	AttackBreakdown   map[string]int `json:"attack_breakdown"`
}

type ByCountry struct {
	Countries []CountrySummary `json:"summary_by_country"`
}

// BuildByCountry groups events per attacker country, most active country first
func BuildByCountry(events []models.Event, resolver CountryResolver) ByCountry {
	tx := ByCountry{Countries: make([]CountrySummary, 0)}
	for _, g := range groupBy(events, countryOf(resolver)) {
		tx.Countries = append(tx.Countries, CountrySummary{
			Country:           g.Key,
			TotalEvents:       len(g.Events),
			UniqueIPs:         distinct(g.Events, sourceIP),
			PercentageOfTotal: percent(len(g.Events), len(events)),
			AttackBreakdown:   countBy(g.Events, attackType),
		})
	}
	byCountDesc(tx.Countries, func(c CountrySummary) int { return c.TotalEvents })
	return tx
}

func countryOf(resolver CountryResolver) func(models.Event) string {
	cache := make(map[string]string)
	return func(e models.Event) string {
		if c, ok := cache[e.SourceIP]; ok {
			return c
		}
		c := UnknownCountry
		if resolver != nil {
			if code := resolver.Country(e.SourceIP); code != "" {
				c = code
			}
		}
		cache[e.SourceIP] = c
		return c
	}
}

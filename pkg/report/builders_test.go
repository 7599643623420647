package report

import (
	"bytes"
	"math"
	"testing"

	"github.com/gopherwall/gopherwall/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	game = models.RoleGameServer
	tv   = models.RoleSourceTV
)

func sample() []models.Event {
	b := &builder{}
	return []models.Event{
		b.ev("10.0.0.1", 27015, game, "A2S_INFO_FLOOD", "2024-10-10 14:03:21"),
		b.ev("10.0.0.2", 27020, tv, "A2S_PLAYERS_FLOOD", "2024-10-10 02:00:00"),
		b.ev("10.0.0.1", 27015, game, "A2S_INFO_FLOOD", "2024-10-10 14:03:26"),
		b.ev("10.0.0.3", 27015, game, "UNKNOWN", "2024-10-11 20:10:00"),
		b.ev("10.0.0.2", 27015, game, "A2S_RULES_FLOOD", "2024-10-14 08:00:00"),
		b.ev("10.0.0.1", 22, models.RoleOther, "TCP_RCON_BLOCK", "2024-11-02 11:00:00"),
		b.ev("10.0.0.3", 27020, tv, "A2S_PLAYERS_FLOOD", "2024-11-02 11:30:00"),
	}
}

func encode(t *testing.T, doc any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	return buf.String()
}

func TestByIPSingleAttacker(t *testing.T) {
	b := &builder{}
	events := []models.Event{
		b.ev("10.0.0.1", 27015, game, "A2S_INFO_FLOOD", "2024-10-10 14:03:21"),
		b.ev("10.0.0.1", 27015, game, "A2S_INFO_FLOOD", "2024-10-10 14:03:26"),
	}
	expected := `[
  {
    "IP": "10.0.0.1",
    "Activity_By_Date": {
      "2024-10-10": {
        "Timeline": {
          "First_Attack": "14:03:21",
          "Last_Attack": "14:03:26",
          "Attack_Duration": "5 seconds"
        },
        "Events": 2,
        "Types": [
          "A2S_INFO_FLOOD"
        ]
      }
    },
    "Total_Statistics": {
      "A2S_INFO_FLOOD": 2,
      "Total_Events": 2
    },
    "Affected_Ports": {
      "GameServer": [
        "27015"
      ],
      "SourceTV": []
    }
  }
]
`
	assert.Equal(t, expected, encode(t, BuildByIP(events)))
}

func TestByIP(t *testing.T) {
	ips := BuildByIP(sample())
	require.Len(t, ips, 3)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, []string{ips[0].IP, ips[1].IP, ips[2].IP})

	first := ips[0]
	assert.Equal(t, 3, first.TotalStatistics[totalEventsKey])
	assert.Equal(t, 2, first.TotalStatistics["A2S_INFO_FLOOD"])
	assert.Equal(t, []string{"27015"}, first.AffectedPorts.GameServer)
	assert.Empty(t, first.AffectedPorts.SourceTV)
	require.Contains(t, first.ActivityByDate, "2024-11-02")
	single := first.ActivityByDate["2024-11-02"]
	assert.Equal(t, "0 seconds", single.Timeline.AttackDuration)
	assert.Equal(t, "11:00:00", single.Timeline.FirstAttack)
	assert.Equal(t, single.Timeline.FirstAttack, single.Timeline.LastAttack)

	second := ips[1]
	assert.Equal(t, []string{"27015"}, second.AffectedPorts.GameServer)
	assert.Equal(t, []string{"27020"}, second.AffectedPorts.SourceTV)
	assert.Len(t, second.ActivityByDate, 2)

	for _, ip := range ips {
		var perDay int
		for _, act := range ip.ActivityByDate {
			perDay += act.Events
		}
		assert.Equal(t, ip.TotalStatistics[totalEventsKey], perDay, ip.IP)
	}
}

func TestByPort(t *testing.T) {
	ports := BuildByPort(sample()).Ports
	require.Len(t, ports, 3)

	assert.Equal(t, 27015, ports[0].Port)
	assert.Equal(t, "GameServer", ports[0].PortType)
	assert.Equal(t, 4, ports[0].TotalEvents)
	assert.Equal(t, "2024-10-10T14:03:21", ports[0].TimeSpan.First)
	assert.Equal(t, "2024-10-14T08:00:00", ports[0].TimeSpan.Last)
	assert.Equal(t, "3 days, 17 hours", ports[0].TimeSpan.Duration)
	require.Len(t, ports[0].Attackers, 3)
	assert.Equal(t, "10.0.0.1", ports[0].Attackers[0].IP)
	assert.Equal(t, 2, ports[0].Attackers[0].TotalEvents)
	assert.Equal(t, map[string]int{"2024-10-10": 2}, ports[0].Attackers[0].TimeSample.CountPerDay)
	// ties keep first seen order
	assert.Equal(t, "10.0.0.3", ports[0].Attackers[1].IP)
	assert.Equal(t, "10.0.0.2", ports[0].Attackers[2].IP)

	assert.Equal(t, 27020, ports[1].Port)
	assert.Equal(t, "SourceTV", ports[1].PortType)
	assert.Equal(t, 22, ports[2].Port)
	assert.Equal(t, "Other", ports[2].PortType)
	assert.Equal(t, "0 seconds", ports[2].TimeSpan.Duration)
}

func TestByPortTopAttackers(t *testing.T) {
	b := &builder{}
	var events []models.Event
	for i := 0; i < 15; i++ {
		ip := "192.0.2." + string(rune('a'+i))
		for j := 0; j <= i%3; j++ {
			events = append(events, b.ev(ip, 27015, game, "MALFORMED", "2024-10-10 10:00:00"))
		}
	}
	attackers := BuildByPort(events).Ports[0].Attackers
	require.Len(t, attackers, portTopAttackers)
	for i := 1; i < len(attackers); i++ {
		assert.GreaterOrEqual(t, attackers[i-1].TotalEvents, attackers[i].TotalEvents)
	}
	// five attackers with three events, then first five of the two event group
	assert.Equal(t, "192.0.2.c", attackers[0].IP)
	assert.Equal(t, "192.0.2.b", attackers[5].IP)
}

func TestByDay(t *testing.T) {
	days := BuildByDay(sample()).Days
	require.Len(t, days, 4)
	assert.Equal(t, []string{"2024-11-02", "2024-10-14", "2024-10-11", "2024-10-10"},
		[]string{days[0].Date, days[1].Date, days[2].Date, days[3].Date})

	oct10 := days[3]
	assert.Equal(t, 3, oct10.TotalEvents)
	require.Len(t, oct10.Ports, 2)
	assert.Equal(t, 27015, oct10.Ports[0].Port)
	assert.Equal(t, 2, oct10.Ports[0].Events)
	require.Len(t, oct10.Ports[0].Attackers, 1)
	assert.Equal(t, map[string]int{
		"00:00-06:00": 0,
		"06:00-12:00": 0,
		"12:00-18:00": 2,
		"18:00-24:00": 0,
	}, oct10.Ports[0].Attackers[0].TimeDistribution)
	assert.Equal(t, 1, oct10.Ports[1].Attackers[0].TimeDistribution["00:00-06:00"])

	for _, d := range days {
		var sum int
		for _, p := range d.Ports {
			sum += p.Events
		}
		assert.Equal(t, d.TotalEvents, sum, d.Date)
	}
}

func TestByDayTopAttackers(t *testing.T) {
	b := &builder{}
	var events []models.Event
	for i := 0; i < 8; i++ {
		events = append(events, b.ev("198.51.100."+string(rune('a'+i)), 27015, game, "MALFORMED", "2024-10-10 10:00:00"))
	}
	attackers := BuildByDay(events).Days[0].Ports[0].Attackers
	require.Len(t, attackers, dayTopAttackers)
	assert.Equal(t, "198.51.100.a", attackers[0].IP)
	assert.Equal(t, "198.51.100.e", attackers[4].IP)
}

func assertDistribution(t *testing.T, label string, d Distribution) {
	t.Helper()
	var attacks, ports int
	var attackShare, portShare float64
	for _, c := range d.AttackBreakdown {
		attacks += c
	}
	for _, c := range d.AttackedPorts {
		ports += c
	}
	for _, p := range d.AttackBreakdownPercent {
		attackShare += float64(p)
	}
	for _, p := range d.AttackedPortsPercent {
		portShare += float64(p)
	}
	assert.Equal(t, d.TotalEvents, attacks, label)
	assert.Equal(t, d.TotalEvents, ports, label)
	assert.LessOrEqual(t, math.Abs(100-attackShare), 0.05*float64(len(d.AttackBreakdownPercent)), label)
	assert.LessOrEqual(t, math.Abs(100-portShare), 0.05*float64(len(d.AttackedPortsPercent)), label)
}

func TestByWeek(t *testing.T) {
	weeks := BuildByWeek(sample()).Weeks
	require.Len(t, weeks, 3)
	assert.Equal(t, "2024-10-28 to 2024-11-03", weeks[0].Week)
	assert.Equal(t, "2024-10-14 to 2024-10-20", weeks[1].Week)
	assert.Equal(t, "2024-10-07 to 2024-10-13", weeks[2].Week)
	assert.Equal(t, 4, weeks[2].TotalEvents)
	assert.Equal(t, Percent(50), weeks[2].AttackBreakdownPercent["A2S_INFO_FLOOD"])
	assert.Equal(t, Percent(75), weeks[2].AttackedPortsPercent["27015"])
	for _, w := range weeks {
		assertDistribution(t, w.Week, w.Distribution)
	}
}

func TestByMonth(t *testing.T) {
	months := BuildByMonth(sample()).Months
	require.Len(t, months, 2)
	assert.Equal(t, "2024-11", months[0].Month)
	assert.Equal(t, "2024-10", months[1].Month)
	assert.Equal(t, 5, months[1].TotalEvents)
	assert.Equal(t, Percent(20), months[1].AttackedPortsPercent["27020"])
	for _, m := range months {
		assertDistribution(t, m.Month, m.Distribution)
	}
}

func TestByAttackType(t *testing.T) {
	events := sample()
	types := BuildByAttackType(events).AttackTypes
	require.Len(t, types, 5)

	var total int
	for _, at := range types {
		total += at.TotalEvents
		var roles int
		for _, c := range at.PortDistribution {
			roles += c
		}
		assert.Equal(t, at.TotalEvents, roles, at.AttackType)
	}
	assert.Equal(t, len(events), total)

	assert.Equal(t, "A2S_INFO_FLOOD", types[0].AttackType)
	assert.Equal(t, Percent(28.6), types[0].PercentageOfTotal)
	assert.Equal(t, 1, types[0].DaysWithEvents)
	assert.Equal(t, "A2S_PLAYERS_FLOOD", types[1].AttackType)
	assert.Equal(t, 2, types[1].DaysWithEvents)
	assert.Equal(t, map[string]int{"SourceTV": 2}, types[1].PortDistribution)
	assert.Equal(t, "UNKNOWN", types[2].AttackType)
}

type fakeResolver map[string]string

func (f fakeResolver) Country(ip string) string { return f[ip] }

func TestByCountry(t *testing.T) {
	resolver := fakeResolver{"10.0.0.1": "DE", "10.0.0.2": "DE"}
	countries := BuildByCountry(sample(), resolver).Countries
	require.Len(t, countries, 2)
	assert.Equal(t, "DE", countries[0].Country)
	assert.Equal(t, 5, countries[0].TotalEvents)
	assert.Equal(t, 2, countries[0].UniqueIPs)
	assert.Equal(t, Percent(71.4), countries[0].PercentageOfTotal)
	assert.Equal(t, UnknownCountry, countries[1].Country)
	assert.Equal(t, 2, countries[1].TotalEvents)
}

func TestEmptyReports(t *testing.T) {
	assert.Equal(t, "[]\n", encode(t, BuildByIP(nil)))
	assert.Equal(t, "{\n  \"summary_by_port\": []\n}\n", encode(t, BuildByPort(nil)))
	assert.Equal(t, "{\n  \"summary_by_day\": []\n}\n", encode(t, BuildByDay(nil)))
	assert.Equal(t, "{\n  \"summary_by_week\": []\n}\n", encode(t, BuildByWeek(nil)))
	assert.Equal(t, "{\n  \"summary_by_month\": []\n}\n", encode(t, BuildByMonth(nil)))
	assert.Equal(t, "{\n  \"summary_by_attack_type\": []\n}\n", encode(t, BuildByAttackType(nil)))
	assert.Equal(t, "{\n  \"summary_by_country\": []\n}\n", encode(t, BuildByCountry(nil, fakeResolver{})))
}

func TestReportsAreIdempotent(t *testing.T) {
	o := Options{Countries: fakeResolver{"10.0.0.1": "DE"}}
	for _, kind := range append([]Kind{KindByCountry}, Kinds...) {
		first, err := Build(kind, sample(), o)
		require.NoError(t, err)
		second, err := Build(kind, sample(), o)
		require.NoError(t, err)
		assert.Equal(t, encode(t, first), encode(t, second), string(kind))
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" BY_Week ")
	require.NoError(t, err)
	assert.Equal(t, KindByWeek, k)
	assert.Equal(t, "summary_by_week.json", k.FileName())

	k, err = ParseKind("by_country")
	require.NoError(t, err)
	assert.Equal(t, KindByCountry, k)
	assert.Len(t, Kinds, 6)

	_, err = ParseKind("by_year")
	assert.Error(t, err)
}

func TestBuildCountryWithoutResolver(t *testing.T) {
	_, err := Build(KindByCountry, sample(), Options{})
	assert.ErrorIs(t, err, errNoResolver)
}

func TestOverview(t *testing.T) {
	ov := NewOverview(sample(), Options{})
	assert.Equal(t, 7, ov.Events)
	assert.Equal(t, 3, ov.UniqueIPs)
	assert.Equal(t, 4, ov.UniqueDays)
	assert.Equal(t, 3, ov.UniquePorts)
	assert.Equal(t, map[string]int{"GameServer": 4, "SourceTV": 2, "Other": 1}, ov.Roles)
	assert.Equal(t, map[string]int{"UDP": 7}, ov.Protocols)
	assert.Equal(t, "2024-10-10T02:00:00", ov.Period.Beginning.Format(models.StampFormat))
	assert.Equal(t, "2024-11-02T11:30:00", ov.Period.End.Format(models.StampFormat))
	assert.Nil(t, ov.Countries)

	ov = NewOverview(sample(), Options{Countries: fakeResolver{"10.0.0.3": "NL"}})
	require.Len(t, ov.Countries, 2)
	assert.Equal(t, CountryCount{Country: UnknownCountry, Events: 5}, ov.Countries[0])
	assert.Equal(t, CountryCount{Country: "NL", Events: 2}, ov.Countries[1])
}

package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gopherwall/gopherwall/pkg/models"
)

// Kind names a report type
type Kind string

const (
	KindByIP         Kind = "by_ip"
	KindByPort       Kind = "by_port"
	KindByDay        Kind = "by_day"
	KindByWeek       Kind = "by_week"
	KindByMonth      Kind = "by_month"
	KindByAttackType Kind = "by_attack_type"
	KindByCountry    Kind = "by_country"
)

// Kinds lists reports that need nothing but events
var Kinds = []Kind{
	KindByIP,
	KindByPort,
	KindByDay,
	KindByWeek,
	KindByMonth,
	KindByAttackType,
}

var errNoResolver = errors.New("by_country report needs a GeoIP database")

// ParseKind validates textual report name
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if k == KindByCountry {
		return k, nil
	}
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", raw)
}

// FileName is the default output file of report
func (k Kind) FileName() string { return "summary_" + string(k) + ".json" }

// Options carries optional collaborators of report builders
type Options struct {
	Countries CountryResolver
}

// Build dispatches to builder of kind
func Build(k Kind, events []models.Event, o Options) (any, error) {
	switch k {
	case KindByIP:
		return BuildByIP(events), nil
	case KindByPort:
		return BuildByPort(events), nil
	case KindByDay:
		return BuildByDay(events), nil
	case KindByWeek:
		return BuildByWeek(events), nil
	case KindByMonth:
		return BuildByMonth(events), nil
	case KindByAttackType:
		return BuildByAttackType(events), nil
	case KindByCountry:
		if o.Countries == nil {
			return nil, errNoResolver
		}
		return BuildByCountry(events, o.Countries), nil
	default:
		return nil, fmt.Errorf("unknown report type %q", string(k))
	}
}

// Len returns number of top level entries in a built report
func Len(doc any) int {
	switch d := doc.(type) {
	case []IPSummary:
		return len(d)
	case ByPort:
		return len(d.Ports)
	case ByDay:
		return len(d.Days)
	case ByWeek:
		return len(d.Weeks)
	case ByMonth:
		return len(d.Months)
	case ByAttackType:
		return len(d.AttackTypes)
	case ByCountry:
		return len(d.Countries)
	default:
		return 0
	}
}

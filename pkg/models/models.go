package models

import "time"

const (
	// DateFormat is the calendar key used by per-day groupings
	DateFormat = "2006-01-02"
	// ClockFormat is the time-of-day representation of an event
	ClockFormat = "15:04:05"
	// StampFormat is the full second precision timestamp used in reports
	StampFormat = "2006-01-02T15:04:05"
	// MonthFormat is the calendar month key
	MonthFormat = "2006-01"

	// UnknownAttack is assigned when no signature marker matched the line
	UnknownAttack = "UNKNOWN"
)

// Event is a single rejected or rate-limited packet extracted from firewall log
type Event struct {
	SourceIP   string    `json:"source_ip"`
	DestPort   int       `json:"dest_port"`
	PortRole   PortRole  `json:"port_role"`
	AttackType string    `json:"attack_type"`
	Length     int       `json:"packet_length"`
	Protocol   string    `json:"protocol,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// Seq is the zero based line number event was extracted from
	Seq int `json:"-"`
}

// Date returns calendar day key of event
func (e Event) Date() string { return e.Timestamp.Format(DateFormat) }

// Clock returns time of day of event
func (e Event) Clock() string { return e.Timestamp.Format(ClockFormat) }

// Month returns calendar month key of event
func (e Event) Month() string { return e.Timestamp.Format(MonthFormat) }

// WeekStart returns midnight of the monday that opens the week of event
func (e Event) WeekStart() time.Time {
	ts := e.Timestamp
	offset := (int(ts.Weekday()) + 6) % 7
	return time.Date(ts.Year(), ts.Month(), ts.Day()-offset, 0, 0, 0, 0, ts.Location())
}

// Week returns week label in "<monday> to <sunday>" format
func (e Event) Week() string {
	start := e.WeekStart()
	return start.Format(DateFormat) + " to " + start.AddDate(0, 0, 6).Format(DateFormat)
}

// Before orders events by timestamp, falling back to source line order
func (e Event) Before(other Event) bool {
	if e.Timestamp.Equal(other.Timestamp) {
		return e.Seq < other.Seq
	}
	return e.Timestamp.Before(other.Timestamp)
}

type Period struct {
	Beginning time.Time `json:"beginning"`
	End       time.Time `json:"end"`
}

func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Beginning)
}

// Extend widens period so that it contains ts
func (p *Period) Extend(ts time.Time) {
	if p.Beginning.IsZero() || ts.Before(p.Beginning) {
		p.Beginning = ts
	}
	if p.End.IsZero() || ts.After(p.End) {
		p.End = ts
	}
}

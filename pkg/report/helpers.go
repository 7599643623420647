package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/gopherwall/gopherwall/pkg/models"
)

// group is a set of events sharing one key, groups keep first-encountered order
type group[K comparable] struct {
	Key    K
	Events []models.Event
}

func groupBy[K comparable](events []models.Event, key func(models.Event) K) []group[K] {
	idx := make(map[K]int)
	tx := make([]group[K], 0)
	for _, e := range events {
		k := key(e)
		i, ok := idx[k]
		if !ok {
			i = len(tx)
			idx[k] = i
			tx = append(tx, group[K]{Key: k})
		}
		tx[i].Events = append(tx[i].Events, e)
	}
	return tx
}

// countBy returns a breakdown map with one entry per observed key
func countBy(events []models.Event, key func(models.Event) string) map[string]int {
	tx := make(map[string]int)
	for _, e := range events {
		tx[key(e)]++
	}
	return tx
}

func attackType(e models.Event) string { return e.AttackType }
func portKey(e models.Event) string    { return strconv.Itoa(e.DestPort) }
func roleKey(e models.Event) string    { return e.PortRole.String() }
func sourceIP(e models.Event) string   { return e.SourceIP }
func destPort(e models.Event) int      { return e.DestPort }
func date(e models.Event) string       { return e.Date() }

// distinct returns number of unique keys
func distinct(events []models.Event, key func(models.Event) string) int {
	seen := make(map[string]bool)
	for _, e := range events {
		seen[key(e)] = true
	}
	return len(seen)
}

// span returns earliest and latest event, equal timestamps are ordered by source line
func span(events []models.Event) (first, last models.Event) {
	for i, e := range events {
		if i == 0 || e.Before(first) {
			first = e
		}
		if i == 0 || last.Before(e) {
			last = e
		}
	}
	return first, last
}

// Percent is a share rounded half-up to one decimal, always serialized with that decimal
type Percent float64

// MarshalJSON implements json.Marshaler
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'f', 1, 64)), nil
}

func percent(count, total int) Percent {
	if total == 0 {
		return 0
	}
	return Percent(math.Floor(1000*float64(count)/float64(total)+0.5) / 10)
}

func percentages(counts map[string]int, total int) map[string]Percent {
	tx := make(map[string]Percent, len(counts))
	for k, v := range counts {
		tx[k] = percent(v, total)
	}
	return tx
}

func seconds(d time.Duration) int64 { return int64(d / time.Second) }

func shortDuration(secs int64) (string, bool) {
	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds", secs), true
	case secs < 3600:
		if s := secs % 60; s > 0 {
			return fmt.Sprintf("%d minutes %d seconds", secs/60, s), true
		}
		return fmt.Sprintf("%d minutes", secs/60), true
	}
	return "", false
}

// attackDuration formats per day timelines, hours is the largest unit
func attackDuration(d time.Duration) string {
	secs := seconds(d)
	if s, ok := shortDuration(secs); ok {
		return s
	}
	if m := (secs % 3600) / 60; m > 0 {
		return fmt.Sprintf("%d hours %d minutes", secs/3600, m)
	}
	return fmt.Sprintf("%d hours", secs/3600)
}

// spanDuration formats port time spans which may cover several days
func spanDuration(d time.Duration) string {
	secs := seconds(d)
	if s, ok := shortDuration(secs); ok {
		return s
	}
	if secs < 86400 {
		return fmt.Sprintf("%d hours, %d minutes", secs/3600, (secs%3600)/60)
	}
	return fmt.Sprintf("%d days, %d hours", secs/86400, (secs%86400)/3600)
}

var dayBuckets = [4]string{"00:00-06:00", "06:00-12:00", "12:00-18:00", "18:00-24:00"}

// timeDistribution counts events in the four 6 hour windows of a day
func timeDistribution(events []models.Event) map[string]int {
	tx := make(map[string]int, len(dayBuckets))
	for _, b := range dayBuckets {
		tx[b] = 0
	}
	for _, e := range events {
		tx[dayBuckets[e.Timestamp.Hour()/6]]++
	}
	return tx
}

// byCountDesc stable sorts xs on count, descending
func byCountDesc[T any](xs []T, count func(T) int) {
	sort.SliceStable(xs, func(i, j int) bool {
		return count(xs[i]) > count(xs[j])
	})
}

func top[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

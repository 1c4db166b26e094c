// internal/rules/datetime.go
package rules

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

/*
 * Date values with offset inference.
 *
 * Instant is a plain value: parsing, ordering and weekday formatting need no
 * registration step or process-wide zone state.
 *
 * A field's zone comes from its own text: "Z" is UTC, "+HH:MM"/"-HH:MM" is
 * that fixed offset, and no marker is offset 0. Comparison operands without
 * a marker are parsed as wall-clock time in the field's zone; date-only
 * operands are midnight there. Operands that carry a marker keep it.
 *
 * Numbers are Unix milliseconds in UTC.
 */

var errInvalidDate = errors.New("invalid date")

// offsetLayouts carry an explicit zone marker. Fractional seconds are
// accepted on parse by the seconds layouts.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// localLayouts are read in the zone supplied by the caller.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const instantLayout = "2006-01-02T15:04:05-07:00"

// Instant is a parsed date value.
type Instant struct {
	Time      time.Time
	HasOffset bool // true if the source text named its offset
}

// ParseInstant parses v, reading marker-less text as wall-clock time in loc.
func ParseInstant(v any, loc *time.Location) (Instant, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch t := v.(type) {
	case time.Time:
		return Instant{Time: t, HasOffset: true}, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range offsetLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return Instant{Time: ts, HasOffset: true}, nil
			}
		}
		for _, layout := range localLayouts {
			if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
				return Instant{Time: ts}, nil
			}
		}
		return Instant{}, errInvalidDate
	default:
		if ms, ok := toFloat64(v); ok {
			return Instant{Time: time.UnixMilli(int64(ms)).UTC(), HasOffset: true}, nil
		}
		return Instant{}, errInvalidDate
	}
}

// Zone returns the fixed zone inferred from the instant's own text.
func (i Instant) Zone() *time.Location {
	if !i.HasOffset {
		return time.FixedZone("", 0)
	}
	_, offset := i.Time.Zone()
	return time.FixedZone("", offset)
}

// Format renders the instant with a numeric offset in zone.
func (i Instant) Format(zone *time.Location) string {
	return i.Time.In(zone).Format(instantLayout)
}

// Weekday returns the lower-case English day name in zone.
func (i Instant) Weekday(zone *time.Location) string {
	return strings.ToLower(i.Time.In(zone).Weekday().String())
}

// dayNumbers maps day names to PostgreSQL EXTRACT(DOW) values.
var dayNumbers = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// FoldDayName case-folds a day name and reports whether it is known.
func FoldDayName(name string) (string, bool) {
	folded := cases.Fold().String(strings.TrimSpace(name))
	_, ok := dayNumbers[folded]
	return folded, ok
}

// DayNumber returns the EXTRACT(DOW) value for a day name, case-insensitively.
func DayNumber(name string) (int, bool) {
	folded, ok := FoldDayName(name)
	if !ok {
		return 0, false
	}
	return dayNumbers[folded], true
}

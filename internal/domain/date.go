package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// CalendarDate is a date in YYYY-MM-DD form with no time of day and no zone.
// The zero value means the date is absent. Fixed width and zero padding make
// plain string comparison chronological.
type CalendarDate string

// IsZero reports whether the date is absent.
func (d CalendarDate) IsZero() bool { return d == "" }

func (d CalendarDate) String() string { return string(d) }

// Within reports whether d is present and inside [from, to]. An empty bound
// leaves that side open.
func (d CalendarDate) Within(from, to CalendarDate) bool {
	if d.IsZero() {
		return false
	}
	if !from.IsZero() && d < from {
		return false
	}
	if !to.IsZero() && d > to {
		return false
	}
	return true
}

// NewCalendarDate builds a date from calendar fields. Values that do not name
// a real day (month 13, February 30) are rejected rather than rolled over.
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, bool) {
	if year < 1 || year > 9999 {
		return "", false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return "", false
	}
	return CalendarDate(fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)), true
}

var (
	// isoDateRe matches dates already in canonical form.
	isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

	// dmyDateRe matches day-first dates, "5/3/2021" or "05-03-2021".
	dmyDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

// DateNormalizer renders raw date values as calendar dates. Location decides
// which calendar day an instant falls on; nil means time.Local.
type DateNormalizer struct {
	Location *time.Location
}

func (n DateNormalizer) location() *time.Location {
	if n.Location == nil {
		return time.Local
	}
	return n.Location
}

// Normalize converts a raw value. Canonical text comes back unchanged,
// day-first text is rebuilt from its fields, and anything else goes through
// a flexible parser. Unparsable or impossible dates are absent.
func (n DateNormalizer) Normalize(v Value) CalendarDate {
	switch v.Kind {
	case KindString:
		return n.NormalizeText(v.Str)
	case KindNumber:
		return n.parseFlexible(formatNumber(v.Num))
	case KindMissing, KindNull, KindBool, KindComposite:
		return ""
	default:
		return ""
	}
}

// NormalizeText is Normalize for text input.
func (n DateNormalizer) NormalizeText(s string) CalendarDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		if _, ok := fromFields(m[1], m[2], m[3]); !ok {
			return ""
		}
		return CalendarDate(s)
	}

	if m := dmyDateRe.FindStringSubmatch(s); m != nil {
		d, _ := fromFields(m[3], m[2], m[1])
		return d
	}

	return n.parseFlexible(s)
}

// FromTime takes the calendar fields of t as seen in the normalizer's location.
func (n DateNormalizer) FromTime(t time.Time) CalendarDate {
	if t.IsZero() {
		return ""
	}
	local := t.In(n.location())
	d, _ := NewCalendarDate(local.Year(), local.Month(), local.Day())
	return d
}

func (n DateNormalizer) parseFlexible(s string) CalendarDate {
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseIn(s, n.location())
	if err != nil {
		return ""
	}
	return n.FromTime(t)
}

func fromFields(year, month, day string) (CalendarDate, bool) {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return "", false
	}
	return NewCalendarDate(y, time.Month(m), d)
}

// ToCalendarDate normalizes v using the process's local time zone.
func ToCalendarDate(v Value) CalendarDate {
	return DateNormalizer{}.Normalize(v)
}

package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testZones = []*time.Location{
	time.UTC,
	time.FixedZone("ART", -3*60*60),
	time.FixedZone("HST", -10*60*60),
	time.FixedZone("JST", 9*60*60),
	time.FixedZone("LINT", 14*60*60),
}

func TestDateNormalizer_NormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected CalendarDate
	}{
		{"canonical", "2021-03-05", "2021-03-05"},
		{"canonical with spaces", " 2021-03-05 ", "2021-03-05"},
		{"canonical leap day", "2024-02-29", "2024-02-29"},
		{"canonical impossible month", "2023-13-40", ""},
		{"canonical non leap day", "2021-02-29", ""},
		{"day first slashes", "5/3/2021", "2021-03-05"},
		{"day first padded", "05/03/2021", "2021-03-05"},
		{"day first dashes", "05-03-2021", "2021-03-05"},
		{"day first end of year", "31/12/2020", "2020-12-31"},
		{"day first impossible", "31/02/2021", ""},
		{"day first month 13", "01/13/2021", ""},
		{"datetime without zone", "2021-03-05 14:30:00", "2021-03-05"},
		{"long form", "March 5, 2021", "2021-03-05"},
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"garbage", "ayer a la tarde", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := DateNormalizer{Location: time.UTC}
			assert.Equal(t, tt.expected, n.NormalizeText(tt.input))
		})
	}
}

func TestDateNormalizer_NoShiftAcrossZones(t *testing.T) {
	inputs := map[string]CalendarDate{
		"2021-03-05":          "2021-03-05",
		"5/3/2021":            "2021-03-05",
		"05-03-2021":          "2021-03-05",
		"2021-01-01":          "2021-01-01",
		"31/12/2020":          "2020-12-31",
		"2021-03-05 00:00:00": "2021-03-05",
		"2021-03-05 23:59:59": "2021-03-05",
	}

	for _, loc := range testZones {
		n := DateNormalizer{Location: loc}
		for input, want := range inputs {
			assert.Equal(t, want, n.NormalizeText(input), "input %q in %s", input, loc)
		}
	}
}

func TestDateNormalizer_InstantReadInLocation(t *testing.T) {
	const instant = "2021-03-05T23:30:00Z"

	assert.Equal(t, CalendarDate("2021-03-05"), DateNormalizer{Location: time.UTC}.NormalizeText(instant))
	assert.Equal(t, CalendarDate("2021-03-05"), DateNormalizer{Location: time.FixedZone("ART", -3*60*60)}.NormalizeText(instant))
	assert.Equal(t, CalendarDate("2021-03-06"), DateNormalizer{Location: time.FixedZone("JST", 9*60*60)}.NormalizeText(instant))
}

func TestDateNormalizer_Normalize(t *testing.T) {
	n := DateNormalizer{Location: time.UTC}

	tests := []struct {
		name     string
		input    Value
		expected CalendarDate
	}{
		{"string", StringValue("5/3/2021"), "2021-03-05"},
		{"missing", Missing, ""},
		{"null", NullValue(), ""},
		{"bool", BoolValue(true), ""},
		{"composite", Value{Kind: KindComposite, Str: `{"d":1}`}, ""},
		{"out of range number", NumberValue(math.Inf(1)), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestDateNormalizer_Idempotent(t *testing.T) {
	for _, loc := range testZones {
		n := DateNormalizer{Location: loc}
		for _, input := range []string{"5/3/2021", "2021-03-05", "March 5, 2021", "2021-03-05 12:00:00"} {
			once := n.NormalizeText(input)
			assert.Equal(t, once, n.NormalizeText(once.String()), "input %q in %s", input, loc)
		}
	}
}

// Numbers go through the flexible parser as text: ten digits are Unix
// seconds, eight digits are YYYYMMDD and four digits are a year.
func TestDateNormalizer_NormalizeNumbers(t *testing.T) {
	n := DateNormalizer{Location: time.UTC}

	tests := []struct {
		input    float64
		expected CalendarDate
	}{
		{1614902400, "2021-03-05"},
		{20210305, "2021-03-05"},
		{2021, "2021-01-01"},
	}

	for _, tt := range tests {
		t.Run(formatNumber(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(NumberValue(tt.input)))
		})
	}
}

func TestToCalendarDate_Idempotent(t *testing.T) {
	for _, input := range []string{"2021-03-05", "1999-12-31", "2024-02-29"} {
		once := ToCalendarDate(StringValue(input))
		assert.Equal(t, CalendarDate(input), once)
		assert.Equal(t, once, ToCalendarDate(StringValue(once.String())))
	}
	assert.Equal(t, CalendarDate("2021-03-05"), ToCalendarDate(StringValue("5/3/2021")))
	assert.Empty(t, ToCalendarDate(StringValue("2023-13-40")))
}

func TestDateNormalizer_FromTime(t *testing.T) {
	utcLate := time.Date(2021, 3, 5, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, CalendarDate("2021-03-05"), DateNormalizer{Location: time.UTC}.FromTime(utcLate))
	assert.Equal(t, CalendarDate("2021-03-06"), DateNormalizer{Location: time.FixedZone("JST", 9*60*60)}.FromTime(utcLate))
	assert.Equal(t, CalendarDate(""), DateNormalizer{}.FromTime(time.Time{}))
}

func TestNewCalendarDate(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  CalendarDate
		ok    bool
	}{
		{"regular", 2021, time.March, 5, "2021-03-05", true},
		{"padded year", 999, time.January, 1, "0999-01-01", true},
		{"leap day", 2020, time.February, 29, "2020-02-29", true},
		{"february 30", 2020, time.February, 30, "", false},
		{"month zero", 2020, 0, 1, "", false},
		{"day zero", 2020, time.May, 0, "", false},
		{"year zero", 0, time.May, 1, "", false},
		{"five digit year", 10000, time.May, 1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewCalendarDate(tt.year, tt.month, tt.day)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendarDate_Within(t *testing.T) {
	tests := []struct {
		name string
		date CalendarDate
		from CalendarDate
		to   CalendarDate
		want bool
	}{
		{"no bounds", "2021-03-05", "", "", true},
		{"absent date", "", "", "", false},
		{"absent date with bounds", "", "2021-01-01", "2021-12-31", false},
		{"inside", "2021-03-05", "2021-01-01", "2021-12-31", true},
		{"on lower bound", "2021-01-01", "2021-01-01", "2021-12-31", true},
		{"on upper bound", "2021-12-31", "2021-01-01", "2021-12-31", true},
		{"before", "2020-12-31", "2021-01-01", "", false},
		{"after", "2022-01-01", "", "2021-12-31", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.date.Within(tt.from, tt.to))
		})
	}
}

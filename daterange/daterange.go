package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"extranet_rates/apperror"
)

const Layout = "2006-01-02"

var (
	rangeRegex = regexp.MustCompile(`^\s*([A-Za-z]+)\.?\s+(\d{1,2})\s*[-\x{2013}\x{2014}]\s*([A-Za-z]+)\.?\s+(\d{1,2})\s*$`)

	months = map[string]time.Month{
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
	}
)

// Interval is an inclusive range of calendar days, stored as UTC midnights.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) StartString() string { return iv.Start.Format(Layout) }
func (iv Interval) EndString() string   { return iv.End.Format(Layout) }

func (iv Interval) String() string {
	return iv.StartString() + ".." + iv.EndString()
}

type Verdict int

const (
	Apply Verdict = iota
	SkipPast
	SkipBeyondHorizon
)

func (v Verdict) String() string {
	switch v {
	case SkipPast:
		return "entirely in the past"
	case SkipBeyondHorizon:
		return "starts at or after the horizon"
	default:
		return "apply"
	}
}

// Parse reads "<Month> <Day> - <Month> <Day>" (hyphen, en dash or em dash)
// and places both ends in year. An end that falls before the start is moved
// to the following year, so "November 1 - February 28" spans the new year.
func Parse(raw string, year int) (Interval, error) {
	m := rangeRegex.FindStringSubmatch(raw)
	if m == nil {
		return Interval{}, apperror.New(apperror.ParseError, fmt.Sprintf("unrecognised date range %q", raw))
	}

	startMonth, err := lookupMonth(m[1])
	if err != nil {
		return Interval{}, apperror.Wrap(apperror.ParseError, fmt.Sprintf("date range %q", raw), err)
	}
	endMonth, err := lookupMonth(m[3])
	if err != nil {
		return Interval{}, apperror.Wrap(apperror.ParseError, fmt.Sprintf("date range %q", raw), err)
	}
	startDay, _ := strconv.Atoi(m[2])
	endDay, _ := strconv.Atoi(m[4])

	start, err := day(year, startMonth, startDay)
	if err != nil {
		return Interval{}, apperror.Wrap(apperror.ParseError, fmt.Sprintf("date range %q", raw), err)
	}

	endYear := year
	if endMonth < startMonth || (endMonth == startMonth && endDay < startDay) {
		endYear++
	}
	end, err := day(endYear, endMonth, endDay)
	if err != nil {
		return Interval{}, apperror.Wrap(apperror.ParseError, fmt.Sprintf("date range %q", raw), err)
	}

	return Interval{Start: start, End: end}, nil
}

// Clamp fits iv into [today, horizon]. Intervals that cannot be edited at all
// come back with a skip verdict; that is not an error.
func Clamp(iv Interval, today, horizon time.Time) (Interval, Verdict) {
	today = Truncate(today)
	horizon = Truncate(horizon)

	if iv.End.Before(today) {
		return iv, SkipPast
	}
	if iv.Start.Before(today) {
		iv.Start = today
	}
	if !iv.Start.Before(horizon) {
		return iv, SkipBeyondHorizon
	}
	if iv.End.After(horizon) {
		iv.End = horizon
	}
	return iv, Apply
}

// Truncate drops the clock part of t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lookupMonth(name string) (time.Month, error) {
	name = strings.ToLower(name)
	if m, ok := months[name]; ok {
		return m, nil
	}
	if len(name) == 3 {
		for full, m := range months {
			if strings.HasPrefix(full, name) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown month %q", name)
}

func day(year int, month time.Month, d int) (time.Time, error) {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	if d < 1 || t.Month() != month {
		return time.Time{}, fmt.Errorf("%s %d does not exist in %d", month, d, year)
	}
	return t, nil
}

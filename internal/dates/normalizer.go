// Package dates turns the relative date phrases shown on application cards
// ("Applied today", "Applied on Mon", "Sep 15") into canonical YYYY-MM-DD dates.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical date layout. Canonical dates order lexicographically
// the same way they order chronologically.
const Layout = "2006-01-02"

var (
	canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	fillerPattern    = regexp.MustCompile(`\b(?:applied|on\s+indeed|on)\b`)
	monthDayPattern  = regexp.MustCompile(`\b([a-z]{3})[a-z]*\.?\s+(\d{1,2})\b`)
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// IsCanonical reports whether s is already a YYYY-MM-DD date
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

// Month returns the YYYY-MM prefix of a canonical date, or "" if s is not canonical
func Month(s string) string {
	if !IsCanonical(s) {
		return ""
	}
	return s[:7]
}

// Normalize converts a human-readable date phrase into a canonical date,
// relative to now. Unrecognized input resolves to now's date.
func Normalize(text string, now time.Time) string {
	trimmed := strings.TrimSpace(text)
	if IsCanonical(trimmed) {
		return trimmed
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	clean := strings.TrimSpace(fillerPattern.ReplaceAllString(strings.ToLower(trimmed), " "))

	switch {
	case strings.Contains(clean, "today"):
		return today.Format(Layout)
	case strings.Contains(clean, "yesterday"):
		return today.AddDate(0, 0, -1).Format(Layout)
	}

	if len(clean) >= 3 {
		if target, ok := weekdays[clean[:3]]; ok {
			daysAgo := (int(today.Weekday()) - int(target) + 7) % 7
			if daysAgo == 0 {
				daysAgo = 7
			}
			return today.AddDate(0, 0, -daysAgo).Format(Layout)
		}
	}

	if date, ok := parseMonthDay(clean, today); ok {
		return date.Format(Layout)
	}

	return today.Format(Layout)
}

// parseMonthDay resolves "sep 15" in today's year, rolling back a year when
// the result would be in the future.
func parseMonthDay(clean string, today time.Time) (time.Time, bool) {
	match := monthDayPattern.FindStringSubmatch(clean)
	if match == nil {
		return time.Time{}, false
	}

	month, ok := months[match[1]]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(match[2])
	if err != nil {
		return time.Time{}, false
	}

	date, ok := makeDate(today.Year(), month, day, today.Location())
	if !ok {
		return time.Time{}, false
	}
	if date.After(today) {
		// Feb 29 may not exist in the previous year
		if date, ok = makeDate(today.Year()-1, month, day, today.Location()); !ok {
			return time.Time{}, false
		}
	}
	return date, true
}

// makeDate rejects days that time.Date would silently roll over
func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	date := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if date.Month() != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

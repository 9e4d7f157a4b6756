package elapse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

var durationRegexp = regexp.MustCompile(`^(\d+(?:\.\d+)?)([a-zA-Z]+)$`)

// ParseDuration reads loose durations such as 90m, 2d, 1.5w or 6mo
func ParseDuration(s string) (time.Duration, error) {
	matches := durationRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid duration, %s", s)
	}

	quantity, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity, %s", matches[1])
	}

	var unit time.Duration
	switch strings.ToLower(matches[2]) {
	case "s", "sec", "secs", "second", "seconds":
		unit = time.Second
	case "m", "min", "mins", "minute", "minutes":
		unit = time.Minute
	case "h", "hr", "hrs", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = day
	case "w", "week", "weeks":
		unit = week
	case "mo", "mos", "month", "months":
		unit = month
	case "y", "yr", "yrs", "year", "years":
		unit = year
	default:
		return 0, fmt.Errorf("invalid unit, %s", matches[2])
	}

	return time.Duration(math.Round(quantity * float64(unit))), nil
}

// Ago describes how long before now t was, e.g. "3 days ago"
func Ago(t, now time.Time) string {
	elapsed := now.Sub(t)

	switch {
	case elapsed >= year:
		return ago(elapsed, year, "last year", "years")
	case elapsed >= month:
		return ago(elapsed, month, "last month", "months")
	case elapsed >= week:
		return ago(elapsed, week, "last week", "weeks")
	case elapsed >= day:
		return ago(elapsed, day, "yesterday", "days")
	case elapsed >= time.Hour:
		return ago(elapsed, time.Hour, "an hour ago", "hours")
	case elapsed >= time.Minute:
		return ago(elapsed, time.Minute, "a minute ago", "minutes")
	case elapsed < 5*time.Second:
		return "just now"
	case elapsed < 30*time.Second:
		return "a few seconds ago"
	}

	return ago(elapsed, time.Second, "a second ago", "seconds")
}

func ago(elapsed, unit time.Duration, single, plural string) string {
	n := int(math.Round(float64(elapsed) / float64(unit)))
	if n == 1 {
		return single
	}
	return fmt.Sprintf("%d %s ago", n, plural)
}

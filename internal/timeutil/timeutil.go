// Package timeutil parses and formats the time-of-day portion of slot labels.
//
// Slot labels are free-form strings such as "Morning Study (6:00 AM - 8:00 AM)".
// The first recognizable "h:mm AM/PM" fragment determines where the slot sorts
// in a day; labels without one sort after everything else.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SortKeyMax is the sentinel returned for labels without a time pattern.
// It is larger than any minute-of-day value, so such labels sort last.
const SortKeyMax = 9999

var (
	clockRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`)
	rangeRe = regexp.MustCompile(`\((\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\)`)
)

// ParseSortKey returns the minute-of-day (0..1439) of the first
// "h:mm AM/PM" fragment found in label, or SortKeyMax if there is none.
func ParseSortKey(label string) int {
	m := clockRe.FindStringSubmatch(label)
	if m == nil {
		return SortKeyMax
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	period := strings.ToUpper(m[3])

	if period == "AM" && hours == 12 {
		hours = 0
	}
	if period == "PM" && hours != 12 {
		hours += 12
	}

	return hours*60 + minutes
}

// Format12Hour rewrites a parenthesized 24-hour range "(HH:MM - HH:MM)"
// inside label into 12-hour form "(H:MM AM - H:MM PM)". Labels without
// such a range are returned unchanged.
func Format12Hour(label string) string {
	m := rangeRe.FindStringSubmatchIndex(label)
	if m == nil {
		return label
	}

	part := func(i int) int {
		v, _ := strconv.Atoi(label[m[2*i]:m[2*i+1]])
		return v
	}

	from := to12Hour(part(1), part(2))
	to := to12Hour(part(3), part(4))

	return label[:m[0]] + "(" + from + " - " + to + ")" + label[m[1]:]
}

func to12Hour(hours, minutes int) string {
	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	h := hours % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minutes, period)
}

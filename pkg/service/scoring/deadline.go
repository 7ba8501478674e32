package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type relativePattern struct {
	re     *regexp.Regexp
	offset int
}

var relativePatterns = []relativePattern{
	{regexp.MustCompile(`\btoday\b`), 0},
	{regexp.MustCompile(`\btonigh?t\b`), 0},
	{regexp.MustCompile(`\bthis evening\b`), 0},
	{regexp.MustCompile(`\btomorrow\b`), 1},
	{regexp.MustCompile(`\bthis week\b`), 4},
	{regexp.MustCompile(`\bnext week\b`), 7},
	{regexp.MustCompile(`\bend of week\b`), 5},
	{regexp.MustCompile(`\bthis month\b`), 15},
	{regexp.MustCompile(`\bnext month\b`), 30},
}

type weekdayPattern struct {
	re     *regexp.Regexp
	target int // Monday=0
	next   bool
}

var weekdayPatterns = buildWeekdayPatterns()

func buildWeekdayPatterns() []weekdayPattern {
	names := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	var patterns []weekdayPattern
	for i, name := range names {
		patterns = append(patterns, weekdayPattern{
			re:     regexp.MustCompile(`\bnext\s+` + name + `\b`),
			target: i,
			next:   true,
		})
		patterns = append(patterns, weekdayPattern{
			re:     regexp.MustCompile(`\bthis\s+` + name + `\b`),
			target: i,
		})
	}
	// Bare weekday names, workdays only: "friday" alone is a deadline,
	// "saturday" alone usually is not.
	for i, name := range names[:5] {
		patterns = append(patterns, weekdayPattern{
			re:     regexp.MustCompile(`\b` + name + `\b`),
			target: i,
		})
	}
	return patterns
}

var endOfDayPattern = regexp.MustCompile(`(?i)\beod\b|\bcob\b|\bend of (day|business)\b|\bclose of business\b`)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var monthDayPattern = func() *regexp.Regexp {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		names = append(names, name)
	}
	// Longest alternatives first so "january" wins over "jan".
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if len(names[j]) > len(names[i]) {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	return regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
}()

var numericDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2})\b`),
	regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`),
}

// findDeadline extracts the earliest deadline date mentioned in text.
// text must already be lowercased. The returned time is midnight in now's
// location.
func findDeadline(text string, now time.Time) (time.Time, bool) {
	today := midnight(now)
	var found []time.Time

	for _, p := range relativePatterns {
		if p.re.MatchString(text) {
			found = append(found, today.AddDate(0, 0, p.offset))
		}
	}

	currentDay := mondayWeekday(now)
	for _, p := range weekdayPatterns {
		if !p.re.MatchString(text) {
			continue
		}
		ahead := (p.target - currentDay + 7) % 7
		if ahead == 0 && p.next {
			ahead = 7
		}
		found = append(found, today.AddDate(0, 0, ahead))
	}

	// EOD/COB means today if sent before close of business, else tomorrow.
	if endOfDayPattern.MatchString(text) {
		if now.Hour() < 17 {
			found = append(found, today)
		} else {
			found = append(found, today.AddDate(0, 0, 1))
		}
	}

	for _, m := range monthDayPattern.FindAllStringSubmatch(text, -1) {
		month := monthNames[m[1]]
		day, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if d, ok := makeDate(now.Year(), month, day, now.Location()); ok {
			if d.Before(today) {
				// Year-less dates in the past mean next year.
				d, ok = makeDate(now.Year()+1, month, day, now.Location())
				if !ok {
					continue
				}
			}
			found = append(found, d)
		}
	}

	for i, re := range numericDatePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			month, err1 := strconv.Atoi(m[1])
			day, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil {
				continue
			}

			year := now.Year()
			hasYear := i < 2
			if hasYear {
				year, err1 = strconv.Atoi(m[3])
				if err1 != nil {
					continue
				}
				if year < 100 {
					year += 2000
				}
			}

			d, ok := makeDate(year, time.Month(month), day, now.Location())
			if !ok {
				continue
			}
			if d.Before(today) && !hasYear {
				d, ok = makeDate(year+1, time.Month(month), day, now.Location())
				if !ok {
					continue
				}
			}
			found = append(found, d)
		}
	}

	if len(found) == 0 {
		return time.Time{}, false
	}

	earliest := found[0]
	for _, d := range found[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}
	return earliest, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayWeekday converts to the Monday=0 convention.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// makeDate validates the calendar date; time.Date normalizes out-of-range
// days, which would silently accept "February 30".
func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

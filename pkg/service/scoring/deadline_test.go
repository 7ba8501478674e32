package scoring_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/service/scoring"
)

func TestFindDeadline(t *testing.T) {
	// Wednesday morning.
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
	}

	cases := map[string]struct {
		text string
		want time.Time
	}{
		"today":                    {"please send the figures today", day(12)},
		"tonight":                  {"need this tonight", day(12)},
		"tomorrow":                 {"review due tomorrow", day(13)},
		"next week":                {"let's close this next week", day(19)},
		"end of week":              {"wrap up by end of week", day(17)},
		"bare friday":              {"report due friday", day(14)},
		"this friday":              {"submit by this friday", day(14)},
		"next monday":              {"kickoff next monday", day(17)},
		"eod before close":         {"need sign-off by eod", day(12)},
		"cob":                      {"respond by cob", day(12)},
		"month name":               {"contract expires march 20", day(20)},
		"month name ordinal":       {"due march 20th", day(20)},
		"past month rolls forward": {"renewal on february 15", time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
		"numeric mm/dd":            {"payment due 3/20", day(20)},
		"numeric mm/dd/yyyy":       {"audit on 03/20/2025", day(20)},
		"earliest wins":            {"draft tomorrow, final friday", day(13)},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := scoring.FindDeadline(tc.text, now)
			gt.Bool(t, ok).True()
			gt.Value(t, got).Equal(tc.want)
		})
	}

	t.Run("no deadline", func(t *testing.T) {
		_, ok := scoring.FindDeadline("thanks for the update, looks great", now)
		gt.Bool(t, ok).False()
	})

	t.Run("eod after close means next day", func(t *testing.T) {
		evening := time.Date(2025, 3, 12, 18, 30, 0, 0, time.UTC)
		got, ok := scoring.FindDeadline("need this by eod", evening)
		gt.Bool(t, ok).True()
		gt.Value(t, got).Equal(day(13))
	})

	t.Run("invalid calendar date ignored", func(t *testing.T) {
		_, ok := scoring.FindDeadline("see attachment february 30", now)
		gt.Bool(t, ok).False()
	})
}

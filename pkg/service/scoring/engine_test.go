package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/service/scoring"
)

type activityMock struct {
	countFunc func(ctx context.Context, conversationID string, since time.Time) (int, error)
}

func (m *activityMock) CountRecentInConversation(ctx context.Context, conversationID string, since time.Time) (int, error) {
	if m.countFunc == nil {
		return 0, nil
	}
	return m.countFunc(ctx, conversationID, since)
}

func testProfile() *model.TriageProfile {
	p := model.DefaultProfile()
	p.UserEmail = "harley@acme.example"
	p.UserFirstName = "Harley"
	p.VIPSenders = []string{"boss@acme.example"}
	return p
}

var scoreNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func baseMessage() *model.Message {
	return &model.Message{
		ID:          1,
		FromAddress: "carol@acme.example",
		Subject:     "Notes from the sync",
		Body:        "Sharing the notes we discussed.",
		ReceivedAt:  scoreNow.Add(-time.Hour),
		Importance:  types.ImportanceNormal,
		Category:    types.CategoryActionRequired,
	}
}

func newEngine(t *testing.T, activity *activityMock) *scoring.Engine {
	t.Helper()
	var e *scoring.Engine
	var err error
	if activity != nil {
		e, err = scoring.NewEngine(testProfile(), activity)
	} else {
		e, err = scoring.NewEngine(testProfile(), nil)
	}
	gt.NoError(t, err)
	return e
}

func TestScoreSignals(t *testing.T) {
	e := newEngine(t, nil)

	t.Run("quiet internal message scores low", func(t *testing.T) {
		rec, err := e.Score(context.Background(), baseMessage(), scoreNow)
		gt.NoError(t, err)
		// Internal peer seniority (20 * .15) is the only contribution.
		gt.Value(t, rec.RawScore).Equal(3.0)
		gt.Value(t, rec.Score).Equal(3.0)
		gt.Bool(t, rec.FloorOverride).False()
		gt.Bool(t, rec.ForceToday).False()
		gt.Array(t, rec.Signals).Length(8)
	})

	t.Run("urgent external message with deadline", func(t *testing.T) {
		msg := baseMessage()
		msg.FromAddress = "client@partner.example"
		msg.Subject = "URGENT: contract needed today"
		msg.Importance = types.ImportanceHigh

		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		// deadline 100*.25 + external seniority 40*.15 + importance 80*.10
		// + urgency 90*.15 + external 50*.05 = 55.
		gt.Value(t, rec.RawScore).Equal(55.0)
	})

	t.Run("vip sender outranks external", func(t *testing.T) {
		msg := baseMessage()
		msg.FromAddress = "boss@acme.example"

		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		seniority := findSignal(t, rec, "sender_seniority")
		gt.Value(t, seniority.Raw).Equal(90.0)
	})

	t.Run("low importance subtracts", func(t *testing.T) {
		msg := baseMessage()
		msg.Importance = types.ImportanceLow

		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		flag := findSignal(t, rec, "importance_flag")
		gt.Value(t, flag.Raw).Equal(-20.0)
		// 20*.15 - 20*.10 = 1.0
		gt.Value(t, rec.RawScore).Equal(1.0)
	})

	t.Run("deprioritize language subtracts", func(t *testing.T) {
		msg := baseMessage()
		msg.Body = "No rush on this one, whenever works for you."

		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		lang := findSignal(t, rec, "urgency_language")
		gt.Value(t, lang.Raw).Equal(-10.0)
	})

	t.Run("followup overdue only for time sensitive", func(t *testing.T) {
		msg := baseMessage()
		msg.Subject = "Reminder: report was due 03/10/2025"
		msg.Category = types.CategoryTimeSensitive

		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		overdue := findSignal(t, rec, "followup_overdue")
		// Two days past the stated deadline.
		gt.Value(t, overdue.Raw).Equal(30.0)

		msg.Category = types.CategoryActionRequired
		rec, err = e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		overdue = findSignal(t, rec, "followup_overdue")
		gt.Value(t, overdue.Raw).Equal(0.0)
	})

	t.Run("age tiers", func(t *testing.T) {
		cases := map[string]struct {
			age  time.Duration
			want float64
		}{
			"under two hours": {time.Hour, 0},
			"same day":        {6 * time.Hour, 10},
			"overnight":       {18 * time.Hour, 20},
			"next day":        {30 * time.Hour, 30},
			"several days":    {100 * time.Hour, 40},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				msg := baseMessage()
				msg.ReceivedAt = scoreNow.Add(-tc.age)
				rec, err := e.Score(context.Background(), msg, scoreNow)
				gt.NoError(t, err)
				age := findSignal(t, rec, "age_of_message")
				gt.Value(t, age.Raw).Equal(tc.want)
			})
		}
	})
}

func TestScoreThreadVelocity(t *testing.T) {
	cases := map[string]struct {
		count int
		want  float64
	}{
		"no activity":  {0, 0},
		"one reply":    {1, 20},
		"two replies":  {2, 40},
		"three":        {3, 60},
		"five or more": {7, 80},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			activity := &activityMock{
				countFunc: func(ctx context.Context, conversationID string, since time.Time) (int, error) {
					gt.Value(t, conversationID).Equal("conv-42")
					gt.Value(t, since).Equal(scoreNow.Add(-24 * time.Hour))
					return tc.count, nil
				},
			}
			e := newEngine(t, activity)

			msg := baseMessage()
			msg.ConversationID = "conv-42"
			rec, err := e.Score(context.Background(), msg, scoreNow)
			gt.NoError(t, err)
			velocity := findSignal(t, rec, "thread_velocity")
			gt.Value(t, velocity.Raw).Equal(tc.want)
		})
	}

	t.Run("lookup failure zeroes the signal", func(t *testing.T) {
		activity := &activityMock{
			countFunc: func(context.Context, string, time.Time) (int, error) {
				return 0, goerr.New("store unavailable")
			},
		}
		e := newEngine(t, activity)

		msg := baseMessage()
		msg.ConversationID = "conv-42"
		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		velocity := findSignal(t, rec, "thread_velocity")
		gt.Value(t, velocity.Raw).Equal(0.0)
	})
}

func TestScoreStaleEscalation(t *testing.T) {
	e := newEngine(t, nil)

	t.Run("eight days stale adds cumulative bonus", func(t *testing.T) {
		msg := baseMessage()
		msg.ReceivedAt = scoreNow.Add(-8 * 24 * time.Hour)

		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		gt.Value(t, rec.StaleDays).Equal(8)
		// Four days at +2, two at +5, two at +10.
		gt.Value(t, rec.StaleBonus).Equal(38)
		// Raw: seniority 20*.15 + age 40*.10 = 7.
		gt.Value(t, rec.RawScore).Equal(7.0)
		gt.Value(t, rec.Score).Equal(45.0)
		gt.Bool(t, rec.ForceToday).False()
	})

	t.Run("past eleven days forces today", func(t *testing.T) {
		msg := baseMessage()
		msg.ReceivedAt = scoreNow.Add(-12 * 24 * time.Hour)

		rec, err := e.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		gt.Bool(t, rec.ForceToday).True()
		gt.Value(t, rec.Score).Equal(100.0)
		gt.Bool(t, rec.FloorOverride).True()
	})

	t.Run("disabled escalation leaves score untouched", func(t *testing.T) {
		profile := testProfile()
		profile.Schedule.StaleEscalation = false
		engine, err := scoring.NewEngine(profile, nil)
		gt.NoError(t, err)

		msg := baseMessage()
		msg.ReceivedAt = scoreNow.Add(-8 * 24 * time.Hour)

		rec, err := engine.Score(context.Background(), msg, scoreNow)
		gt.NoError(t, err)
		gt.Value(t, rec.StaleBonus).Equal(0)
		gt.Value(t, rec.Score).Equal(rec.RawScore)
	})
}

func TestScoreFloor(t *testing.T) {
	profile := testProfile()
	profile.Schedule.UrgencyFloor = 50
	e, err := scoring.NewEngine(profile, nil)
	gt.NoError(t, err)

	msg := baseMessage()
	msg.FromAddress = "client@partner.example"
	msg.Subject = "URGENT: contract needed today"
	msg.Importance = types.ImportanceHigh

	rec, err := e.Score(context.Background(), msg, scoreNow)
	gt.NoError(t, err)
	gt.Value(t, rec.Score).Equal(55.0)
	gt.Bool(t, rec.FloorOverride).True()
}

func TestScoreDeterministic(t *testing.T) {
	e := newEngine(t, nil)
	msg := baseMessage()
	msg.Subject = "Please review by friday"

	first, err := e.Score(context.Background(), msg, scoreNow)
	gt.NoError(t, err)
	second, err := e.Score(context.Background(), msg, scoreNow)
	gt.NoError(t, err)
	gt.Value(t, second).Equal(first)
}

func findSignal(t *testing.T, rec *model.UrgencyRecord, name string) model.SignalScore {
	t.Helper()
	for _, s := range rec.Signals {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("signal %s not found", name)
	return model.SignalScore{}
}

// Package scoring implements the urgency scorer: eight weighted signals
// combined into a 0-100 score, with stale escalation and an urgency floor
// deciding which messages bypass the daily capacity limit.
package scoring

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/utils/logging"
)

// Signal names in evaluation order. The breakdown stored on the record
// follows this order.
const (
	SignalExplicitDeadline = "explicit_deadline"
	SignalSenderSeniority  = "sender_seniority"
	SignalImportanceFlag   = "importance_flag"
	SignalUrgencyLanguage  = "urgency_language"
	SignalThreadVelocity   = "thread_velocity"
	SignalClientExternal   = "client_external"
	SignalAge              = "age_of_message"
	SignalFollowupOverdue  = "followup_overdue"
)

var signalWeights = map[string]float64{
	SignalExplicitDeadline: 0.25,
	SignalSenderSeniority:  0.15,
	SignalImportanceFlag:   0.10,
	SignalUrgencyLanguage:  0.15,
	SignalThreadVelocity:   0.10,
	SignalClientExternal:   0.05,
	SignalAge:              0.10,
	SignalFollowupOverdue:  0.10,
}

const (
	velocityWindow = 24 * time.Hour
	bodyScanLimit  = 1000
	forceTodayDays = 11
)

// Engine scores Work messages. It is deterministic given (message, now)
// apart from the thread velocity lookup.
type Engine struct {
	profile  *model.TriageProfile
	settings model.ScheduleSettings
	activity interfaces.ThreadActivity

	strong       []*regexp.Regexp
	medium       []*regexp.Regexp
	deprioritize []*regexp.Regexp
}

// NewEngine creates a scoring engine. activity may be nil; the thread
// velocity signal then scores zero.
func NewEngine(profile *model.TriageProfile, activity interfaces.ThreadActivity) (*Engine, error) {
	e := &Engine{
		profile:  profile,
		settings: profile.Schedule,
		activity: activity,
	}

	var err error
	if e.strong, err = compilePatterns(profile.Urgency.Strong); err != nil {
		return nil, goerr.Wrap(err, "invalid strong urgency pattern")
	}
	if e.medium, err = compilePatterns(profile.Urgency.Medium); err != nil {
		return nil, goerr.Wrap(err, "invalid medium urgency pattern")
	}
	if e.deprioritize, err = compilePatterns(profile.Urgency.Deprioritize); err != nil {
		return nil, goerr.Wrap(err, "invalid deprioritize pattern")
	}

	return e, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	re := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compile pattern", goerr.V("pattern", p))
		}
		re = append(re, compiled)
	}
	return re, nil
}

// Score computes the urgency record for a message at the given instant.
func (e *Engine) Score(ctx context.Context, msg *model.Message, now time.Time) (*model.UrgencyRecord, error) {
	signals := []model.SignalScore{
		e.signal(SignalExplicitDeadline, e.explicitDeadline(msg, now)),
		e.signal(SignalSenderSeniority, e.senderSeniority(msg)),
		e.signal(SignalImportanceFlag, importanceFlag(msg)),
		e.signal(SignalUrgencyLanguage, e.urgencyLanguage(msg)),
		e.signal(SignalThreadVelocity, e.threadVelocity(ctx, msg, now)),
		e.signal(SignalClientExternal, e.clientExternal(msg)),
		e.signal(SignalAge, messageAge(msg, now)),
		e.signal(SignalFollowupOverdue, e.followupOverdue(msg, now)),
	}

	var weightedSum float64
	for _, s := range signals {
		weightedSum += s.Weighted
	}
	rawScore := round2(clamp(weightedSum, 0, 100))

	rec := &model.UrgencyRecord{
		MessageID: msg.ID,
		RawScore:  rawScore,
		Score:     rawScore,
		Signals:   signals,
		ScoredAt:  now,
	}
	e.applyStaleEscalation(rec, msg, now)
	rec.FloorOverride = rec.Score >= e.settings.UrgencyFloor

	return rec, nil
}

func (e *Engine) signal(name string, raw float64) model.SignalScore {
	weight := signalWeights[name]
	return model.SignalScore{
		Name:     name,
		Raw:      raw,
		Weight:   weight,
		Weighted: round2(raw * weight),
	}
}

// explicitDeadline maps days-until-deadline to urgency: today or overdue is
// maximal and it tails off toward 10 at a week or more out.
func (e *Engine) explicitDeadline(msg *model.Message, now time.Time) float64 {
	deadline, ok := findDeadline(scanText(msg), now)
	if !ok {
		return 0
	}

	days := daysBetween(midnight(now), deadline)
	switch {
	case days <= 0:
		return 100
	case days == 1:
		return 85
	case days == 2:
		return 70
	case days == 3:
		return 55
	case days <= 5:
		return 40
	case days <= 7:
		return 25
	default:
		return 10
	}
}

func (e *Engine) senderSeniority(msg *model.Message) float64 {
	if msg.FromAddress == "" {
		return 10
	}
	if e.profile.IsVIP(msg.FromAddress) {
		return 90
	}
	domain := msg.SenderDomain()
	switch {
	case domain == "":
		return 10
	case domain != e.profile.Domain():
		return 40
	default:
		return 20
	}
}

func importanceFlag(msg *model.Message) float64 {
	switch msg.Importance {
	case types.ImportanceHigh:
		return 80
	case types.ImportanceLow:
		return -20
	default:
		return 0
	}
}

// urgencyLanguage weighs the subject double so a screaming subject line
// outranks a buried keyword.
func (e *Engine) urgencyLanguage(msg *model.Message) float64 {
	body := msg.Body
	if len(body) > 500 {
		body = body[:500]
	}
	text := msg.Subject + " " + msg.Subject + " " + msg.BodyPreview + " " + body

	if matchAny(text, e.strong) {
		return 90
	}
	if matchAny(text, e.medium) {
		return 60
	}
	if matchAny(text, e.deprioritize) {
		return -10
	}
	return 0
}

func (e *Engine) threadVelocity(ctx context.Context, msg *model.Message, now time.Time) float64 {
	if e.activity == nil || msg.ConversationID == "" {
		return 0
	}
	count, err := e.activity.CountRecentInConversation(ctx, msg.ConversationID, now.Add(-velocityWindow))
	if err != nil {
		// A broken lookup zeroes the signal rather than failing the score.
		logging.From(ctx).Warn("thread velocity lookup failed",
			"message_id", msg.ID,
			"conversation_id", msg.ConversationID,
			"error", err,
		)
		return 0
	}

	switch {
	case count >= 5:
		return 80
	case count >= 3:
		return 60
	case count == 2:
		return 40
	case count == 1:
		return 20
	default:
		return 0
	}
}

func (e *Engine) clientExternal(msg *model.Message) float64 {
	domain := msg.SenderDomain()
	if domain == "" {
		return 0
	}
	if domain != e.profile.Domain() {
		return 50
	}
	return 0
}

func messageAge(msg *model.Message, now time.Time) float64 {
	if msg.ReceivedAt.IsZero() {
		return 0
	}
	hours := now.Sub(msg.ReceivedAt).Hours()
	switch {
	case hours < 2:
		return 0
	case hours < 12:
		return 10
	case hours < 24:
		return 20
	case hours < 48:
		return 30
	default:
		return 40
	}
}

// followupOverdue only applies to time-sensitive messages whose stated
// deadline has already passed.
func (e *Engine) followupOverdue(msg *model.Message, now time.Time) float64 {
	if msg.Category != types.CategoryTimeSensitive {
		return 0
	}
	deadline, ok := findDeadline(scanText(msg), now)
	if !ok {
		return 0
	}
	overdue := daysBetween(deadline, midnight(now))
	if overdue <= 0 {
		return 0
	}
	return clamp(float64(overdue)*15, 0, 100)
}

// applyStaleEscalation adds a progressive per-day bonus so old unhandled
// messages keep climbing: +2/day for the first four days, +5/day for the
// next two, +10/day after that. From day 11 the message is forced to Today
// outright.
func (e *Engine) applyStaleEscalation(rec *model.UrgencyRecord, msg *model.Message, now time.Time) {
	if !e.settings.StaleEscalation || msg.ReceivedAt.IsZero() {
		return
	}

	staleDays := int(now.Sub(msg.ReceivedAt).Hours() / 24)
	if staleDays <= 0 {
		return
	}
	rec.StaleDays = staleDays

	if staleDays >= forceTodayDays {
		rec.ForceToday = true
		rec.StaleBonus = int(100 - rec.RawScore)
		rec.Score = 100
		return
	}

	bonus := 0
	for day := 0; day < staleDays; day++ {
		switch {
		case day <= 3:
			bonus += 2
		case day <= 5:
			bonus += 5
		default:
			bonus += 10
		}
	}
	rec.StaleBonus = bonus
	rec.Score = clamp(rec.RawScore+float64(bonus), 0, 100)
}

func scanText(msg *model.Message) string {
	body := msg.Body
	if len(body) > bodyScanLimit {
		body = body[:bodyScanLimit]
	}
	return strings.ToLower(msg.Subject + " " + msg.BodyPreview + " " + body)
}

func matchAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package rule implements the pattern-based first stage of the triage
// pipeline. It routes obvious Other-group messages (marketing, notifications,
// calendar invites, travel, FYI) by fixed-precedence rules and leaves
// everything else for the later stages.
package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// Match is a successful rule classification. Confidence is a fixed per-rule
// constant, not computed dynamically.
type Match struct {
	Category   types.Category
	Rule       string
	Confidence float64
}

var (
	calendarSubjectPatterns = compileAll(
		`^invitation:`, `^updated invitation:`, `^canceled:`, `^accepted:`,
		`^declined:`, `^tentative:`, `meeting invitation`, `event invitation`,
	)

	marketingSenderPatterns = compileAll(
		`^noreply@`, `^no-reply@`, `^marketing@`, `^newsletter@`,
		`^promotions@`, `^deals@`, `^offers@`,
	)

	notificationSenderPatterns = compileAll(
		`^noreply@`, `^no-reply@`, `^notifications@`, `^alerts@`,
		`^donotreply@`, `^mailer-daemon@`, `^no_reply@`,
	)

	notificationSubjectPatterns = compileAll(
		`your order`, `shipping update`, `password reset`, `security alert`,
		`verification code`, `new sign-in`, `account activity`,
		`confirm your email`, `reset your password`,
	)

	marketingSubjectKeywords = []string{
		"unsubscribe", "% off", "percent off", "limited time", "sale",
		"deal", "promo code", "free shipping", "discount", "save now",
		"special offer",
	}

	travelSubjectKeywords = []string{
		"booking confirmation", "itinerary", "flight confirmation",
		"check-in", "reservation", "trip summary", "boarding pass",
		"e-ticket", "hotel confirmation",
	}
)

func compileAll(patterns ...string) []*regexp.Regexp {
	re := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re = append(re, regexp.MustCompile(p))
	}
	return re
}

// Classifier applies the deterministic rule tiers. It is pure and safe for
// concurrent use across messages; the caller records the resulting
// ClassificationEvent.
type Classifier struct {
	profile *model.TriageProfile
	urgency []*regexp.Regexp
}

// New creates a rule classifier for the given profile.
func New(profile *model.TriageProfile) (*Classifier, error) {
	urgency, err := compileProfilePatterns(append(
		append([]string{}, profile.Urgency.Strong...),
		profile.Urgency.Medium...,
	))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid urgency keyword pattern")
	}

	return &Classifier{
		profile: profile,
		urgency: urgency,
	}, nil
}

func compileProfilePatterns(patterns []string) ([]*regexp.Regexp, error) {
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

// Classify evaluates the rules in fixed precedence and returns the first
// match, or false if the message needs a later stage. Only Other-group
// categories (6-11) are ever assigned here.
func (c *Classifier) Classify(msg *model.Message) (*Match, bool) {
	checks := []func(*model.Message) *Match{
		c.checkCalendar,
		c.checkMarketing,
		c.checkTravel,
		c.checkNotification,
		c.checkFYI,
	}
	for _, check := range checks {
		if m := check(msg); m != nil {
			return m, true
		}
	}
	return nil, false
}

// checkCalendar routes calendar invites. The MIME marker is the most
// reliable signal, then subject patterns, then known calendar senders.
func (c *Classifier) checkCalendar(msg *model.Message) *Match {
	body := strings.ToLower(msg.Body)
	if strings.Contains(body, "text/calendar") || strings.Contains(body, ".ics") {
		return &Match{
			Category:   types.CategoryCalendar,
			Rule:       "calendar MIME type or .ics attachment detected",
			Confidence: 0.95,
		}
	}

	if pattern, ok := matchPattern(msg.Subject, calendarSubjectPatterns); ok {
		return &Match{
			Category:   types.CategoryCalendar,
			Rule:       fmt.Sprintf("calendar subject pattern: %s", pattern),
			Confidence: 0.90,
		}
	}

	from := strings.ToLower(msg.FromAddress)
	for _, sender := range c.profile.CalendarSenders {
		if from == strings.ToLower(sender) {
			return &Match{
				Category:   types.CategoryCalendar,
				Rule:       fmt.Sprintf("calendar system sender: %s", msg.FromAddress),
				Confidence: 0.90,
			}
		}
	}

	return nil
}

// checkMarketing routes promotional mail. Travel and notification domains
// are skipped here so their dedicated rules can claim them.
func (c *Classifier) checkMarketing(msg *model.Message) *Match {
	domain := msg.SenderDomain()
	if containsDomain(c.profile.TravelDomains, domain) || containsDomain(c.profile.NotificationDomains, domain) {
		return nil
	}

	for name := range msg.Headers {
		if strings.EqualFold(name, "List-Unsubscribe") {
			return &Match{
				Category:   types.CategoryMarketing,
				Rule:       "List-Unsubscribe header present",
				Confidence: 0.95,
			}
		}
	}

	if pattern, ok := matchPattern(msg.FromAddress, marketingSenderPatterns); ok {
		// noreply@ is common for notifications too; only claim the message
		// when the subject does not look like one.
		if _, isNotification := matchPattern(msg.Subject, notificationSubjectPatterns); !isNotification {
			return &Match{
				Category:   types.CategoryMarketing,
				Rule:       fmt.Sprintf("marketing sender pattern: %s", pattern),
				Confidence: 0.85,
			}
		}
	}

	if containsDomain(c.profile.MarketingDomains, domain) {
		return &Match{
			Category:   types.CategoryMarketing,
			Rule:       fmt.Sprintf("marketing platform domain: %s", domain),
			Confidence: 0.90,
		}
	}

	if keyword, ok := containsKeyword(msg.Subject, marketingSubjectKeywords); ok {
		return &Match{
			Category:   types.CategoryMarketing,
			Rule:       fmt.Sprintf("marketing keyword in subject: %s", keyword),
			Confidence: 0.85,
		}
	}

	return nil
}

func (c *Classifier) checkTravel(msg *model.Message) *Match {
	domain := msg.SenderDomain()
	if containsDomain(c.profile.TravelDomains, domain) {
		return &Match{
			Category:   types.CategoryTravel,
			Rule:       fmt.Sprintf("travel domain: %s", domain),
			Confidence: 0.90,
		}
	}

	if keyword, ok := containsKeyword(msg.Subject, travelSubjectKeywords); ok {
		return &Match{
			Category:   types.CategoryTravel,
			Rule:       fmt.Sprintf("travel keyword in subject: %s", keyword),
			Confidence: 0.85,
		}
	}

	return nil
}

// checkNotification routes system-generated mail. A message addressed only to
// the user that carries urgency language is deliberately not claimed: it may
// be directed work hiding behind a noreply sender.
func (c *Classifier) checkNotification(msg *model.Message) *Match {
	excluded := msg.IsSoleRecipient(c.profile.UserEmail) && c.hasUrgencyLanguage(msg)

	if pattern, ok := matchPattern(msg.FromAddress, notificationSenderPatterns); ok {
		if excluded {
			return nil
		}
		return &Match{
			Category:   types.CategoryNotification,
			Rule:       fmt.Sprintf("notification sender pattern: %s", pattern),
			Confidence: 0.85,
		}
	}

	if containsDomain(c.profile.NotificationDomains, msg.SenderDomain()) {
		if excluded {
			return nil
		}
		return &Match{
			Category:   types.CategoryNotification,
			Rule:       fmt.Sprintf("notification domain: %s", msg.SenderDomain()),
			Confidence: 0.88,
		}
	}

	if pattern, ok := matchPattern(msg.Subject, notificationSubjectPatterns); ok {
		return &Match{
			Category:   types.CategoryNotification,
			Rule:       fmt.Sprintf("notification subject pattern: %s", pattern),
			Confidence: 0.85,
		}
	}

	return nil
}

// checkFYI routes mail where the user is an onlooker: CC-only, or one of a
// large To list. Urgency language and a direct name mention both disqualify.
func (c *Classifier) checkFYI(msg *model.Message) *Match {
	if c.hasUrgencyLanguage(msg) || c.mentionsUserByName(msg) {
		return nil
	}

	if msg.InCcOnly(c.profile.UserEmail) {
		return &Match{
			Category:   types.CategoryFYI,
			Rule:       "user in CC field only",
			Confidence: 0.88,
		}
	}

	if len(msg.ToRecipients) >= 3 {
		return &Match{
			Category:   types.CategoryFYI,
			Rule:       fmt.Sprintf("group message with %d recipients", len(msg.ToRecipients)),
			Confidence: 0.85,
		}
	}

	return nil
}

func (c *Classifier) hasUrgencyLanguage(msg *model.Message) bool {
	text := msg.Subject + " " + msg.BodyPreview + " " + msg.Body
	for _, re := range c.urgency {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (c *Classifier) mentionsUserByName(msg *model.Message) bool {
	name := c.profile.UserFirstName
	if name == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(msg.Body)
}

func matchPattern(text string, patterns []*regexp.Regexp) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, re := range patterns {
		if re.MatchString(lower) {
			return re.String(), true
		}
	}
	return "", false
}

func containsKeyword(text string, keywords []string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

func containsDomain(domains []string, domain string) bool {
	if domain == "" {
		return false
	}
	for _, d := range domains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}

// Package override implements the second triage stage: a safety net that
// catches directed work hiding inside an Other classification. It never
// assigns a Work category itself; a trigger only sends the message back to
// the semantic stage.
package override

import (
	"context"
	"fmt"
	"regexp"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// Result describes a fired trigger.
type Result struct {
	Trigger types.OverrideTrigger
	Reason  string
}

// Low-priority (10) is exempt: a sender already marked low priority should
// not bounce back into the work pipeline on keyword noise.
var eligibleCategories = map[types.Category]bool{
	types.CategoryMarketing:    true,
	types.CategoryNotification: true,
	types.CategoryCalendar:     true,
	types.CategoryFYI:          true,
	types.CategoryTravel:       true,
}

// Evaluator checks the five override triggers against a rule-classified
// message. Reply-chain lookups go through the injected ConversationHistory.
type Evaluator struct {
	profile      *model.TriageProfile
	history      interfaces.ConversationHistory
	strong       []*regexp.Regexp
	medium       []*regexp.Regexp
	deprioritize []*regexp.Regexp
	directAddr   []*regexp.Regexp
}

// New creates an evaluator. history may be nil, in which case the
// reply-chain trigger is skipped.
func New(profile *model.TriageProfile, history interfaces.ConversationHistory) (*Evaluator, error) {
	e := &Evaluator{
		profile: profile,
		history: history,
	}

	var err error
	if e.strong, err = compileAll(profile.Urgency.Strong); err != nil {
		return nil, goerr.Wrap(err, "invalid strong urgency pattern")
	}
	if e.medium, err = compileAll(profile.Urgency.Medium); err != nil {
		return nil, goerr.Wrap(err, "invalid medium urgency pattern")
	}
	if e.deprioritize, err = compileAll(profile.Urgency.Deprioritize); err != nil {
		return nil, goerr.Wrap(err, "invalid deprioritize pattern")
	}
	e.directAddr = directAddressPatterns(profile.UserFirstName)

	return e, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
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

func directAddressPatterns(firstName string) []*regexp.Regexp {
	if firstName == "" {
		return nil
	}
	name := regexp.QuoteMeta(firstName)
	raw := []string{
		`\b` + name + `,\s+(can|could|would|will|please)`,
		`hi\s+` + name + `,`,
		`hello\s+` + name + `,`,
		`hey\s+` + name + `,`,
		name + `\s*[-:]\s*(can|could|would|will|please)`,
		`@` + name + `\b`,
	}
	re := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		re = append(re, regexp.MustCompile(`(?i)`+p))
	}
	return re
}

// Evaluate runs the triggers in strict priority and returns the first that
// fires. Categories outside the eligible set never trigger. The error is
// non-nil only for history lookup failures.
func (e *Evaluator) Evaluate(ctx context.Context, msg *model.Message, category types.Category) (*Result, error) {
	if !eligibleCategories[category] {
		return nil, nil
	}

	if r := e.checkUrgencyLanguage(msg); r != nil {
		return r, nil
	}
	if r := e.checkVIPSender(msg); r != nil {
		return r, nil
	}
	if r := e.checkSoleRecipientMismatch(msg, category); r != nil {
		return r, nil
	}
	r, err := e.checkReplyChain(ctx, msg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check reply chain", goerr.V("message_id", msg.ID))
	}
	if r != nil {
		return r, nil
	}
	if r := e.checkDirectAddress(msg); r != nil {
		return r, nil
	}

	return nil, nil
}

// checkUrgencyLanguage fires on strong or medium urgency vocabulary, unless
// the text also carries explicit deprioritizing language ("no rush"), which
// wins and suppresses the trigger.
func (e *Evaluator) checkUrgencyLanguage(msg *model.Message) *Result {
	text := msg.Subject + " " + msg.Body
	matched := firstMatch(text, e.strong)
	if matched == "" {
		matched = firstMatch(text, e.medium)
	}
	if matched == "" {
		return nil
	}
	if firstMatch(text, e.deprioritize) != "" {
		return nil
	}
	return &Result{
		Trigger: types.TriggerUrgencyLanguage,
		Reason:  fmt.Sprintf("contains urgency language: %q", matched),
	}
}

func (e *Evaluator) checkVIPSender(msg *model.Message) *Result {
	if !e.profile.IsVIP(msg.FromAddress) {
		return nil
	}
	return &Result{
		Trigger: types.TriggerVIPSender,
		Reason:  fmt.Sprintf("message from VIP sender: %s", msg.FromAddress),
	}
}

// checkSoleRecipientMismatch applies to FYI only: being the lone To
// recipient contradicts an onlooker classification.
func (e *Evaluator) checkSoleRecipientMismatch(msg *model.Message, category types.Category) *Result {
	if category != types.CategoryFYI {
		return nil
	}
	if !msg.IsSoleRecipient(e.profile.UserEmail) {
		return nil
	}
	return &Result{
		Trigger: types.TriggerSoleRecipient,
		Reason:  "sole To recipient but classified as FYI, likely needs action",
	}
}

func (e *Evaluator) checkReplyChain(ctx context.Context, msg *model.Message) (*Result, error) {
	if e.history == nil || msg.ConversationID == "" {
		return nil, nil
	}
	participated, err := e.history.HasPriorOutboundMessage(ctx, msg.ConversationID)
	if err != nil {
		return nil, err
	}
	if !participated {
		return nil, nil
	}
	return &Result{
		Trigger: types.TriggerReplyChain,
		Reason:  "user previously participated in this conversation thread",
	}, nil
}

func (e *Evaluator) checkDirectAddress(msg *model.Message) *Result {
	for _, re := range e.directAddr {
		if m := re.FindString(msg.Body); m != "" {
			return &Result{
				Trigger: types.TriggerDirectAddress,
				Reason:  fmt.Sprintf("message directly addresses user: %q", m),
			}
		}
	}
	return nil
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

package usecase

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/service/override"
	"github.com/harleysato/mailtriage/pkg/service/rule"
	"github.com/harleysato/mailtriage/pkg/service/scoring"
)

// UseCases wires the triage stages to the repository and exposes the
// pipeline operations.
type UseCases struct {
	repo     interfaces.Repository
	profile  *model.TriageProfile
	ruler    *rule.Classifier
	vetoer   *override.Evaluator
	scorer   *scoring.Engine
	semantic interfaces.SemanticClassifier

	semanticLimit int
	semanticDelay time.Duration
	now           func() time.Time
}

// Option is a functional option for UseCases configuration.
type Option func(*UseCases)

// WithSemanticClassifier enables the third triage stage. Without it the
// pipeline runs rule-only and unresolved messages stay unclassified.
func WithSemanticClassifier(sc interfaces.SemanticClassifier) Option {
	return func(uc *UseCases) {
		uc.semantic = sc
	}
}

// WithSemanticLimit bounds concurrent semantic classifier calls.
func WithSemanticLimit(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.semanticLimit = n
		}
	}
}

// WithSemanticDelay sets the minimum spacing between semantic classifier
// calls.
func WithSemanticDelay(d time.Duration) Option {
	return func(uc *UseCases) {
		if d >= 0 {
			uc.semanticDelay = d
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// New builds the use case layer. The rule classifier, override evaluator,
// and urgency scorer are constructed here from the profile; the reply-chain
// and thread-velocity capabilities are backed by the repository.
func New(repo interfaces.Repository, profile *model.TriageProfile, opts ...Option) (*UseCases, error) {
	if repo == nil {
		return nil, goerr.New("repository is required")
	}
	if profile == nil {
		return nil, goerr.New("triage profile is required")
	}
	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid triage profile")
	}

	uc := &UseCases{
		repo:          repo,
		profile:       profile,
		semanticLimit: 1,
		semanticDelay: 500 * time.Millisecond,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	ruler, err := rule.New(profile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build rule classifier")
	}
	uc.ruler = ruler

	vetoer, err := override.New(profile, &conversationHistory{
		messages:  repo.Message(),
		userEmail: profile.UserEmail,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build override evaluator")
	}
	uc.vetoer = vetoer

	scorer, err := scoring.NewEngine(profile, &threadActivity{messages: repo.Message()})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build urgency scorer")
	}
	uc.scorer = scorer

	return uc, nil
}

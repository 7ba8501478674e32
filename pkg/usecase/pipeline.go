package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/service/assign"
	"github.com/harleysato/mailtriage/pkg/utils/logging"
)

const (
	// Messages older than this are left alone even if unclassified.
	maxMessageAge = 45 * 24 * time.Hour

	// Messages with a classification event newer than this are not picked up
	// again, so repeated runs do not thrash recent decisions.
	reclassifyGuard = 3 * 24 * time.Hour
)

// RunPipeline executes the full triage pipeline: candidate selection, rule
// classification with immediate override evaluation, semantic classification
// of the remainder, urgency scoring of all Work messages, and due date
// assignment. Per-message failures are counted in the report and never abort
// the batch; only context cancellation and repository-level failures do.
func (uc *UseCases) RunPipeline(ctx context.Context) (*model.PipelineReport, error) {
	started := uc.now()
	report := &model.PipelineReport{
		RunID:     uuid.NewString(),
		StartedAt: started,
		Rule: model.RulePhaseReport{
			Breakdown: map[types.Category]int{},
		},
		Override: model.OverridePhaseReport{
			ByTrigger: map[types.OverrideTrigger]int{},
		},
		Semantic: model.SemanticPhaseReport{
			Breakdown: map[types.Category]int{},
		},
	}
	logger := logging.From(ctx).With("run_id", report.RunID)
	ctx = logging.With(ctx, logger)

	candidates, err := uc.selectCandidates(ctx, started)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select pipeline candidates")
	}
	report.TotalMessages = len(candidates)

	remainder, err := uc.runRulePhase(ctx, candidates, report)
	if err != nil {
		return nil, err
	}

	if err := uc.runSemanticPhase(ctx, remainder, report); err != nil {
		return nil, err
	}

	records, err := uc.runScoringPhase(ctx, started, report)
	if err != nil {
		return nil, err
	}

	if err := uc.runAssignmentPhase(ctx, records, started, report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(started)
	logger.Info("pipeline completed",
		"total", report.TotalMessages,
		"rule_classified", report.Rule.Classified,
		"overridden", report.Override.Overridden,
		"semantic_classified", report.Semantic.Classified,
		"scored", report.Scoring.Scored,
		"assigned", report.Assignment.Assigned,
		"duration", report.Duration,
	)
	return report, nil
}

// selectCandidates picks unclassified messages that are not stale (over 45
// days old) and have no classification event in the last three days.
func (uc *UseCases) selectCandidates(ctx context.Context, now time.Time) ([]*model.Message, error) {
	msgs, err := uc.repo.Message().List(ctx,
		interfaces.WithStatus(types.StatusUnclassified),
		interfaces.WithReceivedAfter(now.Add(-maxMessageAge)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list unclassified messages")
	}

	recent, err := uc.repo.ClassificationEvent().ListSince(ctx, now.Add(-reclassifyGuard))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recent classification events")
	}
	recentIDs := make(map[int64]bool, len(recent))
	for _, ev := range recent {
		recentIDs[ev.MessageID] = true
	}

	candidates := make([]*model.Message, 0, len(msgs))
	for _, msg := range msgs {
		if recentIDs[msg.ID] {
			continue
		}
		candidates = append(candidates, msg)
	}
	return candidates, nil
}

// runRulePhase classifies candidates with the rule stage and evaluates the
// override stage on every match. Returns the messages left for the semantic
// stage: rule misses plus overridden matches.
func (uc *UseCases) runRulePhase(ctx context.Context, candidates []*model.Message, report *model.PipelineReport) ([]*model.Message, error) {
	phaseStart := time.Now()
	defer func() {
		report.Rule.Duration = time.Since(phaseStart)
	}()
	report.Rule.Candidates = len(candidates)

	var remainder []*model.Message
	for _, msg := range candidates {
		match, ok := uc.ruler.Classify(msg)
		if !ok {
			remainder = append(remainder, msg)
			continue
		}

		report.Override.Checked++
		veto, err := uc.vetoer.Evaluate(ctx, msg, match.Category)
		if err != nil {
			// Inconclusive override check keeps the rule classification.
			logging.From(ctx).Warn("override evaluation failed",
				"message_id", msg.ID, "error", err)
		}

		if veto != nil {
			report.Override.Overridden++
			report.Override.ByTrigger[veto.Trigger]++
			if _, err := uc.repo.OverrideEvent().Append(ctx, &model.OverrideEvent{
				MessageID:        msg.ID,
				OriginalCategory: match.Category,
				Trigger:          veto.Trigger,
				Reason:           veto.Reason,
				CreatedAt:        uc.now(),
			}); err != nil {
				return nil, goerr.Wrap(err, "failed to append override event",
					goerr.V("message_id", msg.ID))
			}
			remainder = append(remainder, msg)
			continue
		}

		if err := uc.commitClassification(ctx, msg, match.Category, match.Confidence, match.Rule, types.SourceRule); err != nil {
			return nil, err
		}
		report.Rule.Classified++
		report.Rule.Breakdown[match.Category]++
	}
	return remainder, nil
}

type semanticOutcome struct {
	category types.Category
	degraded bool
	failed   bool
}

// runSemanticPhase classifies the remainder through the LLM stage with
// bounded concurrency and a fixed inter-call delay. Skipped entirely when no
// semantic classifier is configured.
func (uc *UseCases) runSemanticPhase(ctx context.Context, remainder []*model.Message, report *model.PipelineReport) error {
	phaseStart := time.Now()
	defer func() {
		report.Semantic.Duration = time.Since(phaseStart)
	}()

	if uc.semantic == nil || len(remainder) == 0 {
		return nil
	}

	outcomes := make([]semanticOutcome, len(remainder))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.semanticLimit)

	for i, msg := range remainder {
		if i > 0 && uc.semanticDelay > 0 {
			select {
			case <-gctx.Done():
			case <-time.After(uc.semanticDelay):
			}
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			result, err := uc.semantic.Classify(gctx, msg)
			if err != nil {
				if gctx.Err() != nil {
					return goerr.Wrap(err, "semantic phase aborted",
						goerr.V("message_id", msg.ID))
				}
				logging.From(ctx).Warn("semantic classification failed",
					"message_id", msg.ID, "error", err)
				outcomes[i].failed = true
				return nil
			}

			if err := uc.commitClassification(gctx, msg, result.Category, result.Confidence, result.Reasoning, types.SourceSemantic); err != nil {
				logging.From(ctx).Warn("failed to store semantic classification",
					"message_id", msg.ID, "error", err)
				outcomes[i].failed = true
				return nil
			}
			outcomes[i].category = result.Category
			outcomes[i].degraded = result.Degraded
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.failed {
			report.Semantic.Failed++
			continue
		}
		report.Semantic.Classified++
		report.Semantic.Breakdown[o.category]++
		if o.degraded {
			report.Semantic.Defaulted++
		}
	}
	return nil
}

// runScoringPhase scores every classified Work message, upserts the urgency
// record, and mirrors the final score onto the message.
func (uc *UseCases) runScoringPhase(ctx context.Context, now time.Time, report *model.PipelineReport) ([]*model.UrgencyRecord, error) {
	phaseStart := time.Now()
	defer func() {
		report.Scoring.Duration = time.Since(phaseStart)
	}()

	msgs, err := uc.repo.Message().List(ctx,
		interfaces.WithStatus(types.StatusClassified),
		interfaces.WithCategories(types.WorkCategories()...),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list work messages")
	}
	report.WorkItems = len(msgs)
	report.OtherItems = report.TotalMessages - len(msgs)
	if report.OtherItems < 0 {
		report.OtherItems = 0
	}

	records := make([]*model.UrgencyRecord, 0, len(msgs))
	for _, msg := range msgs {
		rec, err := uc.scorer.Score(ctx, msg, now)
		if err != nil {
			logging.From(ctx).Warn("scoring failed",
				"message_id", msg.ID, "error", err)
			report.Scoring.Failed++
			continue
		}

		if _, err := uc.repo.Urgency().Upsert(ctx, rec); err != nil {
			return nil, goerr.Wrap(err, "failed to upsert urgency record",
				goerr.V("message_id", msg.ID))
		}
		if err := uc.repo.Message().UpdateScore(ctx, msg.ID, rec.Score); err != nil {
			return nil, goerr.Wrap(err, "failed to update message score",
				goerr.V("message_id", msg.ID))
		}

		report.Scoring.Scored++
		if rec.FloorOverride {
			report.Scoring.FloorItems++
		}
		if rec.StaleBonus > 0 {
			report.Scoring.StaleItems++
		}
		records = append(records, rec)
	}
	return records, nil
}

// runAssignmentPhase distributes scored messages across due date slots and
// persists the dates.
func (uc *UseCases) runAssignmentPhase(ctx context.Context, records []*model.UrgencyRecord, today time.Time, report *model.PipelineReport) error {
	phaseStart := time.Now()
	defer func() {
		report.Assignment.Duration = time.Since(phaseStart)
	}()

	assignments, summary := assign.Schedule(records, uc.profile.Schedule, today)
	for _, a := range assignments {
		if err := uc.repo.Message().UpdateDueDate(ctx, a.MessageID, a.DueDate); err != nil {
			return goerr.Wrap(err, "failed to update due date",
				goerr.V("message_id", a.MessageID))
		}
	}

	report.Assignment.Assigned = summary.Total
	report.Assignment.Slots = summary.BySlot
	report.Assignment.FloorOverflow = summary.FloorOverflow
	return nil
}

func (uc *UseCases) commitClassification(ctx context.Context, msg *model.Message, category types.Category, confidence float64, reason string, source types.ClassifierSource) error {
	if err := uc.repo.Message().UpdateClassification(ctx, msg.ID, category, confidence, types.StatusClassified); err != nil {
		return goerr.Wrap(err, "failed to update classification",
			goerr.V("message_id", msg.ID))
	}
	if _, err := uc.repo.ClassificationEvent().Append(ctx, &model.ClassificationEvent{
		MessageID:  msg.ID,
		Category:   category,
		Rule:       reason,
		Source:     source,
		Confidence: confidence,
		CreatedAt:  uc.now(),
	}); err != nil {
		return goerr.Wrap(err, "failed to append classification event",
			goerr.V("message_id", msg.ID))
	}
	return nil
}

package model

import (
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// RulePhaseReport covers the rule classification phase of a pipeline run.
type RulePhaseReport struct {
	Candidates int
	Classified int
	Breakdown  map[types.Category]int
	Duration   time.Duration
}

// OverridePhaseReport covers the override evaluation phase.
type OverridePhaseReport struct {
	Checked    int
	Overridden int
	ByTrigger  map[types.OverrideTrigger]int
	Duration   time.Duration
}

// SemanticPhaseReport covers the semantic classification phase.
type SemanticPhaseReport struct {
	Classified int
	Defaulted  int // degraded to the safe default after retries
	Failed     int
	Breakdown  map[types.Category]int
	Duration   time.Duration
}

// ScoringPhaseReport covers the urgency scoring phase.
type ScoringPhaseReport struct {
	Scored     int
	FloorItems int
	StaleItems int
	Failed     int
	Duration   time.Duration
}

// AssignmentPhaseReport covers the due-date assignment phase.
type AssignmentPhaseReport struct {
	Assigned      int
	Slots         map[types.Slot]int
	FloorOverflow bool
	Duration      time.Duration
}

// PipelineReport is the per-run summary returned by the triage pipeline.
// Batch operations never abort on a single item; per-item failures show up
// in the phase counts instead.
type PipelineReport struct {
	RunID      string
	StartedAt  time.Time
	Rule       RulePhaseReport
	Override   OverridePhaseReport
	Semantic   SemanticPhaseReport
	Scoring    ScoringPhaseReport
	Assignment AssignmentPhaseReport

	TotalMessages int
	WorkItems     int
	OtherItems    int
	Duration      time.Duration
}

package model

import (
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// ClassificationEvent is one entry in the append-only classification log.
// Every decision, including degraded defaults, is recorded so the user can
// audit and correct the pipeline.
type ClassificationEvent struct {
	ID         int64
	MessageID  int64
	Category   types.Category
	Rule       string // matched rule or model reasoning, human readable
	Source     types.ClassifierSource
	Confidence float64
	CreatedAt  time.Time
}

// OverrideEvent is one entry in the append-only override log, written when a
// message classified into the Other group is vetoed back to unclassified.
type OverrideEvent struct {
	ID               int64
	MessageID        int64
	OriginalCategory types.Category
	Trigger          types.OverrideTrigger
	Reason           string
	CreatedAt        time.Time
}

// SemanticResult is the outcome of the semantic classification stage.
// Degraded marks the safe default produced after a terminal failure or
// exhausted retries.
type SemanticResult struct {
	Category   types.Category
	Confidence float64
	Reasoning  string
	Degraded   bool
}

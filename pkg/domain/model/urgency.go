package model

import (
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// SignalScore is one row of the per-signal breakdown for an urgency score.
type SignalScore struct {
	Name     string  `json:"name"`
	Raw      float64 `json:"raw"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// UrgencyRecord holds the scoring outcome for a message. There is exactly one
// record per scored message; re-scoring updates it in place.
type UrgencyRecord struct {
	MessageID     int64
	Score         float64 // final score after escalation, 0-100
	RawScore      float64 // weighted sum before escalation, 0-100
	StaleBonus    int
	StaleDays     int
	FloorOverride bool
	ForceToday    bool
	Signals       []SignalScore // ordered breakdown
	ScoredAt      time.Time
}

// Assignment is the transient scheduling outcome for one message. It is
// recomputed on every scheduling run; only DueDate is persisted back onto
// the message.
type Assignment struct {
	MessageID int64
	DueDate   *time.Time
	Pool      types.Pool
	Slot      types.Slot
	Reason    types.AssignReason
}

// AssignmentSummary aggregates one scheduling run.
type AssignmentSummary struct {
	Total         int
	BySlot        map[types.Slot]int
	ByPool        map[types.Pool]int
	TodayCount    int
	FloorOverflow bool
}

package types

// Pool identifies which scheduling pool a message landed in. Floor pool items
// are guaranteed same-day placement; standard pool items compete for slots.
type Pool string

const (
	PoolFloor    Pool = "floor"
	PoolStandard Pool = "standard"
)

// String returns the string representation of the pool.
func (p Pool) String() string {
	return string(p)
}

// Slot is a discrete scheduling bucket.
type Slot string

const (
	SlotToday    Slot = "today"
	SlotTomorrow Slot = "tomorrow"
	SlotThisWeek Slot = "this_week"
	SlotNextWeek Slot = "next_week"
	SlotNone     Slot = "none"
)

// AllSlots returns all slots in scheduling order.
func AllSlots() []Slot {
	return []Slot{SlotToday, SlotTomorrow, SlotThisWeek, SlotNextWeek, SlotNone}
}

// String returns the string representation of the slot.
func (s Slot) String() string {
	return string(s)
}

// AssignReason records why a message was placed in its slot.
type AssignReason string

const (
	ReasonStaleForceToday AssignReason = "stale_force_today"
	ReasonUrgencyFloor    AssignReason = "urgency_floor"
	ReasonHighPriority    AssignReason = "high_priority"
	ReasonNextDay         AssignReason = "next_day"
	ReasonThisWeek        AssignReason = "this_week"
	ReasonNextWeek        AssignReason = "next_week"
	ReasonBelowThreshold  AssignReason = "below_threshold"
)

// String returns the string representation of the assignment reason.
func (r AssignReason) String() string {
	return string(r)
}

// OverrideTrigger identifies which check rescued a misrouted message back
// into the work pipeline.
type OverrideTrigger string

const (
	TriggerUrgencyLanguage OverrideTrigger = "urgency_language"
	TriggerVIPSender       OverrideTrigger = "vip_sender"
	TriggerSoleRecipient   OverrideTrigger = "sole_recipient_mismatch"
	TriggerReplyChain      OverrideTrigger = "reply_chain_participation"
	TriggerDirectAddress   OverrideTrigger = "direct_address"
)

// IsValid checks if the override trigger is valid.
func (t OverrideTrigger) IsValid() bool {
	switch t {
	case TriggerUrgencyLanguage, TriggerVIPSender, TriggerSoleRecipient,
		TriggerReplyChain, TriggerDirectAddress:
		return true
	default:
		return false
	}
}

// String returns the string representation of the override trigger.
func (t OverrideTrigger) String() string {
	return string(t)
}

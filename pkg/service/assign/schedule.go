// Package assign implements the capacity-aware due date scheduler. Scored
// messages are distributed across today, tomorrow, this Friday, and next
// Monday, with floor-pool items bypassing the daily limit.
package assign

import (
	"sort"
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// Schedule distributes urgency records into due date slots:
//
//  1. Records with FloorOverride or ForceToday form the floor pool and all
//     land on today, regardless of the task limit.
//  2. The rest are sorted by score descending and fill today's remaining
//     slots, then the task limit for tomorrow, then twice the task limit for
//     this Friday.
//  3. What is left either gets next Monday, or no date when its score is
//     below the time pressure threshold.
//
// Ties in the standard pool break on ascending message ID, so reruns over
// the same records produce the same order. today is truncated to midnight
// in its own location.
func Schedule(records []*model.UrgencyRecord, settings model.ScheduleSettings, today time.Time) ([]*model.Assignment, *model.AssignmentSummary) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	tomorrow := day.AddDate(0, 0, 1)
	thisFriday := day.AddDate(0, 0, daysUntilFriday(day))
	nextMonday := day.AddDate(0, 0, daysUntilNextMonday(day))

	var floor, standard []*model.UrgencyRecord
	for _, rec := range records {
		if rec.FloorOverride || rec.ForceToday {
			floor = append(floor, rec)
		} else {
			standard = append(standard, rec)
		}
	}

	sort.Slice(standard, func(i, j int) bool {
		if standard[i].Score != standard[j].Score {
			return standard[i].Score > standard[j].Score
		}
		return standard[i].MessageID < standard[j].MessageID
	})

	availableToday := settings.TaskLimit - len(floor)
	if availableToday < 0 {
		availableToday = 0
	}

	assignments := make([]*model.Assignment, 0, len(records))

	for _, rec := range floor {
		reason := types.ReasonUrgencyFloor
		if rec.ForceToday {
			reason = types.ReasonStaleForceToday
		}
		assignments = append(assignments, &model.Assignment{
			MessageID: rec.MessageID,
			DueDate:   dateRef(day),
			Pool:      types.PoolFloor,
			Slot:      types.SlotToday,
			Reason:    reason,
		})
	}

	tomorrowEnd := availableToday + settings.TaskLimit
	thisWeekEnd := tomorrowEnd + settings.TaskLimit*2

	for i, rec := range standard {
		a := &model.Assignment{
			MessageID: rec.MessageID,
			Pool:      types.PoolStandard,
		}
		switch {
		case i < availableToday:
			a.DueDate = dateRef(day)
			a.Slot = types.SlotToday
			a.Reason = types.ReasonHighPriority
		case i < tomorrowEnd:
			a.DueDate = dateRef(tomorrow)
			a.Slot = types.SlotTomorrow
			a.Reason = types.ReasonNextDay
		case i < thisWeekEnd:
			a.DueDate = dateRef(thisFriday)
			a.Slot = types.SlotThisWeek
			a.Reason = types.ReasonThisWeek
		case rec.Score < settings.TimePressureThreshold:
			a.Slot = types.SlotNone
			a.Reason = types.ReasonBelowThreshold
		default:
			a.DueDate = dateRef(nextMonday)
			a.Slot = types.SlotNextWeek
			a.Reason = types.ReasonNextWeek
		}
		assignments = append(assignments, a)
	}

	return assignments, summarize(assignments, len(floor), settings.TaskLimit)
}

func summarize(assignments []*model.Assignment, floorCount, taskLimit int) *model.AssignmentSummary {
	summary := &model.AssignmentSummary{
		Total:         len(assignments),
		BySlot:        make(map[types.Slot]int, len(types.AllSlots())),
		ByPool:        map[types.Pool]int{types.PoolFloor: 0, types.PoolStandard: 0},
		FloorOverflow: floorCount > taskLimit,
	}
	for _, slot := range types.AllSlots() {
		summary.BySlot[slot] = 0
	}

	for _, a := range assignments {
		summary.BySlot[a.Slot]++
		summary.ByPool[a.Pool]++
		if a.Slot == types.SlotToday {
			summary.TodayCount++
		}
	}

	return summary
}

// daysUntilFriday returns 0 on a Friday and rolls weekend days into next
// week.
func daysUntilFriday(day time.Time) int {
	return (4 - mondayWeekday(day) + 7) % 7
}

// daysUntilNextMonday never returns 0: on a Monday the next Monday is a week
// out.
func daysUntilNextMonday(day time.Time) int {
	d := (7 - mondayWeekday(day)) % 7
	if d == 0 {
		d = 7
	}
	return d
}

func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func dateRef(t time.Time) *time.Time {
	d := t
	return &d
}

package assign_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/service/assign"
)

// Wednesday
var scheduleDay = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

func testSettings() model.ScheduleSettings {
	return model.ScheduleSettings{
		TaskLimit:             2,
		UrgencyFloor:          90,
		TimePressureThreshold: 15,
		StaleEscalation:       true,
	}
}

func record(id int64, score float64) *model.UrgencyRecord {
	return &model.UrgencyRecord{
		MessageID: id,
		Score:     score,
		RawScore:  score,
		ScoredAt:  scheduleDay,
	}
}

func date(t *testing.T, a *model.Assignment) time.Time {
	t.Helper()
	gt.Value(t, a.DueDate).NotNil()
	return *a.DueDate
}

func byMessageID(assignments []*model.Assignment, id int64) *model.Assignment {
	for _, a := range assignments {
		if a.MessageID == id {
			return a
		}
	}
	return nil
}

func TestScheduleSlots(t *testing.T) {
	records := []*model.UrgencyRecord{
		record(1, 80),
		record(2, 75),
		record(3, 70),
		record(4, 65),
		record(5, 60),
		record(6, 55),
		record(7, 50),
		record(8, 45),
		record(9, 40),
	}

	assignments, summary := assign.Schedule(records, testSettings(), scheduleDay)

	gt.Array(t, assignments).Length(9)
	gt.Value(t, summary.Total).Equal(9)
	gt.Value(t, summary.BySlot[types.SlotToday]).Equal(2)
	gt.Value(t, summary.BySlot[types.SlotTomorrow]).Equal(2)
	gt.Value(t, summary.BySlot[types.SlotThisWeek]).Equal(4)
	gt.Value(t, summary.BySlot[types.SlotNextWeek]).Equal(1)
	gt.Value(t, summary.BySlot[types.SlotNone]).Equal(0)
	gt.Value(t, summary.ByPool[types.PoolStandard]).Equal(9)
	gt.Value(t, summary.TodayCount).Equal(2)
	gt.Bool(t, summary.FloorOverflow).False()

	top := byMessageID(assignments, 1)
	gt.Value(t, top.Slot).Equal(types.SlotToday)
	gt.Value(t, top.Reason).Equal(types.ReasonHighPriority)
	gt.Value(t, date(t, top)).Equal(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))

	third := byMessageID(assignments, 3)
	gt.Value(t, third.Slot).Equal(types.SlotTomorrow)
	gt.Value(t, third.Reason).Equal(types.ReasonNextDay)
	gt.Value(t, date(t, third)).Equal(time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC))

	fifth := byMessageID(assignments, 5)
	gt.Value(t, fifth.Slot).Equal(types.SlotThisWeek)
	gt.Value(t, fifth.Reason).Equal(types.ReasonThisWeek)
	gt.Value(t, date(t, fifth)).Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	last := byMessageID(assignments, 9)
	gt.Value(t, last.Slot).Equal(types.SlotNextWeek)
	gt.Value(t, last.Reason).Equal(types.ReasonNextWeek)
	gt.Value(t, date(t, last)).Equal(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC))
}

func TestScheduleFloorPool(t *testing.T) {
	floor1 := record(1, 95)
	floor1.FloorOverride = true
	floor2 := record(2, 100)
	floor2.ForceToday = true
	floor3 := record(3, 92)
	floor3.FloorOverride = true

	records := []*model.UrgencyRecord{
		floor1, floor2, floor3,
		record(4, 80),
		record(5, 70),
	}

	assignments, summary := assign.Schedule(records, testSettings(), scheduleDay)

	// Floor items exceed the task limit but all stay on today. The standard
	// pool gets no today slots and starts at tomorrow.
	gt.Bool(t, summary.FloorOverflow).True()
	gt.Value(t, summary.TodayCount).Equal(3)
	gt.Value(t, summary.ByPool[types.PoolFloor]).Equal(3)
	gt.Value(t, summary.ByPool[types.PoolStandard]).Equal(2)

	forced := byMessageID(assignments, 2)
	gt.Value(t, forced.Pool).Equal(types.PoolFloor)
	gt.Value(t, forced.Slot).Equal(types.SlotToday)
	gt.Value(t, forced.Reason).Equal(types.ReasonStaleForceToday)

	floored := byMessageID(assignments, 1)
	gt.Value(t, floored.Reason).Equal(types.ReasonUrgencyFloor)

	bumped := byMessageID(assignments, 4)
	gt.Value(t, bumped.Slot).Equal(types.SlotTomorrow)
}

func TestScheduleBelowThreshold(t *testing.T) {
	records := []*model.UrgencyRecord{
		record(1, 80),
		record(2, 75),
		record(3, 70),
		record(4, 65),
		record(5, 60),
		record(6, 55),
		record(7, 50),
		record(8, 45),
		record(9, 10),
		record(10, 30),
	}

	assignments, summary := assign.Schedule(records, testSettings(), scheduleDay)

	quiet := byMessageID(assignments, 9)
	gt.Value(t, quiet.Slot).Equal(types.SlotNone)
	gt.Value(t, quiet.Reason).Equal(types.ReasonBelowThreshold)
	gt.Value(t, quiet.DueDate).Nil()

	kept := byMessageID(assignments, 10)
	gt.Value(t, kept.Slot).Equal(types.SlotNextWeek)
	gt.Value(t, summary.BySlot[types.SlotNone]).Equal(1)
	gt.Value(t, summary.BySlot[types.SlotNextWeek]).Equal(1)
}

func TestScheduleTieBreak(t *testing.T) {
	// Equal scores settle on ascending message ID so reruns are stable.
	records := []*model.UrgencyRecord{
		record(30, 50),
		record(10, 50),
		record(20, 50),
	}

	assignments, _ := assign.Schedule(records, testSettings(), scheduleDay)

	gt.Value(t, assignments[0].MessageID).Equal(int64(10))
	gt.Value(t, assignments[0].Slot).Equal(types.SlotToday)
	gt.Value(t, assignments[1].MessageID).Equal(int64(20))
	gt.Value(t, assignments[1].Slot).Equal(types.SlotToday)
	gt.Value(t, assignments[2].MessageID).Equal(int64(30))
	gt.Value(t, assignments[2].Slot).Equal(types.SlotTomorrow)
}

func TestScheduleWeekendArithmetic(t *testing.T) {
	settings := testSettings()
	settings.TaskLimit = 1

	records := []*model.UrgencyRecord{
		record(1, 80), // today
		record(2, 70), // tomorrow
		record(3, 60), // this Friday
		record(4, 55), // this Friday
		record(5, 50), // next Monday
	}

	testCases := map[string]struct {
		today      time.Time
		thisFriday time.Time
		nextMonday time.Time
	}{
		"friday run keeps friday same day": {
			today:      time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC),
			thisFriday: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			nextMonday: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		"monday run pushes next monday a week out": {
			today:      time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			thisFriday: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			nextMonday: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		"saturday run rolls friday into next week": {
			today:      time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
			thisFriday: time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC),
			nextMonday: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assignments, _ := assign.Schedule(records, settings, tc.today)

			gt.Value(t, date(t, byMessageID(assignments, 3))).Equal(tc.thisFriday)
			gt.Value(t, date(t, byMessageID(assignments, 5))).Equal(tc.nextMonday)
		})
	}
}

func TestScheduleFloorOverflowPushesStandard(t *testing.T) {
	settings := testSettings()
	settings.TaskLimit = 20

	var records []*model.UrgencyRecord
	for i := int64(1); i <= 22; i++ {
		rec := record(i, 100)
		rec.ForceToday = true
		records = append(records, rec)
	}
	for i := int64(23); i <= 37; i++ {
		records = append(records, record(i, 60))
	}

	_, summary := assign.Schedule(records, settings, scheduleDay)

	gt.Bool(t, summary.FloorOverflow).True()
	gt.Value(t, summary.TodayCount).Equal(22)
	gt.Value(t, summary.BySlot[types.SlotToday]).Equal(22)
	gt.Value(t, summary.BySlot[types.SlotTomorrow]).Equal(15)
	gt.Value(t, summary.BySlot[types.SlotThisWeek]).Equal(0)
	gt.Value(t, summary.ByPool[types.PoolFloor]).Equal(22)
}

func TestScheduleEmpty(t *testing.T) {
	assignments, summary := assign.Schedule(nil, testSettings(), scheduleDay)

	gt.Array(t, assignments).Length(0)
	gt.Value(t, summary.Total).Equal(0)
	gt.Bool(t, summary.FloorOverflow).False()
}

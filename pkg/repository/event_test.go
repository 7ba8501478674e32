package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

func runClassificationEventTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("Append assigns IDs and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		msg, err := repo.Message().Put(ctx, newTestMessage(nil))
		gt.NoError(t, err).Required()

		first, err := repo.ClassificationEvent().Append(ctx, &model.ClassificationEvent{
			MessageID:  msg.ID,
			Category:   types.CategoryMarketing,
			Rule:       "marketing domain: mailchimp.com",
			Source:     types.SourceRule,
			Confidence: 0.9,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, first.ID).NotEqual(int64(0))
		gt.Bool(t, first.CreatedAt.IsZero()).False()

		second, err := repo.ClassificationEvent().Append(ctx, &model.ClassificationEvent{
			MessageID:  msg.ID,
			Category:   types.CategoryActionRequired,
			Rule:       "direct request in first paragraph",
			Source:     types.SourceSemantic,
			Confidence: 0.85,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).NotEqual(first.ID)
	})

	t.Run("ListByMessage returns the message log in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		msg, err := repo.Message().Put(ctx, newTestMessage(nil))
		gt.NoError(t, err).Required()
		other, err := repo.Message().Put(ctx, newTestMessage(func(m *model.Message) {
			m.MessageID = "src-002"
		}))
		gt.NoError(t, err).Required()

		for _, ev := range []*model.ClassificationEvent{
			{MessageID: msg.ID, Category: types.CategoryMarketing, Source: types.SourceRule, Confidence: 0.9},
			{MessageID: other.ID, Category: types.CategoryFYI, Source: types.SourceRule, Confidence: 0.88},
			{MessageID: msg.ID, Category: types.CategoryActionRequired, Source: types.SourceSemantic, Confidence: 0.7},
		} {
			_, err := repo.ClassificationEvent().Append(ctx, ev)
			gt.NoError(t, err).Required()
		}

		events, err := repo.ClassificationEvent().ListByMessage(ctx, msg.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(2)
		gt.Value(t, events[0].Category).Equal(types.CategoryMarketing)
		gt.Value(t, events[1].Category).Equal(types.CategoryActionRequired)
	})

	t.Run("ListSince filters by creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		msg, err := repo.Message().Put(ctx, newTestMessage(nil))
		gt.NoError(t, err).Required()

		base := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
		for _, created := range []time.Time{base.Add(-96 * time.Hour), base.Add(-time.Hour), base} {
			_, err := repo.ClassificationEvent().Append(ctx, &model.ClassificationEvent{
				MessageID:  msg.ID,
				Category:   types.CategoryNotification,
				Source:     types.SourceRule,
				Confidence: 0.88,
				CreatedAt:  created,
			})
			gt.NoError(t, err).Required()
		}

		recent, err := repo.ClassificationEvent().ListSince(ctx, base.Add(-72*time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, recent).Length(2)
	})
}

func runOverrideEventTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("Append and ListByMessage round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		msg, err := repo.Message().Put(ctx, newTestMessage(nil))
		gt.NoError(t, err).Required()

		created, err := repo.OverrideEvent().Append(ctx, &model.OverrideEvent{
			MessageID:        msg.ID,
			OriginalCategory: types.CategoryMarketing,
			Trigger:          types.TriggerUrgencyLanguage,
			Reason:           "urgency language: urgent",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual(int64(0))
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		events, err := repo.OverrideEvent().ListByMessage(ctx, msg.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(1)
		gt.Value(t, events[0].OriginalCategory).Equal(types.CategoryMarketing)
		gt.Value(t, events[0].Trigger).Equal(types.TriggerUrgencyLanguage)
		gt.Value(t, events[0].Reason).Equal("urgency language: urgent")

		none, err := repo.OverrideEvent().ListByMessage(ctx, msg.ID+1)
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})
}

func TestClassificationEventRepository_Memory(t *testing.T) {
	runClassificationEventTest(t, newMemoryRepo)
}

func TestClassificationEventRepository_SQLite(t *testing.T) {
	runClassificationEventTest(t, newSQLiteRepo)
}

func TestOverrideEventRepository_Memory(t *testing.T) {
	runOverrideEventTest(t, newMemoryRepo)
}

func TestOverrideEventRepository_SQLite(t *testing.T) {
	runOverrideEventTest(t, newSQLiteRepo)
}

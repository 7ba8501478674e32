package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/repository/memory"
	"github.com/harleysato/mailtriage/pkg/repository/sqlite"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepo(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newSQLiteRepo(t *testing.T) interfaces.Repository {
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "triage.db"))
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate(context.Background())).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newTestMessage(mod func(*model.Message)) *model.Message {
	msg := &model.Message{
		MessageID:      "src-001",
		FromAddress:    "carol@acme.example",
		FromName:       "Carol",
		Subject:        "Quarterly budget review",
		BodyPreview:    "Attached is the draft",
		Body:           "Attached is the draft budget for next quarter.",
		ReceivedAt:     time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
		Importance:     types.ImportanceNormal,
		ConversationID: "conv-1",
		ToRecipients: []model.Recipient{
			{Name: "Harley", Address: "harley@acme.example"},
		},
		Headers: map[string]string{"List-Id": "budget"},
		Status:  types.StatusUnclassified,
	}
	if mod != nil {
		mod(msg)
	}
	return msg
}

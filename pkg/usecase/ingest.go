package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
	"github.com/harleysato/mailtriage/pkg/utils/logging"
)

// Ingest stores messages exported by the message source. Messages without a
// status come in as unclassified; re-ingesting a known MessageID updates the
// source fields and keeps the triage state. Returns the number of stored
// messages.
func (uc *UseCases) Ingest(ctx context.Context, msgs []*model.Message) (int, error) {
	stored := 0
	for _, msg := range msgs {
		if msg.MessageID == "" {
			return stored, goerr.New("message without source identifier",
				goerr.V("subject", msg.Subject))
		}
		if msg.Status == "" {
			msg.Status = types.StatusUnclassified
		}
		if !msg.Status.IsValid() {
			return stored, goerr.New("invalid message status",
				goerr.V("message_id", msg.MessageID), goerr.V("status", msg.Status))
		}

		if _, err := uc.repo.Message().Put(ctx, msg); err != nil {
			return stored, goerr.Wrap(err, "failed to store message",
				goerr.V("message_id", msg.MessageID))
		}
		stored++
	}

	logging.From(ctx).Info("ingest completed", "stored", stored)
	return stored, nil
}

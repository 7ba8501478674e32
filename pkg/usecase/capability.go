package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
)

// conversationHistory backs the reply-chain override trigger with the
// message store.
type conversationHistory struct {
	messages  interfaces.MessageRepository
	userEmail string
}

func (c *conversationHistory) HasPriorOutboundMessage(ctx context.Context, conversationID string) (bool, error) {
	found, err := c.messages.ExistsFromSender(ctx, conversationID, c.userEmail)
	if err != nil {
		return false, goerr.Wrap(err, "failed to look up conversation history",
			goerr.V("conversation_id", conversationID))
	}
	return found, nil
}

// threadActivity backs the thread velocity signal with the message store.
type threadActivity struct {
	messages interfaces.MessageRepository
}

func (a *threadActivity) CountRecentInConversation(ctx context.Context, conversationID string, since time.Time) (int, error) {
	count, err := a.messages.CountInConversationSince(ctx, conversationID, since)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count conversation activity",
			goerr.V("conversation_id", conversationID))
	}
	return count, nil
}

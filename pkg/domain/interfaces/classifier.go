package interfaces

import (
	"context"
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/model"
)

// SemanticClassifier resolves messages the rule stages could not. It is an
// external capability with seconds-scale latency; implementations handle
// their own retries and degrade to a safe default instead of failing.
type SemanticClassifier interface {
	Classify(ctx context.Context, msg *model.Message) (*model.SemanticResult, error)
}

// ConversationHistory answers whether the user already participated in a
// conversation. Injected into the override evaluator so it stays decoupled
// from storage.
type ConversationHistory interface {
	HasPriorOutboundMessage(ctx context.Context, conversationID string) (bool, error)
}

// ThreadActivity reports recent traffic in a conversation for the thread
// velocity signal. Optional; the scorer treats a missing capability as zero
// activity.
type ThreadActivity interface {
	CountRecentInConversation(ctx context.Context, conversationID string, since time.Time) (int, error)
}

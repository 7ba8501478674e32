package interfaces

import (
	"context"
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// Repository defines the interface for data persistence.
type Repository interface {
	Message() MessageRepository
	ClassificationEvent() ClassificationEventRepository
	OverrideEvent() OverrideEventRepository
	Urgency() UrgencyRepository

	Close() error
}

// ListMessagesOptions narrows a message listing.
type ListMessagesOptions struct {
	Status        types.MessageStatus
	Categories    []types.Category
	ReceivedAfter time.Time
}

// ListMessagesOption mutates ListMessagesOptions.
type ListMessagesOption func(*ListMessagesOptions)

// WithStatus filters messages by lifecycle status.
func WithStatus(status types.MessageStatus) ListMessagesOption {
	return func(o *ListMessagesOptions) { o.Status = status }
}

// WithCategories filters messages by category membership.
func WithCategories(categories ...types.Category) ListMessagesOption {
	return func(o *ListMessagesOptions) { o.Categories = categories }
}

// WithReceivedAfter drops messages received at or before t.
func WithReceivedAfter(t time.Time) ListMessagesOption {
	return func(o *ListMessagesOptions) { o.ReceivedAfter = t }
}

// MessageRepository persists messages. Classification, score, and due date
// are mutated in place on the stored message.
type MessageRepository interface {
	// Put inserts the message, or updates the source fields of an existing
	// message with the same MessageID. Returns the stored message with ID set.
	Put(ctx context.Context, msg *model.Message) (*model.Message, error)

	// Get retrieves a message by internal ID.
	Get(ctx context.Context, id int64) (*model.Message, error)

	// List retrieves messages matching the options, ordered by internal ID.
	List(ctx context.Context, opts ...ListMessagesOption) ([]*model.Message, error)

	// UpdateClassification sets category, confidence, and status.
	UpdateClassification(ctx context.Context, id int64, category types.Category, confidence float64, status types.MessageStatus) error

	// UpdateScore mirrors the final urgency score onto the message.
	UpdateScore(ctx context.Context, id int64, score float64) error

	// UpdateDueDate sets or clears the assigned due date.
	UpdateDueDate(ctx context.Context, id int64, due *time.Time) error

	// CountInConversationSince counts messages in a conversation received
	// after the given time. Backs the thread velocity signal.
	CountInConversationSince(ctx context.Context, conversationID string, since time.Time) (int, error)

	// ExistsFromSender reports whether the conversation contains a message
	// sent from the given address. Backs the reply-chain override trigger.
	ExistsFromSender(ctx context.Context, conversationID, address string) (bool, error)
}

// ClassificationEventRepository is the append-only classification log.
type ClassificationEventRepository interface {
	Append(ctx context.Context, ev *model.ClassificationEvent) (*model.ClassificationEvent, error)
	ListByMessage(ctx context.Context, messageID int64) ([]*model.ClassificationEvent, error)
	ListSince(ctx context.Context, since time.Time) ([]*model.ClassificationEvent, error)
}

// OverrideEventRepository is the append-only override log.
type OverrideEventRepository interface {
	Append(ctx context.Context, ev *model.OverrideEvent) (*model.OverrideEvent, error)
	ListByMessage(ctx context.Context, messageID int64) ([]*model.OverrideEvent, error)
}

// UrgencyRepository persists urgency records, exactly one per message.
type UrgencyRepository interface {
	// Upsert stores the record, replacing any existing record for the same
	// message. Re-scoring never creates duplicates.
	Upsert(ctx context.Context, rec *model.UrgencyRecord) (*model.UrgencyRecord, error)

	// Get retrieves the record for a message.
	Get(ctx context.Context, messageID int64) (*model.UrgencyRecord, error)

	// List retrieves all records.
	List(ctx context.Context) ([]*model.UrgencyRecord, error)
}

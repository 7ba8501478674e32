package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

type messageRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*model.Message
	bySrc  map[string]int64 // MessageID -> internal ID
	nextID int64
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		byID:  make(map[int64]*model.Message),
		bySrc: make(map[string]int64),
	}
}

func (r *messageRepository) Put(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if msg.MessageID == "" {
		return nil, goerr.New("message without source identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.bySrc[msg.MessageID]; exists {
		stored := r.byID[id]
		updated := msg.Clone()
		updated.ID = id
		// Triage outcome survives re-ingestion of the same message.
		updated.Category = stored.Category
		updated.Confidence = stored.Confidence
		updated.Score = stored.Score
		updated.DueDate = stored.DueDate
		updated.Status = stored.Status
		r.byID[id] = updated
		return updated.Clone(), nil
	}

	r.nextID++
	created := msg.Clone()
	created.ID = r.nextID
	if created.Status == "" {
		created.Status = types.StatusUnclassified
	}
	r.byID[created.ID] = created
	r.bySrc[created.MessageID] = created.ID
	return created.Clone(), nil
}

func (r *messageRepository) Get(ctx context.Context, id int64) (*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, exists := r.byID[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
	}
	return msg.Clone(), nil
}

func (r *messageRepository) List(ctx context.Context, opts ...interfaces.ListMessagesOption) ([]*model.Message, error) {
	var options interfaces.ListMessagesOptions
	for _, opt := range opts {
		opt(&options)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Message, 0, len(r.byID))
	for _, msg := range r.byID {
		if !matchOptions(msg, &options) {
			continue
		}
		result = append(result, msg.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func matchOptions(msg *model.Message, o *interfaces.ListMessagesOptions) bool {
	if o.Status != "" && msg.Status != o.Status {
		return false
	}
	if len(o.Categories) > 0 {
		found := false
		for _, c := range o.Categories {
			if msg.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !o.ReceivedAfter.IsZero() && !msg.ReceivedAt.After(o.ReceivedAfter) {
		return false
	}
	return true
}

func (r *messageRepository) UpdateClassification(ctx context.Context, id int64, category types.Category, confidence float64, status types.MessageStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, exists := r.byID[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
	}
	msg.Category = category
	msg.Confidence = confidence
	msg.Status = status
	return nil
}

func (r *messageRepository) UpdateScore(ctx context.Context, id int64, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, exists := r.byID[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
	}
	msg.Score = &score
	return nil
}

func (r *messageRepository) UpdateDueDate(ctx context.Context, id int64, due *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, exists := r.byID[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
	}
	if due == nil {
		msg.DueDate = nil
	} else {
		d := *due
		msg.DueDate = &d
	}
	return nil
}

func (r *messageRepository) CountInConversationSince(ctx context.Context, conversationID string, since time.Time) (int, error) {
	if conversationID == "" {
		return 0, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, msg := range r.byID {
		if msg.ConversationID == conversationID && msg.ReceivedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *messageRepository) ExistsFromSender(ctx context.Context, conversationID, address string) (bool, error) {
	if conversationID == "" || address == "" {
		return false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, msg := range r.byID {
		if msg.ConversationID == conversationID && strings.EqualFold(msg.FromAddress, address) {
			return true, nil
		}
	}
	return false, nil
}

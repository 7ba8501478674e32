package memory

import (
	"context"
	"sync"
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/model"
)

type classificationEventRepository struct {
	mu     sync.RWMutex
	events []*model.ClassificationEvent
	nextID int64
}

func newClassificationEventRepository() *classificationEventRepository {
	return &classificationEventRepository{}
}

func copyClassificationEvent(ev *model.ClassificationEvent) *model.ClassificationEvent {
	clone := *ev
	return &clone
}

func (r *classificationEventRepository) Append(ctx context.Context, ev *model.ClassificationEvent) (*model.ClassificationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	created := copyClassificationEvent(ev)
	created.ID = r.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	r.events = append(r.events, created)
	return copyClassificationEvent(created), nil
}

func (r *classificationEventRepository) ListByMessage(ctx context.Context, messageID int64) ([]*model.ClassificationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.ClassificationEvent{}
	for _, ev := range r.events {
		if ev.MessageID == messageID {
			result = append(result, copyClassificationEvent(ev))
		}
	}
	return result, nil
}

func (r *classificationEventRepository) ListSince(ctx context.Context, since time.Time) ([]*model.ClassificationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.ClassificationEvent{}
	for _, ev := range r.events {
		if !ev.CreatedAt.Before(since) {
			result = append(result, copyClassificationEvent(ev))
		}
	}
	return result, nil
}

type overrideEventRepository struct {
	mu     sync.RWMutex
	events []*model.OverrideEvent
	nextID int64
}

func newOverrideEventRepository() *overrideEventRepository {
	return &overrideEventRepository{}
}

func copyOverrideEvent(ev *model.OverrideEvent) *model.OverrideEvent {
	clone := *ev
	return &clone
}

func (r *overrideEventRepository) Append(ctx context.Context, ev *model.OverrideEvent) (*model.OverrideEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	created := copyOverrideEvent(ev)
	created.ID = r.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	r.events = append(r.events, created)
	return copyOverrideEvent(created), nil
}

func (r *overrideEventRepository) ListByMessage(ctx context.Context, messageID int64) ([]*model.OverrideEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.OverrideEvent{}
	for _, ev := range r.events {
		if ev.MessageID == messageID {
			result = append(result, copyOverrideEvent(ev))
		}
	}
	return result, nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/model"
)

type urgencyRepository struct {
	mu      sync.RWMutex
	records map[int64]*model.UrgencyRecord
}

func newUrgencyRepository() *urgencyRepository {
	return &urgencyRepository{
		records: make(map[int64]*model.UrgencyRecord),
	}
}

func copyUrgencyRecord(rec *model.UrgencyRecord) *model.UrgencyRecord {
	clone := *rec
	if rec.Signals != nil {
		clone.Signals = append([]model.SignalScore(nil), rec.Signals...)
	}
	return &clone
}

func (r *urgencyRepository) Upsert(ctx context.Context, rec *model.UrgencyRecord) (*model.UrgencyRecord, error) {
	if rec.MessageID == 0 {
		return nil, goerr.New("urgency record without message id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyUrgencyRecord(rec)
	if stored.ScoredAt.IsZero() {
		stored.ScoredAt = time.Now().UTC()
	}
	r.records[stored.MessageID] = stored
	return copyUrgencyRecord(stored), nil
}

func (r *urgencyRepository) Get(ctx context.Context, messageID int64) (*model.UrgencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[messageID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "urgency record not found", goerr.V("message_id", messageID))
	}
	return copyUrgencyRecord(rec), nil
}

func (r *urgencyRepository) List(ctx context.Context) ([]*model.UrgencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.UrgencyRecord, 0, len(r.records))
	for _, rec := range r.records {
		result = append(result, copyUrgencyRecord(rec))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MessageID < result[j].MessageID
	})
	return result, nil
}

package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

type classificationEventRepository struct {
	db *sqlx.DB
}

type classificationEventRow struct {
	ID         int64     `db:"id"`
	MessageID  int64     `db:"message_id"`
	Category   int       `db:"category"`
	Rule       string    `db:"rule"`
	Source     string    `db:"source"`
	Confidence float64   `db:"confidence"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row *classificationEventRow) toModel() *model.ClassificationEvent {
	return &model.ClassificationEvent{
		ID:         row.ID,
		MessageID:  row.MessageID,
		Category:   types.Category(row.Category),
		Rule:       row.Rule,
		Source:     types.ClassifierSource(row.Source),
		Confidence: row.Confidence,
		CreatedAt:  row.CreatedAt,
	}
}

func (r *classificationEventRepository) Append(ctx context.Context, ev *model.ClassificationEvent) (*model.ClassificationEvent, error) {
	created := *ev
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO classification_events (message_id, category, rule, source, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.MessageID, int(created.Category), created.Rule,
		created.Source.String(), created.Confidence, created.CreatedAt.UTC())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append classification event",
			goerr.V("message_id", created.MessageID))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get event id")
	}
	created.ID = id
	return &created, nil
}

func (r *classificationEventRepository) ListByMessage(ctx context.Context, messageID int64) ([]*model.ClassificationEvent, error) {
	var rows []classificationEventRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM classification_events WHERE message_id = ? ORDER BY id`, messageID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list classification events",
			goerr.V("message_id", messageID))
	}

	result := make([]*model.ClassificationEvent, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toModel())
	}
	return result, nil
}

func (r *classificationEventRepository) ListSince(ctx context.Context, since time.Time) ([]*model.ClassificationEvent, error) {
	var rows []classificationEventRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM classification_events WHERE created_at >= ? ORDER BY id`, since.UTC())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list classification events")
	}

	result := make([]*model.ClassificationEvent, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toModel())
	}
	return result, nil
}

type overrideEventRepository struct {
	db *sqlx.DB
}

type overrideEventRow struct {
	ID               int64     `db:"id"`
	MessageID        int64     `db:"message_id"`
	OriginalCategory int       `db:"original_category"`
	TriggerKind      string    `db:"trigger_kind"`
	Reason           string    `db:"reason"`
	CreatedAt        time.Time `db:"created_at"`
}

func (row *overrideEventRow) toModel() *model.OverrideEvent {
	return &model.OverrideEvent{
		ID:               row.ID,
		MessageID:        row.MessageID,
		OriginalCategory: types.Category(row.OriginalCategory),
		Trigger:          types.OverrideTrigger(row.TriggerKind),
		Reason:           row.Reason,
		CreatedAt:        row.CreatedAt,
	}
}

func (r *overrideEventRepository) Append(ctx context.Context, ev *model.OverrideEvent) (*model.OverrideEvent, error) {
	created := *ev
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO override_events (message_id, original_category, trigger_kind, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		created.MessageID, int(created.OriginalCategory),
		created.Trigger.String(), created.Reason, created.CreatedAt.UTC())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append override event",
			goerr.V("message_id", created.MessageID))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get event id")
	}
	created.ID = id
	return &created, nil
}

func (r *overrideEventRepository) ListByMessage(ctx context.Context, messageID int64) ([]*model.OverrideEvent, error) {
	var rows []overrideEventRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM override_events WHERE message_id = ? ORDER BY id`, messageID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list override events",
			goerr.V("message_id", messageID))
	}

	result := make([]*model.OverrideEvent, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toModel())
	}
	return result, nil
}

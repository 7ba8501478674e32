package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/model"
)

type urgencyRepository struct {
	db *sqlx.DB
}

type urgencyRow struct {
	MessageID     int64     `db:"message_id"`
	Score         float64   `db:"score"`
	RawScore      float64   `db:"raw_score"`
	StaleBonus    int       `db:"stale_bonus"`
	StaleDays     int       `db:"stale_days"`
	FloorOverride bool      `db:"floor_override"`
	ForceToday    bool      `db:"force_today"`
	Signals       string    `db:"signals"`
	ScoredAt      time.Time `db:"scored_at"`
}

func (row *urgencyRow) toModel() (*model.UrgencyRecord, error) {
	rec := &model.UrgencyRecord{
		MessageID:     row.MessageID,
		Score:         row.Score,
		RawScore:      row.RawScore,
		StaleBonus:    row.StaleBonus,
		StaleDays:     row.StaleDays,
		FloorOverride: row.FloorOverride,
		ForceToday:    row.ForceToday,
		ScoredAt:      row.ScoredAt,
	}
	if err := json.Unmarshal([]byte(row.Signals), &rec.Signals); err != nil {
		return nil, goerr.Wrap(err, "failed to decode signals", goerr.V("message_id", row.MessageID))
	}
	return rec, nil
}

func (r *urgencyRepository) Upsert(ctx context.Context, rec *model.UrgencyRecord) (*model.UrgencyRecord, error) {
	if rec.MessageID == 0 {
		return nil, goerr.New("urgency record without message id")
	}

	stored := *rec
	if stored.ScoredAt.IsZero() {
		stored.ScoredAt = time.Now().UTC()
	}
	signals := stored.Signals
	if signals == nil {
		signals = []model.SignalScore{}
	}
	signalsJSON, err := json.Marshal(signals)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode signals", goerr.V("message_id", stored.MessageID))
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO urgency_records (
			message_id, score, raw_score, stale_bonus, stale_days,
			floor_override, force_today, signals, scored_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			score = excluded.score,
			raw_score = excluded.raw_score,
			stale_bonus = excluded.stale_bonus,
			stale_days = excluded.stale_days,
			floor_override = excluded.floor_override,
			force_today = excluded.force_today,
			signals = excluded.signals,
			scored_at = excluded.scored_at`,
		stored.MessageID, stored.Score, stored.RawScore, stored.StaleBonus, stored.StaleDays,
		stored.FloorOverride, stored.ForceToday, string(signalsJSON), stored.ScoredAt.UTC())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert urgency record",
			goerr.V("message_id", stored.MessageID))
	}
	return &stored, nil
}

func (r *urgencyRepository) Get(ctx context.Context, messageID int64) (*model.UrgencyRecord, error) {
	var row urgencyRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM urgency_records WHERE message_id = ?`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "urgency record not found", goerr.V("message_id", messageID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get urgency record", goerr.V("message_id", messageID))
	}
	return row.toModel()
}

func (r *urgencyRepository) List(ctx context.Context) ([]*model.UrgencyRecord, error) {
	var rows []urgencyRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM urgency_records ORDER BY message_id`); err != nil {
		return nil, goerr.Wrap(err, "failed to list urgency records")
	}

	result := make([]*model.UrgencyRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
	"github.com/harleysato/mailtriage/pkg/domain/model"
	"github.com/harleysato/mailtriage/pkg/domain/types"
)

type messageRepository struct {
	db *sqlx.DB
}

type messageRow struct {
	ID             int64           `db:"id"`
	MessageID      string          `db:"message_id"`
	FromAddress    string          `db:"from_address"`
	FromName       string          `db:"from_name"`
	Subject        string          `db:"subject"`
	BodyPreview    string          `db:"body_preview"`
	Body           string          `db:"body"`
	ReceivedAt     time.Time       `db:"received_at"`
	Importance     string          `db:"importance"`
	ConversationID string          `db:"conversation_id"`
	HasAttachments bool            `db:"has_attachments"`
	ToRecipients   string          `db:"to_recipients"`
	CcRecipients   string          `db:"cc_recipients"`
	Headers        string          `db:"headers"`
	Category       int             `db:"category"`
	Confidence     float64         `db:"confidence"`
	Score          sql.NullFloat64 `db:"score"`
	DueDate        sql.NullTime    `db:"due_date"`
	Status         string          `db:"status"`
}

func toMessageRow(msg *model.Message) (*messageRow, error) {
	toJSON, err := json.Marshal(msg.ToRecipients)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode to recipients")
	}
	ccJSON, err := json.Marshal(msg.CcRecipients)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode cc recipients")
	}
	headers := msg.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	headersJSON, err := json.Marshal(headers)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode headers")
	}

	importance := msg.Importance
	if importance == "" {
		importance = types.ImportanceNormal
	}
	status := msg.Status
	if status == "" {
		status = types.StatusUnclassified
	}

	row := &messageRow{
		ID:             msg.ID,
		MessageID:      msg.MessageID,
		FromAddress:    msg.FromAddress,
		FromName:       msg.FromName,
		Subject:        msg.Subject,
		BodyPreview:    msg.BodyPreview,
		Body:           msg.Body,
		ReceivedAt:     msg.ReceivedAt.UTC(),
		Importance:     importance.String(),
		ConversationID: msg.ConversationID,
		HasAttachments: msg.HasAttachments,
		ToRecipients:   string(toJSON),
		CcRecipients:   string(ccJSON),
		Headers:        string(headersJSON),
		Category:       int(msg.Category),
		Confidence:     msg.Confidence,
		Status:         status.String(),
	}
	if msg.Score != nil {
		row.Score = sql.NullFloat64{Float64: *msg.Score, Valid: true}
	}
	if msg.DueDate != nil {
		row.DueDate = sql.NullTime{Time: msg.DueDate.UTC(), Valid: true}
	}
	return row, nil
}

func (row *messageRow) toModel() (*model.Message, error) {
	msg := &model.Message{
		ID:             row.ID,
		MessageID:      row.MessageID,
		FromAddress:    row.FromAddress,
		FromName:       row.FromName,
		Subject:        row.Subject,
		BodyPreview:    row.BodyPreview,
		Body:           row.Body,
		ReceivedAt:     row.ReceivedAt,
		Importance:     types.Importance(row.Importance),
		ConversationID: row.ConversationID,
		HasAttachments: row.HasAttachments,
		Category:       types.Category(row.Category),
		Confidence:     row.Confidence,
		Status:         types.MessageStatus(row.Status),
	}
	if err := json.Unmarshal([]byte(row.ToRecipients), &msg.ToRecipients); err != nil {
		return nil, goerr.Wrap(err, "failed to decode to recipients", goerr.V("id", row.ID))
	}
	if err := json.Unmarshal([]byte(row.CcRecipients), &msg.CcRecipients); err != nil {
		return nil, goerr.Wrap(err, "failed to decode cc recipients", goerr.V("id", row.ID))
	}
	if err := json.Unmarshal([]byte(row.Headers), &msg.Headers); err != nil {
		return nil, goerr.Wrap(err, "failed to decode headers", goerr.V("id", row.ID))
	}
	if row.Score.Valid {
		score := row.Score.Float64
		msg.Score = &score
	}
	if row.DueDate.Valid {
		due := row.DueDate.Time
		msg.DueDate = &due
	}
	return msg, nil
}

func (r *messageRepository) Put(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if msg.MessageID == "" {
		return nil, goerr.New("message without source identifier")
	}

	row, err := toMessageRow(msg)
	if err != nil {
		return nil, err
	}

	// Source fields only on conflict; triage outcome survives re-ingestion.
	const query = `
		INSERT INTO messages (
			message_id, from_address, from_name, subject, body_preview, body,
			received_at, importance, conversation_id, has_attachments,
			to_recipients, cc_recipients, headers,
			category, confidence, score, due_date, status
		) VALUES (
			:message_id, :from_address, :from_name, :subject, :body_preview, :body,
			:received_at, :importance, :conversation_id, :has_attachments,
			:to_recipients, :cc_recipients, :headers,
			:category, :confidence, :score, :due_date, :status
		)
		ON CONFLICT(message_id) DO UPDATE SET
			from_address = excluded.from_address,
			from_name = excluded.from_name,
			subject = excluded.subject,
			body_preview = excluded.body_preview,
			body = excluded.body,
			received_at = excluded.received_at,
			importance = excluded.importance,
			conversation_id = excluded.conversation_id,
			has_attachments = excluded.has_attachments,
			to_recipients = excluded.to_recipients,
			cc_recipients = excluded.cc_recipients,
			headers = excluded.headers`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return nil, goerr.Wrap(err, "failed to store message", goerr.V("message_id", msg.MessageID))
	}

	var stored messageRow
	if err := r.db.GetContext(ctx, &stored,
		`SELECT * FROM messages WHERE message_id = ?`, msg.MessageID); err != nil {
		return nil, goerr.Wrap(err, "failed to read back message", goerr.V("message_id", msg.MessageID))
	}
	return stored.toModel()
}

func (r *messageRepository) Get(ctx context.Context, id int64) (*model.Message, error) {
	var row messageRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM messages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get message", goerr.V("id", id))
	}
	return row.toModel()
}

func (r *messageRepository) List(ctx context.Context, opts ...interfaces.ListMessagesOption) ([]*model.Message, error) {
	var options interfaces.ListMessagesOptions
	for _, opt := range opts {
		opt(&options)
	}

	query := `SELECT * FROM messages WHERE 1=1`
	var args []any
	if options.Status != "" {
		query += ` AND status = ?`
		args = append(args, options.Status.String())
	}
	if len(options.Categories) > 0 {
		categories := make([]int, 0, len(options.Categories))
		for _, c := range options.Categories {
			categories = append(categories, int(c))
		}
		in, inArgs, err := sqlx.In(` AND category IN (?)`, categories)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build category filter")
		}
		query += in
		args = append(args, inArgs...)
	}
	if !options.ReceivedAfter.IsZero() {
		query += ` AND received_at > ?`
		args = append(args, options.ReceivedAfter.UTC())
	}
	query += ` ORDER BY id`

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, goerr.Wrap(err, "failed to list messages")
	}

	result := make([]*model.Message, 0, len(rows))
	for i := range rows {
		msg, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, nil
}

func (r *messageRepository) UpdateClassification(ctx context.Context, id int64, category types.Category, confidence float64, status types.MessageStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET category = ?, confidence = ?, status = ? WHERE id = ?`,
		int(category), confidence, status.String(), id)
	if err != nil {
		return goerr.Wrap(err, "failed to update classification", goerr.V("id", id))
	}
	return requireAffected(res, id)
}

func (r *messageRepository) UpdateScore(ctx context.Context, id int64, score float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET score = ? WHERE id = ?`, score, id)
	if err != nil {
		return goerr.Wrap(err, "failed to update score", goerr.V("id", id))
	}
	return requireAffected(res, id)
}

func (r *messageRepository) UpdateDueDate(ctx context.Context, id int64, due *time.Time) error {
	var value sql.NullTime
	if due != nil {
		value = sql.NullTime{Time: due.UTC(), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET due_date = ? WHERE id = ?`, value, id)
	if err != nil {
		return goerr.Wrap(err, "failed to update due date", goerr.V("id", id))
	}
	return requireAffected(res, id)
}

func (r *messageRepository) CountInConversationSince(ctx context.Context, conversationID string, since time.Time) (int, error) {
	if conversationID == "" {
		return 0, nil
	}

	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ? AND received_at > ?`,
		conversationID, since.UTC())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count conversation messages",
			goerr.V("conversation_id", conversationID))
	}
	return count, nil
}

func (r *messageRepository) ExistsFromSender(ctx context.Context, conversationID, address string) (bool, error) {
	if conversationID == "" || address == "" {
		return false, nil
	}

	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE conversation_id = ? AND from_address = ? COLLATE NOCASE)`,
		conversationID, address)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check conversation sender",
			goerr.V("conversation_id", conversationID))
	}
	return exists, nil
}

func requireAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows", goerr.V("id", id))
	}
	if affected == 0 {
		return goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
	}
	return nil
}

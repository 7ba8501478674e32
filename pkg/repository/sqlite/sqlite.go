// Package sqlite provides a persistent repository backend on SQLite via
// sqlx. The schema is created on Migrate and is safe to re-run.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = goerr.New("not found")

type Repository struct {
	db       *sqlx.DB
	messages *messageRepository
	events   *classificationEventRepository
	vetoes   *overrideEventRepository
	urgency  *urgencyRepository
}

var _ interfaces.Repository = &Repository{}

// New opens the database at path with WAL journaling and foreign keys
// enabled. The parent directory is created when missing.
func New(path string) (*Repository, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("dir", dir))
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	return &Repository{
		db:       db,
		messages: &messageRepository{db: db},
		events:   &classificationEventRepository{db: db},
		vetoes:   &overrideEventRepository{db: db},
		urgency:  &urgencyRepository{db: db},
	}, nil
}

// Migrate creates or upgrades the schema. Idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return goerr.Wrap(err, "failed to migrate schema")
	}
	return nil
}

func (r *Repository) Message() interfaces.MessageRepository {
	return r.messages
}

func (r *Repository) ClassificationEvent() interfaces.ClassificationEventRepository {
	return r.events
}

func (r *Repository) OverrideEvent() interfaces.OverrideEventRepository {
	return r.vetoes
}

func (r *Repository) Urgency() interfaces.UrgencyRepository {
	return r.urgency
}

func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database")
	}
	return nil
}

package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT NOT NULL UNIQUE,
    from_address TEXT NOT NULL,
    from_name TEXT NOT NULL DEFAULT '',
    subject TEXT NOT NULL DEFAULT '',
    body_preview TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    received_at DATETIME NOT NULL,
    importance TEXT NOT NULL DEFAULT 'normal',
    conversation_id TEXT NOT NULL DEFAULT '',
    has_attachments BOOLEAN NOT NULL DEFAULT false,
    to_recipients TEXT NOT NULL DEFAULT '[]',
    cc_recipients TEXT NOT NULL DEFAULT '[]',
    headers TEXT NOT NULL DEFAULT '{}',
    category INTEGER NOT NULL DEFAULT 0,
    confidence REAL NOT NULL DEFAULT 0,
    score REAL,
    due_date DATETIME,
    status TEXT NOT NULL DEFAULT 'unclassified'
);

CREATE TABLE IF NOT EXISTS classification_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    category INTEGER NOT NULL,
    rule TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL,
    confidence REAL NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS override_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    original_category INTEGER NOT NULL,
    trigger_kind TEXT NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS urgency_records (
    message_id INTEGER PRIMARY KEY REFERENCES messages(id) ON DELETE CASCADE,
    score REAL NOT NULL,
    raw_score REAL NOT NULL,
    stale_bonus INTEGER NOT NULL DEFAULT 0,
    stale_days INTEGER NOT NULL DEFAULT 0,
    floor_override BOOLEAN NOT NULL DEFAULT false,
    force_today BOOLEAN NOT NULL DEFAULT false,
    signals TEXT NOT NULL DEFAULT '[]',
    scored_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_status ON messages(status);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_classification_events_message ON classification_events(message_id);
CREATE INDEX IF NOT EXISTS idx_classification_events_created ON classification_events(created_at);
CREATE INDEX IF NOT EXISTS idx_override_events_message ON override_events(message_id);
`

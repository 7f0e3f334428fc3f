package ledger

const schema = `
CREATE TABLE IF NOT EXISTS comments (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    article_id TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL DEFAULT '',
    url        TEXT NOT NULL DEFAULT '',
    content    TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS headlines (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    activity_id    TEXT NOT NULL DEFAULT '',
    activity_title TEXT NOT NULL DEFAULT '',
    content        TEXT NOT NULL DEFAULT '',
    hashtags       TEXT NOT NULL DEFAULT '',
    images         TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'draft',
    created_at     DATETIME NOT NULL,
    published_at   DATETIME
);

CREATE TABLE IF NOT EXISTS activity_participations (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    activity_id      TEXT NOT NULL,
    activity_title   TEXT NOT NULL DEFAULT '',
    operation_kind   TEXT NOT NULL DEFAULT '',
    confidence       REAL NOT NULL DEFAULT 0,
    analysis         TEXT NOT NULL DEFAULT '',
    user_confirmed   BOOLEAN NOT NULL DEFAULT 0,
    execution_result TEXT NOT NULL DEFAULT '',
    created_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at);
CREATE INDEX IF NOT EXISTS idx_headlines_created_at ON headlines(created_at);
CREATE INDEX IF NOT EXISTS idx_participations_activity_id ON activity_participations(activity_id);
`

// ABOUTME: SQLite database schema for the dialogue vault
// ABOUTME: Creates threads, turns, tags, and join tables with indexes
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Threads table (ordered dialogue conversations)
CREATE TABLE IF NOT EXISTS threads (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'ACTIVE',
    metadata TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Turns table (individual dialogue messages)
CREATE TABLE IF NOT EXISTS turns (
    id TEXT PRIMARY KEY,
    thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    token_count_estimate INTEGER,
    annotations TEXT,
    embedding BLOB,
    embedding_model TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Tags table
CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT
);

-- Thread/tag join table
CREATE TABLE IF NOT EXISTS thread_tags (
    thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (thread_id, tag_id)
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_threads_status ON threads(status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_turns_thread_order ON turns(thread_id, order_index);
CREATE INDEX IF NOT EXISTS idx_turns_role ON turns(role);
CREATE INDEX IF NOT EXISTS idx_turns_created ON turns(created_at);
CREATE INDEX IF NOT EXISTS idx_thread_tags_tag ON thread_tags(tag_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1

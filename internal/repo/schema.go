package repo

// postgresSchema — схема task groups для PostgreSQL.
//
// Один логический run — несколько строк task_chunks с общим task_group_id.
// item_count ограничен ChunkCapacity (200), порядок chunks задаёт seq.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS task_chunks (
    seq           BIGSERIAL PRIMARY KEY,
    id            UUID NOT NULL UNIQUE,
    task_group_id TEXT NOT NULL,
    name          TEXT NOT NULL,
    is_dry_run    BOOLEAN NOT NULL,
    user_id       TEXT,
    item_count    INTEGER NOT NULL DEFAULT 0 CHECK (item_count <= 200),
    completed_at  TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_task_chunks_group ON task_chunks(task_group_id, seq);

CREATE TABLE IF NOT EXISTS task_items (
    id               UUID PRIMARY KEY,
    chunk_id         UUID NOT NULL REFERENCES task_chunks(id),
    position         INTEGER NOT NULL,
    input_data       JSONB,
    transformed_data JSONB,
    remark           TEXT,
    status           TEXT NOT NULL CHECK (status IN ('pending', 'success', 'error')),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (chunk_id, position)
);
`

// sqliteSchema — та же схема для SQLite.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS task_chunks (
    seq           INTEGER PRIMARY KEY AUTOINCREMENT,
    id            TEXT NOT NULL UNIQUE,
    task_group_id TEXT NOT NULL,
    name          TEXT NOT NULL,
    is_dry_run    BOOLEAN NOT NULL,
    user_id       TEXT,
    item_count    INTEGER NOT NULL DEFAULT 0 CHECK (item_count <= 200),
    completed_at  TIMESTAMP,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_chunks_group ON task_chunks(task_group_id, seq);

CREATE TABLE IF NOT EXISTS task_items (
    id               TEXT PRIMARY KEY,
    chunk_id         TEXT NOT NULL REFERENCES task_chunks(id),
    position         INTEGER NOT NULL,
    input_data       TEXT,
    transformed_data TEXT,
    remark           TEXT,
    status           TEXT NOT NULL CHECK (status IN ('pending', 'success', 'error')),
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL,
    UNIQUE (chunk_id, position)
);
`

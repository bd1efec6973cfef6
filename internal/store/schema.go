package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    outcome TEXT NOT NULL,
    exit_code INTEGER NOT NULL DEFAULT 0,
    list_output TEXT,
    install_output TEXT,
    error TEXT,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_package ON runs(package);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

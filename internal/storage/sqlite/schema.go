package sqlite

const schema = `
-- Fitness runs table (one row per evaluation)
CREATE TABLE IF NOT EXISTS fitness_runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    verdict TEXT NOT NULL CHECK(verdict IN ('excellent', 'good', 'functional', 'critical')),
    files_ok INTEGER NOT NULL DEFAULT 0,
    integrity_ok INTEGER NOT NULL DEFAULT 0,
    governance_ok INTEGER NOT NULL DEFAULT 0,
    deps_ok INTEGER NOT NULL DEFAULT 0,
    connectivity_ok INTEGER NOT NULL DEFAULT 0,
    unknown_docs INTEGER NOT NULL DEFAULT 0 CHECK(unknown_docs >= 0),
    summary TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_fitness_runs_started_at ON fitness_runs(started_at);
CREATE INDEX IF NOT EXISTS idx_fitness_runs_verdict ON fitness_runs(verdict);
`

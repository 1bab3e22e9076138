package store

const schema = `
CREATE TABLE IF NOT EXISTS picks (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    section   TEXT NOT NULL,
    source    TEXT NOT NULL,
    title     TEXT NOT NULL,
    url       TEXT NOT NULL DEFAULT '',
    stars     INTEGER,
    views     INTEGER,
    score     INTEGER NOT NULL DEFAULT 0,
    reason    TEXT NOT NULL DEFAULT '',
    picked_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_picks_section ON picks(section);
CREATE INDEX IF NOT EXISTS idx_picks_source ON picks(source);
CREATE INDEX IF NOT EXISTS idx_picks_picked_at ON picks(picked_at);
`

package db

import "database/sql"

func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    owner      TEXT    NOT NULL,
    name       TEXT    NOT NULL,
    site_url   TEXT    NOT NULL,
    api_key    TEXT    NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner);

CREATE TABLE IF NOT EXISTS visits (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    visitor_id TEXT    NOT NULL DEFAULT '',
    ip         TEXT    NOT NULL DEFAULT '',
    country    TEXT    NOT NULL DEFAULT '',
    region     TEXT    NOT NULL DEFAULT '',
    city       TEXT    NOT NULL DEFAULT '',
    latitude   REAL    NOT NULL DEFAULT 0,
    longitude  REAL    NOT NULL DEFAULT 0,
    user_agent TEXT    NOT NULL DEFAULT '',
    browser    TEXT    NOT NULL DEFAULT '',
    os         TEXT    NOT NULL DEFAULT '',
    device     TEXT    NOT NULL DEFAULT '',
    path       TEXT    NOT NULL DEFAULT '/',
    referrer   TEXT    NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_visits_project_created ON visits(project_id, created_at DESC);

CREATE TABLE IF NOT EXISTS ownership_tokens (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    site_url   TEXT    NOT NULL UNIQUE,
    code       TEXT    NOT NULL,
    verified   INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

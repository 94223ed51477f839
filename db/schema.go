// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	company TEXT,
	email TEXT,
	phone TEXT,
	address TEXT,
	type TEXT CHECK(type IS NULL OR type IN ('lead', 'customer', 'partner')),
	industry TEXT,
	company_size TEXT,
	engagement_level TEXT,
	lead_score INTEGER,
	notes TEXT,
	tags TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
CREATE INDEX IF NOT EXISTS idx_contacts_type ON contacts(type);

CREATE TABLE IF NOT EXISTS companies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	industry TEXT,
	website TEXT,
	contact_email TEXT,
	phone_number TEXT,
	company_size TEXT,
	address TEXT,
	description TEXT,
	tags TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS deals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	value REAL,
	stage TEXT NOT NULL,
	expected_close_date DATETIME,
	notes TEXT,
	contact_id INTEGER,
	tags TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id)
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_contact_id ON deals(contact_id);

CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL CHECK(type IN ('call', 'meeting', 'task', 'email')),
	title TEXT NOT NULL,
	description TEXT,
	due_date DATETIME,
	completed INTEGER NOT NULL DEFAULT 0,
	outcome TEXT,
	contact_id INTEGER,
	deal_id INTEGER,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id),
	FOREIGN KEY (deal_id) REFERENCES deals(id)
);

CREATE INDEX IF NOT EXISTS idx_activities_contact_id ON activities(contact_id);
CREATE INDEX IF NOT EXISTS idx_activities_due_date ON activities(due_date);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

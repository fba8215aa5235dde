// Package database opens the postgres database of the development API.
package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS student (
	id                 SERIAL PRIMARY KEY,
	admission_number   TEXT NOT NULL DEFAULT '',
	full_name          TEXT NOT NULL,
	class_name         TEXT NOT NULL,
	gender             TEXT NOT NULL,
	date_of_birth      TEXT NOT NULL DEFAULT '',
	parent_name        TEXT NOT NULL,
	parent_phone       TEXT NOT NULL,
	parent_email       TEXT NOT NULL DEFAULT '',
	address            TEXT NOT NULL DEFAULT '',
	blood_group        TEXT NOT NULL DEFAULT '',
	allergies          TEXT NOT NULL DEFAULT '',
	medical_conditions TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'Active',
	admission_date     TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL DEFAULT '',
	updated_at         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS student_class_name_idx ON student (class_name);`

// Open connects to the database at url and waits for it to be ready.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

// Migrate creates the tables that do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS report_requests (
  id          VARCHAR(32)  PRIMARY KEY,
  json_key    TEXT         NOT NULL,
  html_key    TEXT         NOT NULL,
  status      VARCHAR(32)  NOT NULL,
  created_at  TIMESTAMPTZ  NOT NULL,
  updated_at  TIMESTAMPTZ  NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS report_errors (
  id           BIGSERIAL    PRIMARY KEY,
  request_id   VARCHAR(32)  NOT NULL,
  phase        VARCHAR(32)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSONB        NOT NULL DEFAULT '{}'::jsonb,
  created_at   TIMESTAMPTZ  NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_report_errors_request ON report_errors (request_id, created_at)`,
}

// EnsureSchema creates the ledger tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

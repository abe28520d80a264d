package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/scanora/internal/domain/reports"
)

type ReportRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db, now: time.Now}
}

// Save insert/update request row
func (r *ReportRepository) Save(ctx context.Context, req *domain.Request) error {
	const q = `
INSERT INTO report_requests (id, json_key, html_key, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 updated_at = EXCLUDED.updated_at;`

	created := req.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	updated := req.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	_, err := r.db.ExecContext(ctx, q,
		req.ID, req.JSONKey, req.HTMLKey, stringOrDash(string(req.Status)), created, updated,
	)
	return err
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	const q = `UPDATE report_requests SET status = $1, updated_at = $2 WHERE id = $3;`
	res, err := r.db.ExecContext(ctx, q, string(status), r.now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) Get(ctx context.Context, id string) (*domain.Request, error) {
	const q = `
SELECT id, json_key, html_key, status, created_at, updated_at
FROM report_requests
WHERE id = $1 LIMIT 1;`
	var req domain.Request
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&req.ID, &req.JSONKey, &req.HTMLKey, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

package mysql

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
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 updated_at=VALUES(updated_at);
`
	created := req.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	updated := req.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	_, err := r.db.ExecContext(ctx, q,
		req.ID, req.JSONKey, req.HTMLKey, stringOrDash(string(req.Status)), created.UTC(), updated.UTC(),
	)
	return err
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	const q = `UPDATE report_requests SET status=?, updated_at=? WHERE id=?;`
	res, err := r.db.ExecContext(ctx, q, string(status), r.now().UTC(), id)
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

// Get by request id
func (r *ReportRepository) Get(ctx context.Context, id string) (*domain.Request, error) {
	const q = `
SELECT id, json_key, html_key, status, created_at, updated_at
FROM report_requests
WHERE id=? LIMIT 1;
`
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

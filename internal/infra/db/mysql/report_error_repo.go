package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/scanora/internal/domain/reporterrors"
)

type ReportErrorRepository struct {
	db *sql.DB
}

func NewReportErrorRepository(db *sql.DB) *ReportErrorRepository {
	return &ReportErrorRepository{db: db}
}

func (r *ReportErrorRepository) Save(ctx context.Context, e *domain.ReportError) error {
	const q = `
INSERT INTO report_errors
  (request_id, phase, message, details_json, created_at)
VALUES (?,?,?,?,?)
`
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(e.RequestID), stringOrDash(string(e.Phase)), msg, detailsOrEmpty(e.DetailsJSON), created.UTC(),
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

func (r *ReportErrorRepository) ListByRequest(ctx context.Context, requestID string, limit int) ([]*domain.ReportError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, request_id, phase, message, details_json, created_at
FROM report_errors
WHERE request_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, requestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ReportError
	for rows.Next() {
		var e domain.ReportError
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Phase, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

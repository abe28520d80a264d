package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/scanora/internal/domain/reporterrors"
)

type ReportErrorRepository struct{ db *sql.DB }

func NewReportErrorRepository(db *sql.DB) *ReportErrorRepository {
	return &ReportErrorRepository{db: db}
}

func (r *ReportErrorRepository) Save(ctx context.Context, e *domain.ReportError) error {
	const q = `
INSERT INTO report_errors (request_id, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id;`
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return r.db.QueryRowContext(ctx, q,
		stringOrDash(e.RequestID), stringOrDash(string(e.Phase)), msg, detailsOrEmpty(e.DetailsJSON), created,
	).Scan(&e.ID)
}

func (r *ReportErrorRepository) ListByRequest(ctx context.Context, requestID string, limit int) ([]*domain.ReportError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, request_id, phase, message, details_json::text, created_at
FROM report_errors
WHERE request_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
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

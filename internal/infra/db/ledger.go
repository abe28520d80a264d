// Package db selects the SQL request ledger.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/scanora/internal/config"
	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/infra/db/mysql"
	"github.com/bryanwahyu/scanora/internal/infra/db/postgres"
)

// Ledger bundles the repositories backed by one connection. A zero Ledger
// (driver "none") has nil repositories and a nil DB.
type Ledger struct {
	DB       *sql.DB
	Requests reports.Repository
	Errors   reporterrors.Repository
}

// Open connects to the configured database and creates the ledger tables.
func Open(ctx context.Context, cfg *config.Config) (*Ledger, error) {
	switch cfg.Database.Driver {
	case "", "none":
		return &Ledger{}, nil
	case "mysql":
		conn, err := mysql.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysql.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("mysql schema: %w", err)
		}
		return &Ledger{
			DB:       conn,
			Requests: mysql.NewReportRepository(conn),
			Errors:   mysql.NewReportErrorRepository(conn),
		}, nil
	case "postgres":
		conn, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return &Ledger{
			DB:       conn,
			Requests: postgres.NewReportRepository(conn),
			Errors:   postgres.NewReportErrorRepository(conn),
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// Close releases the connection pool, if any.
func (l *Ledger) Close() error {
	if l.DB == nil {
		return nil
	}
	return l.DB.Close()
}

// Check pings the database; a ledger without a database is always healthy.
func (l *Ledger) Check(ctx context.Context) error {
	if l.DB == nil {
		return nil
	}
	return l.DB.PingContext(ctx)
}

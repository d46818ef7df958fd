package handlers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SimpleRow adapts a scan callback to pgx.Row for handler tests.
type SimpleRow struct {
	scan func(dest ...any) error
}

func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// StubExecutor routes SQL calls to callbacks so handler tests can run
// without a database.
type StubExecutor struct {
	ExecFunc     func(query string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(query string, args ...any) pgx.Row
}

func (s *StubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.ExecFunc == nil {
		return pgconn.CommandTag{}, nil
	}
	return s.ExecFunc(query, args...)
}

func (s *StubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.QueryRowFunc == nil {
		return SimpleRow{}
	}
	return s.QueryRowFunc(query, args...)
}

func (s *StubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

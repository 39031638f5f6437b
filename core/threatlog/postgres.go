package threatlog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations that create the waf_threats table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const insertRecord = `INSERT INTO waf_threats
	(incident_id, request_id, occurred_at, ip, user_agent, uri, method, threat, category, input_sample, input_length)
	VALUES ($1, $2, $3::timestamptz, $4, $5, $6, $7, $8, $9, $10, $11)`

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink stores records in the waf_threats table.
type PostgresSink struct {
	db Execer
}

// NewPostgresSink returns a sink using db.
func NewPostgresSink(db Execer) *PostgresSink {
	return &PostgresSink{db: db}
}

// ConnectPostgres opens a pool and brings the schema up to date.
func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("threatlog: connect postgres: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate applies the embedded migrations with goose. goose works on
// database/sql, so the pool is wrapped with pgx's stdlib adapter.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		return fmt.Errorf("threatlog: init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("threatlog: migrate: %w", err)
	}
	return nil
}

// Write inserts r.
func (s *PostgresSink) Write(ctx context.Context, r Record) error {
	_, err := s.db.Exec(ctx, insertRecord,
		r.IncidentID, r.RequestID, r.Timestamp, r.IP, r.UserAgent, r.URI,
		r.Method, r.Threat, r.Category, r.InputSample, r.InputLength,
	)
	if err != nil {
		return fmt.Errorf("threatlog: insert record: %w", err)
	}
	return nil
}

// Package postgres keeps building documents in a PostgreSQL jsonb table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const schema = `CREATE TABLE IF NOT EXISTS buildings (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	year       TEXT NOT NULL,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, year)
)`

const selectBuilding = `SELECT id, document FROM buildings WHERE name = $1 AND year = $2 LIMIT 1`

const upsertBuilding = `INSERT INTO buildings (id, name, year, document, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	year = EXCLUDED.year,
	document = EXCLUDED.document,
	updated_at = now()`

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Store is a domain.BuildingStore backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the buildings table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create buildings table: %w", err)
	}
	return nil
}

func (s *Store) FindBuilding(ctx context.Context, name, year string) (domain.Building, error) {
	var (
		id  string
		doc []byte
	)
	err := s.db.QueryRowContext(ctx, selectBuilding, name, year).Scan(&id, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Building{}, domain.ErrBuildingNotFound
	}
	if err != nil {
		return domain.Building{}, fmt.Errorf("query building: %w", err)
	}

	var b domain.Building
	if err := json.Unmarshal(doc, &b); err != nil {
		return domain.Building{}, fmt.Errorf("decode building %s: %w", id, err)
	}
	b.ID = id
	return b, nil
}

func (s *Store) SaveBuilding(ctx context.Context, b domain.Building) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode building %s: %w", b.ID, err)
	}

	_, err = s.db.ExecContext(ctx, upsertBuilding, b.ID, b.Name, b.Year, doc)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("upsert building %s: %s %s already stored under another id: %w", b.ID, b.Name, b.Year, err)
	}
	if err != nil {
		return fmt.Errorf("upsert building %s: %w", b.ID, err)
	}
	return nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

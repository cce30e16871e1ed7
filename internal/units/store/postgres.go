package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"unitd/internal/units"
	"unitd/pkg/platform/sentinel"
)

// Postgres persists custom definitions in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema creates the custom-definition tables. Applied by deployment
// tooling and by integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS custom_units (
	id          TEXT PRIMARY KEY,
	system      TEXT NOT NULL,
	owner_kind  TEXT NOT NULL,
	owner_user  TEXT NOT NULL DEFAULT '',
	owner_key   TEXT NOT NULL DEFAULT '',
	code        TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	relation    TEXT NOT NULL,
	symbol      TEXT NOT NULL DEFAULT '',
	alias       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (system, owner_user, owner_key, code)
);
CREATE TABLE IF NOT EXISTS custom_dimensions (
	id          TEXT PRIMARY KEY,
	system      TEXT NOT NULL,
	owner_kind  TEXT NOT NULL,
	owner_user  TEXT NOT NULL DEFAULT '',
	owner_key   TEXT NOT NULL DEFAULT '',
	code        TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	relation    TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (system, owner_user, owner_key, code)
);
CREATE INDEX IF NOT EXISTS custom_units_system_owner
	ON custom_units (system, owner_user, owner_key);
CREATE INDEX IF NOT EXISTS custom_dimensions_system_owner
	ON custom_dimensions (system, owner_user, owner_key);
`

// EnsureSchema applies the schema. Idempotent.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure custom definition schema: %w", err)
	}
	return nil
}

func (p *Postgres) ListUnits(ctx context.Context, system string, scope units.Scope) ([]CustomUnitRow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, system, owner_kind, owner_user, owner_key,
		       code, name, relation, symbol, alias, created_at
		FROM custom_units
		WHERE system = $1
		ORDER BY name, code`, system)
	if err != nil {
		return nil, fmt.Errorf("list custom units: %w", err)
	}
	defer rows.Close()

	var out []CustomUnitRow
	for rows.Next() {
		var row CustomUnitRow
		var kind, user, key string
		if err := rows.Scan(&row.ID, &row.System, &kind, &user, &key,
			&row.Code, &row.Name, &row.Relation, &row.Symbol, &row.Alias,
			&row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom unit: %w", err)
		}
		row.Owner = ownerFromColumns(kind, user, key)
		// visibility is the engine's rule, not the database's
		if scope.CanSee(row.Owner) {
			out = append(out, row)
		}
	}
	return out, rows.Err()
}

func (p *Postgres) ListDimensions(ctx context.Context, system string, scope units.Scope) ([]CustomDimensionRow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, system, owner_kind, owner_user, owner_key,
		       code, name, relation, created_at
		FROM custom_dimensions
		WHERE system = $1
		ORDER BY name, code`, system)
	if err != nil {
		return nil, fmt.Errorf("list custom dimensions: %w", err)
	}
	defer rows.Close()

	var out []CustomDimensionRow
	for rows.Next() {
		var row CustomDimensionRow
		var kind, user, key string
		if err := rows.Scan(&row.ID, &row.System, &kind, &user, &key,
			&row.Code, &row.Name, &row.Relation, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom dimension: %w", err)
		}
		row.Owner = ownerFromColumns(kind, user, key)
		if scope.CanSee(row.Owner) {
			out = append(out, row)
		}
	}
	return out, rows.Err()
}

func (p *Postgres) CreateUnit(ctx context.Context, row CustomUnitRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO custom_units
			(id, system, owner_kind, owner_user, owner_key,
			 code, name, relation, symbol, alias, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		row.ID, row.System, string(row.Owner.Kind), row.Owner.UserID,
		row.Owner.Key, row.Code, row.Name, row.Relation, row.Symbol,
		row.Alias, row.CreatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create custom unit: %w", err)
	}
	return nil
}

func (p *Postgres) CreateDimension(ctx context.Context, row CustomDimensionRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO custom_dimensions
			(id, system, owner_kind, owner_user, owner_key,
			 code, name, relation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.ID, row.System, string(row.Owner.Kind), row.Owner.UserID,
		row.Owner.Key, row.Code, row.Name, row.Relation, row.CreatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create custom dimension: %w", err)
	}
	return nil
}

func ownerFromColumns(kind, user, key string) units.Scope {
	switch units.ScopeKind(kind) {
	case units.ScopeUser:
		return units.UserScope(user)
	case units.ScopeUserKeyed:
		return units.UserKeyedScope(user, key)
	default:
		return units.GlobalScope()
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

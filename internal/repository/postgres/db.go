package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"fieldpilot/internal/config"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}

// Pinger reports database reachability for readiness checks.
type Pinger struct {
	db *sqlx.DB
}

// NewPinger wraps a connection pool as a port.HealthChecker.
func NewPinger(db *sqlx.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// isUniqueViolation reports whether err is a unique violation, optionally on a
// specific constraint or index.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), constraint)
}

// filter accumulates tenant-scoped WHERE conditions written with ? bindvars.
type filter struct {
	conds []string
	args  []interface{}
	hasIn bool
}

func newFilter(tenantID uuid.UUID) *filter {
	return &filter{conds: []string{"tenant_id = ?"}, args: []interface{}{tenantID}}
}

func (f *filter) where(cond string, args ...interface{}) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

// in adds "col IN (ids)". The caller must handle an empty slice itself.
func (f *filter) in(col string, ids []uuid.UUID) {
	f.conds = append(f.conds, col+" IN (?)")
	f.args = append(f.args, ids)
	f.hasIn = true
}

// build renders the final query for db's bind type.
func (f *filter) build(db *sqlx.DB, base, orderBy string) (string, []interface{}, error) {
	query := base + " WHERE " + strings.Join(f.conds, " AND ")
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	args := f.args
	if f.hasIn {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return "", nil, err
		}
	}
	return db.Rebind(query), args, nil
}

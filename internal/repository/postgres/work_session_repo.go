package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

const activeSessionIndex = "uq_work_sessions_active_operator"

type workSessionRepo struct {
	db *sqlx.DB
}

// NewWorkSessionRepo creates a new PostgreSQL-backed WorkSessionRepository.
func NewWorkSessionRepo(db *sqlx.DB) port.WorkSessionRepository {
	return &workSessionRepo{db: db}
}

// Start relies on the partial unique index over active sessions to reject a
// second open session for the same operator.
func (r *workSessionRepo) Start(ctx context.Context, s *domain.WorkSession) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	if s.Media == nil {
		s.Media = domain.StringList{}
	}

	query := `INSERT INTO work_sessions (id, tenant_id, job_id, operator_id, date, start_time, end_time,
		notes, media, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TenantID, s.JobID, s.OperatorID, s.Date, s.StartTime, s.EndTime,
		s.Notes, s.Media, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, activeSessionIndex) {
			return domain.ErrActiveSessionExists
		}
		return fmt.Errorf("workSessionRepo.Start: %w", err)
	}
	return nil
}

func (r *workSessionRepo) GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.WorkSession, error) {
	var s domain.WorkSession
	err := r.db.GetContext(ctx, &s,
		"SELECT * FROM work_sessions WHERE id = $1 AND tenant_id = $2", sessionID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("workSessionRepo.GetByID: %w", err)
	}
	return &s, nil
}

func (r *workSessionRepo) GetActive(ctx context.Context, tenantID, operatorID uuid.UUID) (*domain.WorkSession, error) {
	var s domain.WorkSession
	err := r.db.GetContext(ctx, &s,
		`SELECT * FROM work_sessions WHERE tenant_id = $1 AND operator_id = $2 AND end_time IS NULL`,
		tenantID, operatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("workSessionRepo.GetActive: %w", err)
	}
	return &s, nil
}

func (r *workSessionRepo) List(ctx context.Context, tenantID uuid.UUID, f port.WorkSessionFilter) ([]domain.WorkSession, error) {
	sessions := []domain.WorkSession{}
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return sessions, nil
	}

	q := newFilter(tenantID)
	if f.OperatorID != nil {
		q.where("operator_id = ?", *f.OperatorID)
	}
	if f.JobID != nil {
		q.where("job_id = ?", *f.JobID)
	}
	if f.JobIDs != nil {
		q.in("job_id", f.JobIDs)
	}
	if f.ActiveOnly {
		q.where("end_time IS NULL")
	}
	if f.From != nil {
		q.where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		q.where("start_time < ?", *f.To)
	}
	query, args, err := q.build(r.db, "SELECT * FROM work_sessions", "start_time DESC")
	if err != nil {
		return nil, fmt.Errorf("workSessionRepo.List: %w", err)
	}

	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("workSessionRepo.List: %w", err)
	}
	return sessions, nil
}

func (r *workSessionRepo) Update(ctx context.Context, s *domain.WorkSession) error {
	if s.Media == nil {
		s.Media = domain.StringList{}
	}
	query := `UPDATE work_sessions SET end_time = $1, notes = $2, media = $3
		WHERE id = $4 AND tenant_id = $5`
	result, err := r.db.ExecContext(ctx, query, s.EndTime, s.Notes, s.Media, s.ID, s.TenantID)
	if err != nil {
		return fmt.Errorf("workSessionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

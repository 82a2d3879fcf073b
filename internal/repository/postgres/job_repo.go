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

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobRepository.
func NewJobRepo(db *sqlx.DB) port.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	if err := insertJob(ctx, r.db, job); err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

// insertJob assigns the job's ID and timestamps and inserts it through ex,
// which may be the pool or an open transaction.
func insertJob(ctx context.Context, ex sqlx.ExecerContext, job *domain.Job) error {
	job.ID = uuid.New()
	now := time.Now().UTC()
	job.CreatedAt = now
	job.LastUpdated = now
	if job.AssignedOperators == nil {
		job.AssignedOperators = domain.IDList{}
	}

	query := `INSERT INTO jobs (id, tenant_id, title, description, status, priority, client_id,
		assigned_operators, estimated_start, estimated_end, actual_completion, proposal_generated,
		created_by, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := ex.ExecContext(ctx, query,
		job.ID, job.TenantID, job.Title, job.Description, job.Status, job.Priority, job.ClientID,
		job.AssignedOperators, job.EstimatedStart, job.EstimatedEnd, job.ActualCompletion,
		job.ProposalGenerated, job.CreatedBy, job.CreatedAt, job.LastUpdated)
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM jobs WHERE id = $1 AND tenant_id = $2", jobID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context, tenantID uuid.UUID, f port.JobFilter) ([]domain.Job, error) {
	q := newFilter(tenantID)
	if f.Status != "" {
		q.where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q.where("priority = ?", f.Priority)
	}
	if f.ClientID != nil {
		q.where("client_id = ?", *f.ClientID)
	}
	if f.OperatorID != nil {
		q.where("assigned_operators @> ?::jsonb", containsID(*f.OperatorID))
	}
	query, args, err := q.build(r.db, "SELECT * FROM jobs", "last_updated DESC")
	if err != nil {
		return nil, fmt.Errorf("jobRepo.List: %w", err)
	}

	jobs := []domain.Job{}
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("jobRepo.List: %w", err)
	}
	return jobs, nil
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	job.LastUpdated = time.Now().UTC()
	if job.AssignedOperators == nil {
		job.AssignedOperators = domain.IDList{}
	}
	query := `UPDATE jobs SET title = $1, description = $2, status = $3, priority = $4, client_id = $5,
		assigned_operators = $6, estimated_start = $7, estimated_end = $8, actual_completion = $9,
		proposal_generated = $10, last_updated = $11
		WHERE id = $12 AND tenant_id = $13`
	result, err := r.db.ExecContext(ctx, query,
		job.Title, job.Description, job.Status, job.Priority, job.ClientID,
		job.AssignedOperators, job.EstimatedStart, job.EstimatedEnd, job.ActualCompletion,
		job.ProposalGenerated, job.LastUpdated, job.ID, job.TenantID)
	if err != nil {
		return fmt.Errorf("jobRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, tenantID, jobID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM jobs WHERE id = $1 AND tenant_id = $2", jobID, tenantID)
	if err != nil {
		return fmt.Errorf("jobRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// containsID renders a one-element JSON array for jsonb containment.
func containsID(id uuid.UUID) string {
	return fmt.Sprintf("[%q]", id.String())
}

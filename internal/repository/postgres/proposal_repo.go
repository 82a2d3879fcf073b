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

type proposalRepo struct {
	db *sqlx.DB
}

// NewProposalRepo creates a new PostgreSQL-backed ProposalRepository.
func NewProposalRepo(db *sqlx.DB) port.ProposalRepository {
	return &proposalRepo{db: db}
}

func specsOrEmpty(specs []byte) []byte {
	if len(specs) == 0 {
		return []byte("{}")
	}
	return specs
}

func (r *proposalRepo) Create(ctx context.Context, p *domain.Proposal) error {
	if err := insertProposal(ctx, r.db, p); err != nil {
		return fmt.Errorf("proposalRepo.Create: %w", err)
	}
	return nil
}

func insertProposal(ctx context.Context, ex sqlx.ExecerContext, p *domain.Proposal) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO proposals (id, tenant_id, job_id, specs_json, images, ai_generated_text,
		price_estimate, version, status, converted_job_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := ex.ExecContext(ctx, query,
		p.ID, p.TenantID, p.JobID, specsOrEmpty(p.SpecsJSON), p.Images, p.AIGeneratedText,
		p.PriceEstimate, p.Version, p.Status, p.ConvertedJobID, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	return err
}

// CreateForJob locks the job row so two managers cannot both open a proposal
// for it, then inserts the proposal and flags the job.
func (r *proposalRepo) CreateForJob(ctx context.Context, p *domain.Proposal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("proposalRepo.CreateForJob begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var jobID uuid.UUID
	err = tx.GetContext(ctx, &jobID,
		"SELECT id FROM jobs WHERE id = $1 AND tenant_id = $2 FOR UPDATE", p.JobID, p.TenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("proposalRepo.CreateForJob lock job: %w", err)
	}

	var open int
	err = tx.GetContext(ctx, &open,
		"SELECT COUNT(*) FROM proposals WHERE job_id = $1 AND tenant_id = $2 AND status <> $3",
		p.JobID, p.TenantID, domain.ProposalStatusRejected)
	if err != nil {
		return fmt.Errorf("proposalRepo.CreateForJob count open: %w", err)
	}
	if open > 0 {
		return domain.ErrProposalExists
	}

	if err := insertProposal(ctx, tx, p); err != nil {
		return fmt.Errorf("proposalRepo.CreateForJob insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE jobs SET proposal_generated = TRUE, last_updated = $1 WHERE id = $2 AND tenant_id = $3",
		p.CreatedAt, p.JobID, p.TenantID); err != nil {
		return fmt.Errorf("proposalRepo.CreateForJob flag job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("proposalRepo.CreateForJob commit: %w", err)
	}
	return nil
}

// ConvertToJob holds the proposal row lock across the job insert, so a
// concurrent conversion sees converted_job_id and stops.
func (r *proposalRepo) ConvertToJob(ctx context.Context, p *domain.Proposal, job *domain.Job) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("proposalRepo.ConvertToJob begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current domain.Proposal
	err = tx.GetContext(ctx, &current,
		"SELECT * FROM proposals WHERE id = $1 AND tenant_id = $2 FOR UPDATE", p.ID, p.TenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("proposalRepo.ConvertToJob lock proposal: %w", err)
	}
	if current.ConvertedJobID != nil {
		return domain.ErrProposalAlreadyConverted
	}
	if current.Status != domain.ProposalStatusApproved {
		return domain.ErrProposalNotApproved
	}

	if err := insertJob(ctx, tx, job); err != nil {
		return fmt.Errorf("proposalRepo.ConvertToJob insert job: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE proposals SET converted_job_id = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4",
		job.ID, job.CreatedAt, p.ID, p.TenantID); err != nil {
		return fmt.Errorf("proposalRepo.ConvertToJob stamp proposal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("proposalRepo.ConvertToJob commit: %w", err)
	}
	p.ConvertedJobID = &job.ID
	p.UpdatedAt = job.CreatedAt
	return nil
}

func (r *proposalRepo) GetByID(ctx context.Context, tenantID, proposalID uuid.UUID) (*domain.Proposal, error) {
	var p domain.Proposal
	err := r.db.GetContext(ctx, &p,
		"SELECT * FROM proposals WHERE id = $1 AND tenant_id = $2", proposalID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("proposalRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *proposalRepo) List(ctx context.Context, tenantID uuid.UUID, f port.ProposalFilter) ([]domain.Proposal, error) {
	proposals := []domain.Proposal{}
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return proposals, nil
	}

	q := newFilter(tenantID)
	if f.Status != "" {
		q.where("status = ?", f.Status)
	}
	if f.JobID != nil {
		q.where("job_id = ?", *f.JobID)
	}
	if f.JobIDs != nil {
		q.in("job_id", f.JobIDs)
	}
	query, args, err := q.build(r.db, "SELECT * FROM proposals", "updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("proposalRepo.List: %w", err)
	}

	if err := r.db.SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, fmt.Errorf("proposalRepo.List: %w", err)
	}
	return proposals, nil
}

const updateProposalQuery = `UPDATE proposals SET specs_json = $1, images = $2, ai_generated_text = $3,
	price_estimate = $4, version = $5, status = $6, converted_job_id = $7, updated_at = $8
	WHERE id = $9 AND tenant_id = $10`

func (r *proposalRepo) Update(ctx context.Context, p *domain.Proposal) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, updateProposalQuery,
		specsOrEmpty(p.SpecsJSON), p.Images, p.AIGeneratedText, p.PriceEstimate, p.Version,
		p.Status, p.ConvertedJobID, p.UpdatedAt, p.ID, p.TenantID)
	if err != nil {
		return fmt.Errorf("proposalRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *proposalRepo) UpdateWithRevision(ctx context.Context, p *domain.Proposal, prev *domain.ProposalVersion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("proposalRepo.UpdateWithRevision begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	prev.CreatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO proposal_versions (proposal_id, tenant_id, version, specs_json, ai_generated_text,
			price_estimate, edited_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		prev.ProposalID, prev.TenantID, prev.Version, specsOrEmpty(prev.SpecsJSON),
		prev.AIGeneratedText, prev.PriceEstimate, prev.EditedBy, prev.CreatedAt)
	if err != nil {
		return fmt.Errorf("proposalRepo.UpdateWithRevision insert version: %w", err)
	}

	p.UpdatedAt = prev.CreatedAt
	result, err := tx.ExecContext(ctx, updateProposalQuery,
		specsOrEmpty(p.SpecsJSON), p.Images, p.AIGeneratedText, p.PriceEstimate, p.Version,
		p.Status, p.ConvertedJobID, p.UpdatedAt, p.ID, p.TenantID)
	if err != nil {
		return fmt.Errorf("proposalRepo.UpdateWithRevision: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("proposalRepo.UpdateWithRevision commit: %w", err)
	}
	return nil
}

func (r *proposalRepo) ListVersions(ctx context.Context, tenantID, proposalID uuid.UUID) ([]domain.ProposalVersion, error) {
	versions := []domain.ProposalVersion{}
	err := r.db.SelectContext(ctx, &versions,
		`SELECT * FROM proposal_versions WHERE proposal_id = $1 AND tenant_id = $2
		 ORDER BY version ASC`, proposalID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("proposalRepo.ListVersions: %w", err)
	}
	return versions, nil
}

func (r *proposalRepo) Delete(ctx context.Context, tenantID, proposalID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM proposals WHERE id = $1 AND tenant_id = $2", proposalID, tenantID)
	if err != nil {
		return fmt.Errorf("proposalRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

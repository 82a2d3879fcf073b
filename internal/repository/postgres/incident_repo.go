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

type incidentRepo struct {
	db *sqlx.DB
}

// NewIncidentRepo creates a new PostgreSQL-backed IncidentRepository.
func NewIncidentRepo(db *sqlx.DB) port.IncidentRepository {
	return &incidentRepo{db: db}
}

func (r *incidentRepo) Create(ctx context.Context, inc *domain.IncidentReport) error {
	inc.ID = uuid.New()
	now := time.Now().UTC()
	inc.CreatedAt = now
	inc.UpdatedAt = now
	if inc.Photos == nil {
		inc.Photos = domain.StringList{}
	}

	query := `INSERT INTO incident_reports (id, tenant_id, job_id, job_title, operator_id, severity,
		description, photos, voice_note_recorded, generated_narrative, review_notes,
		resolution_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		inc.ID, inc.TenantID, inc.JobID, inc.JobTitle, inc.OperatorID, inc.Severity,
		inc.Description, inc.Photos, inc.VoiceNoteRecorded, inc.GeneratedNarrative, inc.ReviewNotes,
		inc.ResolutionStatus, inc.CreatedAt, inc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("incidentRepo.Create: %w", err)
	}
	return nil
}

func (r *incidentRepo) GetByID(ctx context.Context, tenantID, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	var inc domain.IncidentReport
	err := r.db.GetContext(ctx, &inc,
		"SELECT * FROM incident_reports WHERE id = $1 AND tenant_id = $2", incidentID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("incidentRepo.GetByID: %w", err)
	}
	return &inc, nil
}

func (r *incidentRepo) List(ctx context.Context, tenantID uuid.UUID, f port.IncidentFilter) ([]domain.IncidentReport, error) {
	incidents := []domain.IncidentReport{}
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return incidents, nil
	}

	q := newFilter(tenantID)
	if f.Severity != "" {
		q.where("severity = ?", f.Severity)
	}
	if f.Status != "" {
		q.where("resolution_status = ?", f.Status)
	}
	if f.OperatorID != nil {
		q.where("operator_id = ?", *f.OperatorID)
	}
	if f.JobID != nil {
		q.where("job_id = ?", *f.JobID)
	}
	if f.JobIDs != nil {
		q.in("job_id", f.JobIDs)
	}
	query, args, err := q.build(r.db, "SELECT * FROM incident_reports", "created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("incidentRepo.List: %w", err)
	}

	if err := r.db.SelectContext(ctx, &incidents, query, args...); err != nil {
		return nil, fmt.Errorf("incidentRepo.List: %w", err)
	}
	return incidents, nil
}

func (r *incidentRepo) Update(ctx context.Context, inc *domain.IncidentReport) error {
	inc.UpdatedAt = time.Now().UTC()
	if inc.Photos == nil {
		inc.Photos = domain.StringList{}
	}
	query := `UPDATE incident_reports SET severity = $1, description = $2, photos = $3,
		voice_note_recorded = $4, generated_narrative = $5, review_notes = $6,
		resolution_status = $7, updated_at = $8
		WHERE id = $9 AND tenant_id = $10`
	result, err := r.db.ExecContext(ctx, query,
		inc.Severity, inc.Description, inc.Photos, inc.VoiceNoteRecorded, inc.GeneratedNarrative,
		inc.ReviewNotes, inc.ResolutionStatus, inc.UpdatedAt, inc.ID, inc.TenantID)
	if err != nil {
		return fmt.Errorf("incidentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *incidentRepo) Delete(ctx context.Context, tenantID, incidentID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM incident_reports WHERE id = $1 AND tenant_id = $2", incidentID, tenantID)
	if err != nil {
		return fmt.Errorf("incidentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

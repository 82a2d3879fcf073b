package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	gcfs "cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

type incidentDoc struct {
	TenantID           string    `firestore:"tenant_id"`
	JobID              string    `firestore:"job_id"`
	JobTitle           string    `firestore:"job_title"`
	OperatorID         string    `firestore:"operator_id"`
	Severity           string    `firestore:"severity"`
	Description        string    `firestore:"description"`
	Photos             []string  `firestore:"photos"`
	VoiceNoteRecorded  bool      `firestore:"voice_note_recorded"`
	GeneratedNarrative string    `firestore:"generated_narrative"`
	ReviewNotes        string    `firestore:"review_notes"`
	ResolutionStatus   string    `firestore:"resolution_status"`
	CreatedAt          time.Time `firestore:"created_at"`
	UpdatedAt          time.Time `firestore:"updated_at"`
}

func decodeIncident(snap *gcfs.DocumentSnapshot) (domain.IncidentReport, error) {
	var doc incidentDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.IncidentReport{}, err
	}
	return domain.IncidentReport{
		ID:                 parseID(snap.Ref.ID),
		TenantID:           parseID(doc.TenantID),
		JobID:              parseID(doc.JobID),
		JobTitle:           doc.JobTitle,
		OperatorID:         parseID(doc.OperatorID),
		Severity:           domain.IncidentSeverity(doc.Severity),
		Description:        doc.Description,
		Photos:             domain.StringList(doc.Photos),
		VoiceNoteRecorded:  doc.VoiceNoteRecorded,
		GeneratedNarrative: doc.GeneratedNarrative,
		ReviewNotes:        doc.ReviewNotes,
		ResolutionStatus:   domain.IncidentStatus(doc.ResolutionStatus),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}, nil
}

type incidentRepo struct {
	client *gcfs.Client
}

// NewIncidentRepo creates a Firestore-backed IncidentRepository.
func NewIncidentRepo(client *gcfs.Client) port.IncidentRepository {
	return &incidentRepo{client: client}
}

func (r *incidentRepo) col(tenantID uuid.UUID) *gcfs.CollectionRef {
	return tenantCol(r.client, tenantID, colIncidents)
}

func (r *incidentRepo) Create(ctx context.Context, inc *domain.IncidentReport) error {
	inc.ID = uuid.New()
	now := time.Now().UTC()
	inc.CreatedAt = now
	inc.UpdatedAt = now
	if inc.Photos == nil {
		inc.Photos = domain.StringList{}
	}

	doc := incidentDoc{
		TenantID:           inc.TenantID.String(),
		JobID:              inc.JobID.String(),
		JobTitle:           inc.JobTitle,
		OperatorID:         inc.OperatorID.String(),
		Severity:           string(inc.Severity),
		Description:        inc.Description,
		Photos:             []string(inc.Photos),
		VoiceNoteRecorded:  inc.VoiceNoteRecorded,
		GeneratedNarrative: inc.GeneratedNarrative,
		ReviewNotes:        inc.ReviewNotes,
		ResolutionStatus:   string(inc.ResolutionStatus),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := r.col(inc.TenantID).Doc(inc.ID.String()).Create(ctx, doc); err != nil {
		return fmt.Errorf("incidentRepo.Create: %w", err)
	}
	return nil
}

func (r *incidentRepo) GetByID(ctx context.Context, tenantID, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	snap, err := r.col(tenantID).Doc(incidentID.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("incidentRepo.GetByID: %w", err)
	}
	inc, err := decodeIncident(snap)
	if err != nil {
		return nil, fmt.Errorf("incidentRepo.GetByID decode: %w", err)
	}
	return &inc, nil
}

func (r *incidentRepo) List(ctx context.Context, tenantID uuid.UUID, f port.IncidentFilter) ([]domain.IncidentReport, error) {
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return []domain.IncidentReport{}, nil
	}

	q := r.col(tenantID).Query
	if f.Severity != "" {
		q = q.Where("severity", "==", string(f.Severity))
	}
	if f.Status != "" {
		q = q.Where("resolution_status", "==", string(f.Status))
	}
	if f.OperatorID != nil {
		q = q.Where("operator_id", "==", f.OperatorID.String())
	}
	if f.JobID != nil {
		q = q.Where("job_id", "==", f.JobID.String())
	}

	var incidents []domain.IncidentReport
	var err error
	if f.JobIDs != nil {
		incidents, err = listIn(ctx, q, "job_id", f.JobIDs, decodeIncident)
	} else {
		incidents, err = collect(q.Documents(ctx), decodeIncident)
	}
	if err != nil {
		return nil, fmt.Errorf("incidentRepo.List: %w", err)
	}
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})
	return incidents, nil
}

func (r *incidentRepo) Update(ctx context.Context, inc *domain.IncidentReport) error {
	inc.UpdatedAt = time.Now().UTC()
	photos := []string(inc.Photos)
	if photos == nil {
		photos = []string{}
	}
	_, err := r.col(inc.TenantID).Doc(inc.ID.String()).Update(ctx, []gcfs.Update{
		{Path: "severity", Value: string(inc.Severity)},
		{Path: "description", Value: inc.Description},
		{Path: "photos", Value: photos},
		{Path: "voice_note_recorded", Value: inc.VoiceNoteRecorded},
		{Path: "generated_narrative", Value: inc.GeneratedNarrative},
		{Path: "review_notes", Value: inc.ReviewNotes},
		{Path: "resolution_status", Value: string(inc.ResolutionStatus)},
		{Path: "updated_at", Value: inc.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("incidentRepo.Update: %w", err)
	}
	return nil
}

func (r *incidentRepo) Delete(ctx context.Context, tenantID, incidentID uuid.UUID) error {
	_, err := r.col(tenantID).Doc(incidentID.String()).Delete(ctx, gcfs.Exists)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("incidentRepo.Delete: %w", err)
	}
	return nil
}

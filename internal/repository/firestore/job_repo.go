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

type jobDoc struct {
	TenantID          string     `firestore:"tenant_id"`
	Title             string     `firestore:"title"`
	Description       string     `firestore:"description"`
	Status            string     `firestore:"status"`
	Priority          string     `firestore:"priority"`
	ClientID          string     `firestore:"client_id"`
	AssignedOperators []string   `firestore:"assigned_operators"`
	EstimatedStart    *time.Time `firestore:"estimated_start"`
	EstimatedEnd      *time.Time `firestore:"estimated_end"`
	ActualCompletion  *time.Time `firestore:"actual_completion"`
	ProposalGenerated bool       `firestore:"proposal_generated"`
	CreatedBy         string     `firestore:"created_by"`
	CreatedAt         time.Time  `firestore:"created_at"`
	LastUpdated       time.Time  `firestore:"last_updated"`
}

func toJobDoc(j *domain.Job) jobDoc {
	return jobDoc{
		TenantID:          j.TenantID.String(),
		Title:             j.Title,
		Description:       j.Description,
		Status:            string(j.Status),
		Priority:          string(j.Priority),
		ClientID:          j.ClientID.String(),
		AssignedOperators: j.AssignedOperators.Strings(),
		EstimatedStart:    j.EstimatedStart,
		EstimatedEnd:      j.EstimatedEnd,
		ActualCompletion:  j.ActualCompletion,
		ProposalGenerated: j.ProposalGenerated,
		CreatedBy:         j.CreatedBy.String(),
		CreatedAt:         j.CreatedAt,
		LastUpdated:       j.LastUpdated,
	}
}

func decodeJob(snap *gcfs.DocumentSnapshot) (domain.Job, error) {
	var doc jobDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Job{}, err
	}
	return domain.Job{
		ID:                parseID(snap.Ref.ID),
		TenantID:          parseID(doc.TenantID),
		Title:             doc.Title,
		Description:       doc.Description,
		Status:            domain.JobStatus(doc.Status),
		Priority:          domain.JobPriority(doc.Priority),
		ClientID:          parseID(doc.ClientID),
		AssignedOperators: domain.ParseIDList(doc.AssignedOperators),
		EstimatedStart:    doc.EstimatedStart,
		EstimatedEnd:      doc.EstimatedEnd,
		ActualCompletion:  doc.ActualCompletion,
		ProposalGenerated: doc.ProposalGenerated,
		CreatedBy:         parseID(doc.CreatedBy),
		CreatedAt:         doc.CreatedAt,
		LastUpdated:       doc.LastUpdated,
	}, nil
}

type jobRepo struct {
	client *gcfs.Client
}

// NewJobRepo creates a Firestore-backed JobRepository.
func NewJobRepo(client *gcfs.Client) port.JobRepository {
	return &jobRepo{client: client}
}

func (r *jobRepo) col(tenantID uuid.UUID) *gcfs.CollectionRef {
	return tenantCol(r.client, tenantID, colJobs)
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	job.ID = uuid.New()
	now := time.Now().UTC()
	job.CreatedAt = now
	job.LastUpdated = now
	if job.AssignedOperators == nil {
		job.AssignedOperators = domain.IDList{}
	}

	if _, err := r.col(job.TenantID).Doc(job.ID.String()).Create(ctx, toJobDoc(job)); err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	snap, err := r.col(tenantID).Doc(jobID.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	job, err := decodeJob(snap)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.GetByID decode: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context, tenantID uuid.UUID, f port.JobFilter) ([]domain.Job, error) {
	q := r.col(tenantID).Query
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.Priority != "" {
		q = q.Where("priority", "==", string(f.Priority))
	}
	if f.ClientID != nil {
		q = q.Where("client_id", "==", f.ClientID.String())
	}
	if f.OperatorID != nil {
		q = q.Where("assigned_operators", "array-contains", f.OperatorID.String())
	}

	jobs, err := collect(q.Documents(ctx), decodeJob)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.List: %w", err)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].LastUpdated.After(jobs[j].LastUpdated)
	})
	return jobs, nil
}

// Update overwrites every mutable field; created_at and created_by are kept.
func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	job.LastUpdated = time.Now().UTC()
	doc := toJobDoc(job)
	_, err := r.col(job.TenantID).Doc(job.ID.String()).Update(ctx, []gcfs.Update{
		{Path: "title", Value: doc.Title},
		{Path: "description", Value: doc.Description},
		{Path: "status", Value: doc.Status},
		{Path: "priority", Value: doc.Priority},
		{Path: "client_id", Value: doc.ClientID},
		{Path: "assigned_operators", Value: doc.AssignedOperators},
		{Path: "estimated_start", Value: doc.EstimatedStart},
		{Path: "estimated_end", Value: doc.EstimatedEnd},
		{Path: "actual_completion", Value: doc.ActualCompletion},
		{Path: "proposal_generated", Value: doc.ProposalGenerated},
		{Path: "last_updated", Value: doc.LastUpdated},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("jobRepo.Update: %w", err)
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, tenantID, jobID uuid.UUID) error {
	_, err := r.col(tenantID).Doc(jobID.String()).Delete(ctx, gcfs.Exists)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("jobRepo.Delete: %w", err)
	}
	return nil
}

package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	gcfs "cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// Specs are stored as their JSON text so arbitrary keys survive round trips.
type proposalDoc struct {
	TenantID        string    `firestore:"tenant_id"`
	JobID           string    `firestore:"job_id"`
	SpecsJSON       string    `firestore:"specs_json"`
	Images          []string  `firestore:"images"`
	AIGeneratedText string    `firestore:"ai_generated_text"`
	PriceEstimate   float64   `firestore:"price_estimate"`
	Version         int       `firestore:"version"`
	Status          string    `firestore:"status"`
	ConvertedJobID  *string   `firestore:"converted_job_id"`
	CreatedBy       string    `firestore:"created_by"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

type versionDoc struct {
	TenantID        string    `firestore:"tenant_id"`
	Version         int       `firestore:"version"`
	SpecsJSON       string    `firestore:"specs_json"`
	AIGeneratedText string    `firestore:"ai_generated_text"`
	PriceEstimate   float64   `firestore:"price_estimate"`
	EditedBy        string    `firestore:"edited_by"`
	CreatedAt       time.Time `firestore:"created_at"`
}

func specsText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func toProposalDoc(p *domain.Proposal) proposalDoc {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return proposalDoc{
		TenantID:        p.TenantID.String(),
		JobID:           p.JobID.String(),
		SpecsJSON:       specsText(p.SpecsJSON),
		Images:          images,
		AIGeneratedText: p.AIGeneratedText,
		PriceEstimate:   p.PriceEstimate,
		Version:         p.Version,
		Status:          string(p.Status),
		ConvertedJobID:  optIDString(p.ConvertedJobID),
		CreatedBy:       p.CreatedBy.String(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func decodeProposal(snap *gcfs.DocumentSnapshot) (domain.Proposal, error) {
	var doc proposalDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Proposal{}, err
	}
	return domain.Proposal{
		ID:              parseID(snap.Ref.ID),
		TenantID:        parseID(doc.TenantID),
		JobID:           parseID(doc.JobID),
		SpecsJSON:       json.RawMessage(specsText(json.RawMessage(doc.SpecsJSON))),
		Images:          domain.StringList(doc.Images),
		AIGeneratedText: doc.AIGeneratedText,
		PriceEstimate:   doc.PriceEstimate,
		Version:         doc.Version,
		Status:          domain.ProposalStatus(doc.Status),
		ConvertedJobID:  parseOptID(doc.ConvertedJobID),
		CreatedBy:       parseID(doc.CreatedBy),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}

func decodeVersion(snap *gcfs.DocumentSnapshot) (domain.ProposalVersion, error) {
	var doc versionDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.ProposalVersion{}, err
	}
	return domain.ProposalVersion{
		ProposalID:      parseID(snap.Ref.Parent.Parent.ID),
		TenantID:        parseID(doc.TenantID),
		Version:         doc.Version,
		SpecsJSON:       json.RawMessage(specsText(json.RawMessage(doc.SpecsJSON))),
		AIGeneratedText: doc.AIGeneratedText,
		PriceEstimate:   doc.PriceEstimate,
		EditedBy:        parseID(doc.EditedBy),
		CreatedAt:       doc.CreatedAt,
	}, nil
}

type proposalRepo struct {
	client *gcfs.Client
}

// NewProposalRepo creates a Firestore-backed ProposalRepository. Version
// snapshots live in a versions subcollection keyed by version number.
func NewProposalRepo(client *gcfs.Client) port.ProposalRepository {
	return &proposalRepo{client: client}
}

func (r *proposalRepo) col(tenantID uuid.UUID) *gcfs.CollectionRef {
	return tenantCol(r.client, tenantID, colProposals)
}

func (r *proposalRepo) Create(ctx context.Context, p *domain.Proposal) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.col(p.TenantID).Doc(p.ID.String()).Create(ctx, toProposalDoc(p)); err != nil {
		return fmt.Errorf("proposalRepo.Create: %w", err)
	}
	return nil
}

func (r *proposalRepo) jobRef(tenantID, jobID uuid.UUID) *gcfs.DocumentRef {
	return tenantCol(r.client, tenantID, colJobs).Doc(jobID.String())
}

// CreateForJob reads the job and its proposals inside the transaction, so a
// concurrent create for the same job retries and then sees the open proposal.
func (r *proposalRepo) CreateForJob(ctx context.Context, p *domain.Proposal) error {
	jobRef := r.jobRef(p.TenantID, p.JobID)
	p.ID = uuid.New()
	ref := r.col(p.TenantID).Doc(p.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		if _, err := tx.Get(jobRef); err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}
		existing, err := tx.Documents(r.col(p.TenantID).Where("job_id", "==", p.JobID.String())).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range existing {
			other, err := decodeProposal(snap)
			if err != nil {
				return err
			}
			if other.Status.IsOpen() {
				return domain.ErrProposalExists
			}
		}

		now := time.Now().UTC()
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := tx.Create(ref, toProposalDoc(p)); err != nil {
			return err
		}
		return tx.Update(jobRef, []gcfs.Update{
			{Path: "proposal_generated", Value: true},
			{Path: "last_updated", Value: now},
		})
	})
	return txError("proposalRepo.CreateForJob", err)
}

// ConvertToJob re-reads the proposal inside the transaction; a concurrent
// conversion that commits first makes this one retry and fail the guard.
func (r *proposalRepo) ConvertToJob(ctx context.Context, p *domain.Proposal, job *domain.Job) error {
	ref := r.col(p.TenantID).Doc(p.ID.String())
	job.ID = uuid.New()
	if job.AssignedOperators == nil {
		job.AssignedOperators = domain.IDList{}
	}
	newJobRef := r.jobRef(job.TenantID, job.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}
		current, err := decodeProposal(snap)
		if err != nil {
			return err
		}
		if current.ConvertedJobID != nil {
			return domain.ErrProposalAlreadyConverted
		}
		if current.Status != domain.ProposalStatusApproved {
			return domain.ErrProposalNotApproved
		}

		now := time.Now().UTC()
		job.CreatedAt = now
		job.LastUpdated = now
		if err := tx.Create(newJobRef, toJobDoc(job)); err != nil {
			return err
		}
		return tx.Update(ref, []gcfs.Update{
			{Path: "converted_job_id", Value: job.ID.String()},
			{Path: "updated_at", Value: now},
		})
	})
	if err != nil {
		return txError("proposalRepo.ConvertToJob", err)
	}
	p.ConvertedJobID = &job.ID
	p.UpdatedAt = job.CreatedAt
	return nil
}

func (r *proposalRepo) GetByID(ctx context.Context, tenantID, proposalID uuid.UUID) (*domain.Proposal, error) {
	snap, err := r.col(tenantID).Doc(proposalID.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("proposalRepo.GetByID: %w", err)
	}
	p, err := decodeProposal(snap)
	if err != nil {
		return nil, fmt.Errorf("proposalRepo.GetByID decode: %w", err)
	}
	return &p, nil
}

func (r *proposalRepo) List(ctx context.Context, tenantID uuid.UUID, f port.ProposalFilter) ([]domain.Proposal, error) {
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return []domain.Proposal{}, nil
	}

	q := r.col(tenantID).Query
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.JobID != nil {
		q = q.Where("job_id", "==", f.JobID.String())
	}

	var proposals []domain.Proposal
	var err error
	if f.JobIDs != nil {
		proposals, err = listIn(ctx, q, "job_id", f.JobIDs, decodeProposal)
	} else {
		proposals, err = collect(q.Documents(ctx), decodeProposal)
	}
	if err != nil {
		return nil, fmt.Errorf("proposalRepo.List: %w", err)
	}
	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].UpdatedAt.After(proposals[j].UpdatedAt)
	})
	return proposals, nil
}

func proposalUpdates(p *domain.Proposal) []gcfs.Update {
	doc := toProposalDoc(p)
	return []gcfs.Update{
		{Path: "specs_json", Value: doc.SpecsJSON},
		{Path: "images", Value: doc.Images},
		{Path: "ai_generated_text", Value: doc.AIGeneratedText},
		{Path: "price_estimate", Value: doc.PriceEstimate},
		{Path: "version", Value: doc.Version},
		{Path: "status", Value: doc.Status},
		{Path: "converted_job_id", Value: doc.ConvertedJobID},
		{Path: "updated_at", Value: doc.UpdatedAt},
	}
}

func (r *proposalRepo) Update(ctx context.Context, p *domain.Proposal) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := r.col(p.TenantID).Doc(p.ID.String()).Update(ctx, proposalUpdates(p))
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("proposalRepo.Update: %w", err)
	}
	return nil
}

func (r *proposalRepo) UpdateWithRevision(ctx context.Context, p *domain.Proposal, prev *domain.ProposalVersion) error {
	ref := r.col(p.TenantID).Doc(p.ID.String())
	versionRef := ref.Collection(colVersions).Doc(strconv.Itoa(prev.Version))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}

		now := time.Now().UTC()
		prev.CreatedAt = now
		p.UpdatedAt = now
		if err := tx.Create(versionRef, versionDoc{
			TenantID:        prev.TenantID.String(),
			Version:         prev.Version,
			SpecsJSON:       specsText(prev.SpecsJSON),
			AIGeneratedText: prev.AIGeneratedText,
			PriceEstimate:   prev.PriceEstimate,
			EditedBy:        prev.EditedBy.String(),
			CreatedAt:       now,
		}); err != nil {
			return err
		}
		return tx.Update(ref, proposalUpdates(p))
	})
	return txError("proposalRepo.UpdateWithRevision", err)
}

func (r *proposalRepo) ListVersions(ctx context.Context, tenantID, proposalID uuid.UUID) ([]domain.ProposalVersion, error) {
	iter := r.col(tenantID).Doc(proposalID.String()).Collection(colVersions).
		OrderBy("version", gcfs.Asc).Documents(ctx)
	versions, err := collect(iter, decodeVersion)
	if err != nil {
		return nil, fmt.Errorf("proposalRepo.ListVersions: %w", err)
	}
	return versions, nil
}

// Delete removes the proposal together with its version history.
func (r *proposalRepo) Delete(ctx context.Context, tenantID, proposalID uuid.UUID) error {
	ref := r.col(tenantID).Doc(proposalID.String())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}
		versions, err := tx.Documents(ref.Collection(colVersions)).GetAll()
		if err != nil {
			return err
		}
		for _, v := range versions {
			if err := tx.Delete(v.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
	return txError("proposalRepo.Delete", err)
}

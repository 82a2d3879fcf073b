package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// CreateProposalInput is the DTO for creating a draft proposal.
type CreateProposalInput struct {
	JobID         uuid.UUID       `json:"job_id" binding:"required"`
	SpecsJSON     json.RawMessage `json:"specs_json" swaggertype:"object"`
	PriceEstimate float64         `json:"price_estimate"`
	Images        []string        `json:"images"`
}

// EditProposalInput is the DTO for a content edit. Nil fields are left unchanged.
type EditProposalInput struct {
	SpecsJSON       json.RawMessage `json:"specs_json" swaggertype:"object"`
	Scope           *string         `json:"scope"`
	Notes           *string         `json:"notes"`
	AIGeneratedText *string         `json:"ai_generated_text"`
	PriceEstimate   *float64        `json:"price_estimate"`
	Images          []string        `json:"images"`
}

func (in EditProposalInput) empty() bool {
	return len(in.SpecsJSON) == 0 && in.Scope == nil && in.Notes == nil &&
		in.AIGeneratedText == nil && in.PriceEstimate == nil && in.Images == nil
}

// DecisionInput carries the optional note recorded with an approval or rejection.
type DecisionInput struct {
	Note string `json:"note"`
}

// ProposalService defines the proposal workflow contract.
type ProposalService interface {
	Create(ctx context.Context, actor Actor, input CreateProposalInput) (*domain.Proposal, error)
	GetByID(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Proposal, error)
	List(ctx context.Context, actor Actor, filter port.ProposalFilter) ([]domain.Proposal, error)
	Edit(ctx context.Context, actor Actor, proposalID uuid.UUID, input EditProposalInput) (*domain.Proposal, error)
	ListVersions(ctx context.Context, actor Actor, proposalID uuid.UUID) ([]domain.ProposalVersion, error)
	MarkSent(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Proposal, error)
	Approve(ctx context.Context, actor Actor, proposalID uuid.UUID, input DecisionInput) (*domain.Proposal, error)
	Reject(ctx context.Context, actor Actor, proposalID uuid.UUID, input DecisionInput) (*domain.Proposal, error)
	ConvertToJob(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Job, error)
	GenerateDraft(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Proposal, error)
	Delete(ctx context.Context, actor Actor, proposalID uuid.UUID) error
}

type proposalService struct {
	proposalRepo port.ProposalRepository
	jobRepo      port.JobRepository
	clientRepo   port.ClientRepository
	userRepo     port.UserRepository
	tenantRepo   port.TenantRepository
	brandingRepo port.BrandingRepository
	drafter      port.Drafter
	validator    port.SpecsValidator
	emailSender  port.EmailSender
	scope        scoper
}

// NewProposalService creates a new ProposalService implementation.
func NewProposalService(
	proposalRepo port.ProposalRepository,
	jobRepo port.JobRepository,
	clientRepo port.ClientRepository,
	userRepo port.UserRepository,
	tenantRepo port.TenantRepository,
	brandingRepo port.BrandingRepository,
	drafter port.Drafter,
	validator port.SpecsValidator,
	emailSender port.EmailSender,
) ProposalService {
	return &proposalService{
		proposalRepo: proposalRepo,
		jobRepo:      jobRepo,
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		tenantRepo:   tenantRepo,
		brandingRepo: brandingRepo,
		drafter:      drafter,
		validator:    validator,
		emailSender:  emailSender,
		scope:        scoper{users: userRepo, jobs: jobRepo},
	}
}

func (s *proposalService) Create(ctx context.Context, actor Actor, input CreateProposalInput) (*domain.Proposal, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if input.PriceEstimate < 0 {
		return nil, fmt.Errorf("%w: price estimate must not be negative", domain.ErrInvalidInput)
	}
	job, err := s.jobRepo.GetByID(ctx, actor.TenantID, input.JobID)
	if err != nil {
		return nil, err
	}

	specs := input.SpecsJSON
	if len(specs) == 0 || string(specs) == "null" {
		specs = json.RawMessage(`{}`)
	}
	if err := s.validator.ValidateSpecs(ctx, specs); err != nil {
		return nil, err
	}

	images := domain.StringList{}
	if input.Images != nil {
		images = domain.StringList(input.Images)
	}
	proposal := &domain.Proposal{
		TenantID:      actor.TenantID,
		JobID:         job.ID,
		SpecsJSON:     specs,
		Images:        images,
		PriceEstimate: input.PriceEstimate,
		Version:       1,
		Status:        domain.ProposalStatusDraft,
		CreatedBy:     actor.UserID,
	}
	// The open-proposal check and the job flag live in the same transaction
	// as the insert.
	if err := s.proposalRepo.CreateForJob(ctx, proposal); err != nil {
		return nil, err
	}
	log.Printf("proposalService.Create: proposal %s created for job %s by %s", proposal.ID, job.ID, actor.UserID)
	return proposal, nil
}

// GetByID returns a proposal the actor may see. A client opening a sent
// proposal moves it to viewed before it is returned.
func (s *proposalService) GetByID(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Proposal, error) {
	proposal, err := s.loadVisible(ctx, actor, proposalID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleClient && proposal.Status == domain.ProposalStatusSent {
		proposal.Status = domain.ProposalStatusViewed
		if err := s.proposalRepo.Update(ctx, proposal); err != nil {
			return nil, err
		}
		log.Printf("proposalService.GetByID: proposal %s viewed by client %s", proposal.ID, actor.UserID)
	}
	return proposal, nil
}

func (s *proposalService) List(ctx context.Context, actor Actor, filter port.ProposalFilter) ([]domain.Proposal, error) {
	ids, err := s.scope.visibleJobIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	filter.JobIDs = ids
	return s.proposalRepo.List(ctx, actor.TenantID, filter)
}

func (s *proposalService) Edit(ctx context.Context, actor Actor, proposalID uuid.UUID, input EditProposalInput) (*domain.Proposal, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if input.empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	proposal, err := s.proposalRepo.GetByID(ctx, actor.TenantID, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.applyEdit(ctx, actor, proposal, input); err != nil {
		return nil, err
	}
	return proposal, nil
}

// applyEdit snapshots the current content, applies input and stores both in
// one write. The version moves forward by exactly one.
func (s *proposalService) applyEdit(ctx context.Context, actor Actor, p *domain.Proposal, input EditProposalInput) error {
	if p.Status.IsTerminal() {
		return domain.ErrProposalLocked
	}
	if input.PriceEstimate != nil && *input.PriceEstimate < 0 {
		return fmt.Errorf("%w: price estimate must not be negative", domain.ErrInvalidInput)
	}

	specs := p.SpecsJSON
	if len(input.SpecsJSON) > 0 {
		specs = input.SpecsJSON
	}
	if input.Scope != nil || input.Notes != nil {
		merged, err := domain.MergeSpecs(specs, input.Scope, input.Notes)
		if err != nil {
			return err
		}
		specs = merged
	}
	if len(input.SpecsJSON) > 0 || input.Scope != nil || input.Notes != nil {
		if err := s.validator.ValidateSpecs(ctx, specs); err != nil {
			return err
		}
	}

	prev := p.Snapshot(actor.UserID)
	p.SpecsJSON = specs
	if input.AIGeneratedText != nil {
		p.AIGeneratedText = *input.AIGeneratedText
	}
	if input.PriceEstimate != nil {
		p.PriceEstimate = *input.PriceEstimate
	}
	if input.Images != nil {
		p.Images = domain.StringList(input.Images)
	}
	p.Version = prev.Version + 1

	if err := s.proposalRepo.UpdateWithRevision(ctx, p, prev); err != nil {
		return err
	}
	log.Printf("proposalService.Edit: proposal %s now at version %d", p.ID, p.Version)
	return nil
}

func (s *proposalService) ListVersions(ctx context.Context, actor Actor, proposalID uuid.UUID) ([]domain.ProposalVersion, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if _, err := s.proposalRepo.GetByID(ctx, actor.TenantID, proposalID); err != nil {
		return nil, err
	}
	return s.proposalRepo.ListVersions(ctx, actor.TenantID, proposalID)
}

func (s *proposalService) MarkSent(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Proposal, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	proposal, err := s.proposalRepo.GetByID(ctx, actor.TenantID, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.Status.CanTransition(domain.ProposalStatusSent) {
		return nil, domain.ErrInvalidTransition
	}
	proposal.Status = domain.ProposalStatusSent
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, err
	}
	log.Printf("proposalService.MarkSent: proposal %s sent by %s", proposal.ID, actor.UserID)

	s.notifySent(ctx, proposal)
	return proposal, nil
}

// notifySent emails the linked client user. Failures are logged only.
func (s *proposalService) notifySent(ctx context.Context, p *domain.Proposal) {
	job, err := s.jobRepo.GetByID(ctx, p.TenantID, p.JobID)
	if err != nil {
		log.Printf("WARNING: proposalService.notifySent: loading job %s: %v", p.JobID, err)
		return
	}
	client, err := s.clientRepo.GetByID(ctx, p.TenantID, job.ClientID)
	if err != nil {
		log.Printf("WARNING: proposalService.notifySent: loading client %s: %v", job.ClientID, err)
		return
	}
	if client.LinkedUserID == nil {
		log.Printf("proposalService.notifySent: client %s has no linked user, skipping email", client.ID)
		return
	}
	user, err := s.userRepo.GetByID(ctx, p.TenantID, *client.LinkedUserID)
	if err != nil {
		log.Printf("WARNING: proposalService.notifySent: loading user %s: %v", *client.LinkedUserID, err)
		return
	}

	notice := port.ProposalNotice{
		BusinessName:  businessName(ctx, s.brandingRepo, s.tenantRepo, p.TenantID),
		JobTitle:      job.Title,
		ProposalID:    p.ID.String(),
		PriceEstimate: p.PriceEstimate,
	}
	if err := s.emailSender.SendProposalSent(ctx, user.Email, user.DisplayName, notice); err != nil {
		log.Printf("WARNING: failed to send proposal email to %s: %v", user.Email, err)
	}
}

func (s *proposalService) Approve(ctx context.Context, actor Actor, proposalID uuid.UUID, input DecisionInput) (*domain.Proposal, error) {
	return s.decide(ctx, actor, proposalID, domain.ProposalStatusApproved, "Approved", input.Note)
}

func (s *proposalService) Reject(ctx context.Context, actor Actor, proposalID uuid.UUID, input DecisionInput) (*domain.Proposal, error) {
	return s.decide(ctx, actor, proposalID, domain.ProposalStatusRejected, "Rejected", input.Note)
}

// decide moves a sent or viewed proposal to a terminal status. Managers may
// decide any proposal; clients only those on their own jobs.
func (s *proposalService) decide(ctx context.Context, actor Actor, proposalID uuid.UUID, to domain.ProposalStatus, label, note string) (*domain.Proposal, error) {
	if !actor.IsManager() && actor.Role != domain.RoleClient {
		return nil, domain.ErrInsufficientRole
	}
	proposal, err := s.loadVisible(ctx, actor, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.Status.CanTransition(to) {
		return nil, domain.ErrInvalidTransition
	}

	if note = strings.TrimSpace(note); note != "" {
		specs, err := domain.AppendSpecsNote(proposal.SpecsJSON, label+": "+note)
		if err != nil {
			return nil, err
		}
		proposal.SpecsJSON = specs
	}
	proposal.Status = to
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, err
	}
	log.Printf("proposalService.decide: proposal %s %s by %s (%s)", proposal.ID, to, actor.UserID, actor.Role)
	return proposal, nil
}

// ConvertToJob creates a scheduled sibling of the proposal's job. The source
// job is left untouched and the proposal remembers the job it produced; the
// store writes both or neither and re-checks the guards under its lock.
func (s *proposalService) ConvertToJob(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Job, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	proposal, err := s.proposalRepo.GetByID(ctx, actor.TenantID, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ConvertedJobID != nil {
		return nil, domain.ErrProposalAlreadyConverted
	}
	if proposal.Status != domain.ProposalStatusApproved {
		return nil, domain.ErrProposalNotApproved
	}
	source, err := s.jobRepo.GetByID(ctx, actor.TenantID, proposal.JobID)
	if err != nil {
		return nil, err
	}

	operators := make(domain.IDList, len(source.AssignedOperators))
	copy(operators, source.AssignedOperators)
	job := &domain.Job{
		TenantID:          actor.TenantID,
		Title:             source.Title,
		Description:       source.Description,
		Status:            domain.JobStatusScheduled,
		Priority:          source.Priority,
		ClientID:          source.ClientID,
		AssignedOperators: operators,
		EstimatedStart:    source.EstimatedStart,
		EstimatedEnd:      source.EstimatedEnd,
		ProposalGenerated: true,
		CreatedBy:         actor.UserID,
	}
	if err := s.proposalRepo.ConvertToJob(ctx, proposal, job); err != nil {
		return nil, err
	}
	log.Printf("proposalService.ConvertToJob: proposal %s converted into job %s", proposal.ID, job.ID)
	return job, nil
}

func (s *proposalService) GenerateDraft(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Proposal, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	proposal, err := s.proposalRepo.GetByID(ctx, actor.TenantID, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status.IsTerminal() {
		return nil, domain.ErrProposalLocked
	}
	job, err := s.jobRepo.GetByID(ctx, actor.TenantID, proposal.JobID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"business_name":   businessName(ctx, s.brandingRepo, s.tenantRepo, actor.TenantID),
		"job_title":       job.Title,
		"job_description": job.Description,
		"priority":        string(job.Priority),
		"scope":           domain.SpecsScope(proposal.SpecsJSON),
		"notes":           domain.SpecsNotes(proposal.SpecsJSON),
	}
	if proposal.PriceEstimate > 0 {
		payload["price_estimate"] = proposal.PriceEstimate
	}
	if job.EstimatedStart != nil {
		payload["estimated_start"] = job.EstimatedStart.Format("2006-01-02")
	}
	if job.EstimatedEnd != nil {
		payload["estimated_end"] = job.EstimatedEnd.Format("2006-01-02")
	}
	client, err := s.clientRepo.GetByID(ctx, actor.TenantID, job.ClientID)
	switch {
	case err == nil:
		payload["client_company"] = client.CompanyName
		payload["client_contact"] = client.ContactName
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	result, err := s.drafter.Draft(ctx, port.DraftRequest{Type: domain.DraftTypeProposal, Payload: payload})
	if err != nil {
		return nil, draftError("proposalService.GenerateDraft", err)
	}
	log.Printf("proposalService.GenerateDraft: proposal %s drafted by %s/%s", proposal.ID, result.Provider, result.Model)

	text := result.Markdown
	if err := s.applyEdit(ctx, actor, proposal, EditProposalInput{AIGeneratedText: &text}); err != nil {
		return nil, err
	}
	return proposal, nil
}

// Delete removes a proposal and clears the job's proposal flag once no open
// proposal is left on it.
func (s *proposalService) Delete(ctx context.Context, actor Actor, proposalID uuid.UUID) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	proposal, err := s.proposalRepo.GetByID(ctx, actor.TenantID, proposalID)
	if err != nil {
		return err
	}
	if err := s.proposalRepo.Delete(ctx, actor.TenantID, proposalID); err != nil {
		return err
	}

	remaining, err := s.proposalRepo.List(ctx, actor.TenantID, port.ProposalFilter{JobID: &proposal.JobID})
	if err != nil {
		return err
	}
	for i := range remaining {
		if remaining[i].Status.IsOpen() {
			return nil
		}
	}
	job, err := s.jobRepo.GetByID(ctx, actor.TenantID, proposal.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if job.ProposalGenerated {
		job.ProposalGenerated = false
		if err := s.jobRepo.Update(ctx, job); err != nil {
			return err
		}
	}
	log.Printf("proposalService.Delete: proposal %s deleted by %s", proposalID, actor.UserID)
	return nil
}

// loadVisible fetches a proposal, hiding proposals on jobs the actor may not see.
func (s *proposalService) loadVisible(ctx context.Context, actor Actor, proposalID uuid.UUID) (*domain.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, actor.TenantID, proposalID)
	if err != nil {
		return nil, err
	}
	if actor.IsManager() {
		return proposal, nil
	}
	if _, err := s.scope.loadVisibleJob(ctx, actor, proposal.JobID); err != nil {
		return nil, err
	}
	return proposal, nil
}

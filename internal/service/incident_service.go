package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// CreateIncidentInput is the DTO for reporting an incident on a job.
type CreateIncidentInput struct {
	JobID             uuid.UUID               `json:"job_id" binding:"required"`
	Severity          domain.IncidentSeverity `json:"severity" binding:"required"`
	Description       string                  `json:"description" binding:"required"`
	Photos            []string                `json:"photos"`
	VoiceNoteRecorded bool                    `json:"voice_note_recorded"`
}

// EditIncidentInput is the DTO for editing an incident. Nil fields are left unchanged.
type EditIncidentInput struct {
	Severity          *domain.IncidentSeverity `json:"severity"`
	Description       *string                  `json:"description"`
	Photos            []string                 `json:"photos"`
	VoiceNoteRecorded *bool                    `json:"voice_note_recorded"`
}

// IncidentService defines the incident reporting and resolution contract.
type IncidentService interface {
	Create(ctx context.Context, actor Actor, input CreateIncidentInput) (*domain.IncidentReport, error)
	GetByID(ctx context.Context, actor Actor, incidentID uuid.UUID) (*domain.IncidentReport, error)
	List(ctx context.Context, actor Actor, filter port.IncidentFilter) ([]domain.IncidentReport, error)
	Edit(ctx context.Context, actor Actor, incidentID uuid.UUID, input EditIncidentInput) (*domain.IncidentReport, error)
	SetReviewNotes(ctx context.Context, actor Actor, incidentID uuid.UUID, notes string) (*domain.IncidentReport, error)
	GenerateNarrative(ctx context.Context, actor Actor, incidentID uuid.UUID) (*domain.IncidentReport, error)
	Advance(ctx context.Context, actor Actor, incidentID uuid.UUID) (*domain.IncidentReport, error)
	Delete(ctx context.Context, actor Actor, incidentID uuid.UUID) error
}

type incidentService struct {
	incidentRepo port.IncidentRepository
	jobRepo      port.JobRepository
	userRepo     port.UserRepository
	tenantRepo   port.TenantRepository
	brandingRepo port.BrandingRepository
	drafter      port.Drafter
	emailSender  port.EmailSender
	scope        scoper
}

// NewIncidentService creates a new IncidentService implementation.
func NewIncidentService(
	incidentRepo port.IncidentRepository,
	jobRepo port.JobRepository,
	userRepo port.UserRepository,
	tenantRepo port.TenantRepository,
	brandingRepo port.BrandingRepository,
	drafter port.Drafter,
	emailSender port.EmailSender,
) IncidentService {
	return &incidentService{
		incidentRepo: incidentRepo,
		jobRepo:      jobRepo,
		userRepo:     userRepo,
		tenantRepo:   tenantRepo,
		brandingRepo: brandingRepo,
		drafter:      drafter,
		emailSender:  emailSender,
		scope:        scoper{users: userRepo, jobs: jobRepo},
	}
}

func (s *incidentService) Create(ctx context.Context, actor Actor, input CreateIncidentInput) (*domain.IncidentReport, error) {
	if !actor.IsManager() && actor.Role != domain.RoleOperator {
		return nil, domain.ErrInsufficientRole
	}
	if !domain.SeverityMeta.Contains(input.Severity) {
		return nil, fmt.Errorf("%w: unknown severity %q", domain.ErrInvalidInput, input.Severity)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	job, err := s.jobRepo.GetByID(ctx, actor.TenantID, input.JobID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleOperator && !job.AssignedOperators.Contains(actor.UserID) {
		return nil, domain.ErrOperatorNotAssigned
	}

	photos := domain.StringList{}
	if input.Photos != nil {
		photos = domain.StringList(input.Photos)
	}
	incident := &domain.IncidentReport{
		TenantID:          actor.TenantID,
		JobID:             job.ID,
		JobTitle:          job.Title,
		OperatorID:        actor.UserID,
		Severity:          input.Severity,
		Description:       strings.TrimSpace(input.Description),
		Photos:            photos,
		VoiceNoteRecorded: input.VoiceNoteRecorded,
		ResolutionStatus:  domain.IncidentStatusOpen,
	}
	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		return nil, err
	}
	log.Printf("incidentService.Create: %s incident %s on job %s by %s", incident.Severity, incident.ID, job.ID, actor.UserID)

	if incident.Severity == domain.SeverityCritical {
		s.notifyCritical(ctx, incident)
	}
	return incident, nil
}

// notifyCritical emails every active owner of the tenant. Failures are logged only.
func (s *incidentService) notifyCritical(ctx context.Context, incident *domain.IncidentReport) {
	owners, err := s.userRepo.List(ctx, incident.TenantID, port.UserFilter{Role: domain.RoleOwner, Status: domain.UserStatusActive})
	if err != nil {
		log.Printf("WARNING: incidentService.notifyCritical: listing owners: %v", err)
		return
	}

	reporter := incident.OperatorID.String()
	if u, err := s.userRepo.GetByID(ctx, incident.TenantID, incident.OperatorID); err == nil {
		reporter = u.DisplayName
	}
	notice := port.IncidentNotice{
		BusinessName: businessName(ctx, s.brandingRepo, s.tenantRepo, incident.TenantID),
		JobTitle:     incident.JobTitle,
		IncidentID:   incident.ID.String(),
		Description:  incident.Description,
		ReportedBy:   reporter,
	}
	for i := range owners {
		if err := s.emailSender.SendCriticalIncident(ctx, owners[i].Email, owners[i].DisplayName, notice); err != nil {
			log.Printf("WARNING: failed to send critical incident email to %s: %v", owners[i].Email, err)
		}
	}
}

func (s *incidentService) GetByID(ctx context.Context, actor Actor, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	incident, err := s.incidentRepo.GetByID(ctx, actor.TenantID, incidentID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleOwner, domain.RoleAdmin:
	case domain.RoleOperator:
		if incident.OperatorID != actor.UserID {
			return nil, domain.ErrNotFound
		}
	case domain.RoleClient:
		if _, err := s.scope.loadVisibleJob(ctx, actor, incident.JobID); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrForbidden
	}
	return incident, nil
}

func (s *incidentService) List(ctx context.Context, actor Actor, filter port.IncidentFilter) ([]domain.IncidentReport, error) {
	switch actor.Role {
	case domain.RoleOwner, domain.RoleAdmin:
	case domain.RoleOperator:
		id := actor.UserID
		filter.OperatorID = &id
	case domain.RoleClient:
		ids, err := s.scope.visibleJobIDs(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.JobIDs = ids
	default:
		return nil, domain.ErrForbidden
	}
	return s.incidentRepo.List(ctx, actor.TenantID, filter)
}

func (s *incidentService) Edit(ctx context.Context, actor Actor, incidentID uuid.UUID, input EditIncidentInput) (*domain.IncidentReport, error) {
	incident, err := s.loadForReporter(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}
	escalated := false
	if input.Severity != nil {
		if !domain.SeverityMeta.Contains(*input.Severity) {
			return nil, fmt.Errorf("%w: unknown severity %q", domain.ErrInvalidInput, *input.Severity)
		}
		escalated = *input.Severity == domain.SeverityCritical && incident.Severity != domain.SeverityCritical
		incident.Severity = *input.Severity
	}
	if input.Description != nil {
		d := strings.TrimSpace(*input.Description)
		if d == "" {
			return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
		}
		incident.Description = d
	}
	if input.Photos != nil {
		incident.Photos = domain.StringList(input.Photos)
	}
	if input.VoiceNoteRecorded != nil {
		incident.VoiceNoteRecorded = *input.VoiceNoteRecorded
	}

	if err := s.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}
	if escalated {
		s.notifyCritical(ctx, incident)
	}
	return incident, nil
}

func (s *incidentService) SetReviewNotes(ctx context.Context, actor Actor, incidentID uuid.UUID, notes string) (*domain.IncidentReport, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	incident, err := s.incidentRepo.GetByID(ctx, actor.TenantID, incidentID)
	if err != nil {
		return nil, err
	}
	incident.ReviewNotes = notes
	if err := s.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// GenerateNarrative drafts a report from the incident facts. Only the
// narrative is written; review notes are never touched.
func (s *incidentService) GenerateNarrative(ctx context.Context, actor Actor, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	incident, err := s.loadForReporter(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"business_name":       businessName(ctx, s.brandingRepo, s.tenantRepo, actor.TenantID),
		"job_title":           incident.JobTitle,
		"severity":            string(incident.Severity),
		"description":         incident.Description,
		"reported_at":         incident.CreatedAt.UTC().Format(time.RFC3339),
		"voice_note_recorded": incident.VoiceNoteRecorded,
	}
	if n := len(incident.Photos); n > 0 {
		payload["photo_count"] = n
	}
	if u, err := s.userRepo.GetByID(ctx, actor.TenantID, incident.OperatorID); err == nil {
		payload["reported_by"] = u.DisplayName
	}

	result, err := s.drafter.Draft(ctx, port.DraftRequest{Type: domain.DraftTypeIncident, Payload: payload})
	if err != nil {
		return nil, draftError("incidentService.GenerateNarrative", err)
	}

	incident.GeneratedNarrative = result.Markdown
	if err := s.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}
	log.Printf("incidentService.GenerateNarrative: incident %s drafted by %s/%s", incident.ID, result.Provider, result.Model)
	return incident, nil
}

func (s *incidentService) Advance(ctx context.Context, actor Actor, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	incident, err := s.incidentRepo.GetByID(ctx, actor.TenantID, incidentID)
	if err != nil {
		return nil, err
	}
	next, err := domain.IncidentFlow.Next(incident.ResolutionStatus)
	if err != nil {
		return nil, err
	}
	prev := incident.ResolutionStatus
	incident.ResolutionStatus = next
	if err := s.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}
	log.Printf("incidentService.Advance: incident %s %s -> %s", incident.ID, prev, next)
	return incident, nil
}

func (s *incidentService) Delete(ctx context.Context, actor Actor, incidentID uuid.UUID) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	return s.incidentRepo.Delete(ctx, actor.TenantID, incidentID)
}

// loadForReporter loads an incident the actor may modify: managers any,
// operators only their own reports.
func (s *incidentService) loadForReporter(ctx context.Context, actor Actor, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	if !actor.IsManager() && actor.Role != domain.RoleOperator {
		return nil, domain.ErrInsufficientRole
	}
	incident, err := s.incidentRepo.GetByID(ctx, actor.TenantID, incidentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && incident.OperatorID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return incident, nil
}

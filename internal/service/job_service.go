package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// CreateJobInput is the DTO for creating a job.
type CreateJobInput struct {
	Title             string             `json:"title" binding:"required"`
	Description       string             `json:"description"`
	Priority          domain.JobPriority `json:"priority"`
	ClientID          uuid.UUID          `json:"client_id" binding:"required"`
	AssignedOperators []uuid.UUID        `json:"assigned_operators"`
	EstimatedStart    *time.Time         `json:"estimated_start"`
	EstimatedEnd      *time.Time         `json:"estimated_end"`
}

// UpdateJobInput is the DTO for a direct job edit. Nil fields are left unchanged.
type UpdateJobInput struct {
	Title          *string             `json:"title"`
	Description    *string             `json:"description"`
	Status         *domain.JobStatus   `json:"status"`
	Priority       *domain.JobPriority `json:"priority"`
	ClientID       *uuid.UUID          `json:"client_id"`
	EstimatedStart *time.Time          `json:"estimated_start"`
	EstimatedEnd   *time.Time          `json:"estimated_end"`
}

// JobService defines the job lifecycle contract.
type JobService interface {
	Create(ctx context.Context, actor Actor, input CreateJobInput) (*domain.Job, error)
	GetByID(ctx context.Context, actor Actor, jobID uuid.UUID) (*domain.Job, error)
	List(ctx context.Context, actor Actor, filter port.JobFilter) ([]domain.Job, error)
	Update(ctx context.Context, actor Actor, jobID uuid.UUID, input UpdateJobInput) (*domain.Job, error)
	Delete(ctx context.Context, actor Actor, jobID uuid.UUID) error
	Advance(ctx context.Context, actor Actor, jobID uuid.UUID) (*domain.Job, error)
	ToggleOperator(ctx context.Context, actor Actor, jobID, operatorID uuid.UUID) (*domain.Job, error)
	ListNeedingAssignment(ctx context.Context, actor Actor) ([]domain.Job, error)
	ListOverdue(ctx context.Context, actor Actor) ([]domain.Job, error)
}

type jobService struct {
	jobRepo    port.JobRepository
	clientRepo port.ClientRepository
	userRepo   port.UserRepository
	scope      scoper
}

// NewJobService creates a new JobService implementation.
func NewJobService(
	jobRepo port.JobRepository,
	clientRepo port.ClientRepository,
	userRepo port.UserRepository,
) JobService {
	return &jobService{
		jobRepo:    jobRepo,
		clientRepo: clientRepo,
		userRepo:   userRepo,
		scope:      scoper{users: userRepo, jobs: jobRepo},
	}
}

func (s *jobService) Create(ctx context.Context, actor Actor, input CreateJobInput) (*domain.Job, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidJobPriorities[priority] {
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, priority)
	}
	if err := validateWindow(input.EstimatedStart, input.EstimatedEnd); err != nil {
		return nil, err
	}
	if err := s.requireClient(ctx, actor.TenantID, input.ClientID); err != nil {
		return nil, err
	}

	operators := domain.IDList{}
	for _, id := range input.AssignedOperators {
		if operators.Contains(id) {
			continue
		}
		if err := s.requireOperator(ctx, actor.TenantID, id); err != nil {
			return nil, err
		}
		operators = append(operators, id)
	}

	job := &domain.Job{
		TenantID:          actor.TenantID,
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		Status:            domain.JobStatusLead,
		Priority:          priority,
		ClientID:          input.ClientID,
		AssignedOperators: operators,
		EstimatedStart:    input.EstimatedStart,
		EstimatedEnd:      input.EstimatedEnd,
		CreatedBy:         actor.UserID,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	log.Printf("jobService.Create: job %s created for client %s by %s", job.ID, job.ClientID, actor.UserID)
	return job, nil
}

func (s *jobService) GetByID(ctx context.Context, actor Actor, jobID uuid.UUID) (*domain.Job, error) {
	return s.scope.loadVisibleJob(ctx, actor, jobID)
}

func (s *jobService) List(ctx context.Context, actor Actor, filter port.JobFilter) ([]domain.Job, error) {
	return s.scope.visibleJobs(ctx, actor, filter)
}

func (s *jobService) Update(ctx context.Context, actor Actor, jobID uuid.UUID, input UpdateJobInput) (*domain.Job, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	job, err := s.jobRepo.GetByID(ctx, actor.TenantID, jobID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		}
		job.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		job.Description = *input.Description
	}
	if input.Priority != nil {
		if !domain.ValidJobPriorities[*input.Priority] {
			return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, *input.Priority)
		}
		job.Priority = *input.Priority
	}
	if input.ClientID != nil && *input.ClientID != job.ClientID {
		if err := s.requireClient(ctx, actor.TenantID, *input.ClientID); err != nil {
			return nil, err
		}
		job.ClientID = *input.ClientID
	}
	if input.EstimatedStart != nil {
		job.EstimatedStart = input.EstimatedStart
	}
	if input.EstimatedEnd != nil {
		job.EstimatedEnd = input.EstimatedEnd
	}
	if err := validateWindow(job.EstimatedStart, job.EstimatedEnd); err != nil {
		return nil, err
	}
	if input.Status != nil {
		if !domain.ValidJobStatuses[*input.Status] {
			return nil, domain.ErrInvalidStatus
		}
		setJobStatus(job, *input.Status)
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Delete(ctx context.Context, actor Actor, jobID uuid.UUID) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	if err := s.jobRepo.Delete(ctx, actor.TenantID, jobID); err != nil {
		return err
	}
	log.Printf("jobService.Delete: job %s deleted by %s", jobID, actor.UserID)
	return nil
}

// Advance moves the job exactly one step along the flow. At the last step it
// returns ErrAlreadyTerminal without writing.
func (s *jobService) Advance(ctx context.Context, actor Actor, jobID uuid.UUID) (*domain.Job, error) {
	if actor.Role == domain.RoleClient {
		return nil, domain.ErrInsufficientRole
	}
	job, err := s.scope.loadVisibleJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	next, err := domain.JobFlow.Next(job.Status)
	if err != nil {
		return nil, err
	}
	prev := job.Status
	setJobStatus(job, next)

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	log.Printf("jobService.Advance: job %s %s -> %s by %s", job.ID, prev, next, actor.UserID)
	return job, nil
}

func (s *jobService) ToggleOperator(ctx context.Context, actor Actor, jobID, operatorID uuid.UUID) (*domain.Job, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	job, err := s.jobRepo.GetByID(ctx, actor.TenantID, jobID)
	if err != nil {
		return nil, err
	}

	operators, added := job.AssignedOperators.Toggle(operatorID)
	if added {
		if err := s.requireOperator(ctx, actor.TenantID, operatorID); err != nil {
			return nil, err
		}
	}
	job.AssignedOperators = operators

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) ListNeedingAssignment(ctx context.Context, actor Actor) ([]domain.Job, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	jobs, err := s.jobRepo.List(ctx, actor.TenantID, port.JobFilter{})
	if err != nil {
		return nil, err
	}
	out := []domain.Job{}
	for i := range jobs {
		if jobs[i].NeedsAssignment() {
			out = append(out, jobs[i])
		}
	}
	return out, nil
}

func (s *jobService) ListOverdue(ctx context.Context, actor Actor) ([]domain.Job, error) {
	jobs, err := s.scope.visibleJobs(ctx, actor, port.JobFilter{})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := []domain.Job{}
	for i := range jobs {
		if jobs[i].IsOverdue(now) {
			out = append(out, jobs[i])
		}
	}
	return out, nil
}

func (s *jobService) requireClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	if _, err := s.clientRepo.GetByID(ctx, tenantID, clientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: client %s not found", domain.ErrInvalidInput, clientID)
		}
		return err
	}
	return nil
}

func (s *jobService) requireOperator(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotAnOperator
		}
		return err
	}
	if user.Role != domain.RoleOperator || !user.IsActive() {
		return domain.ErrNotAnOperator
	}
	return nil
}

// setJobStatus applies a status and stamps the completion time on first completion.
func setJobStatus(job *domain.Job, status domain.JobStatus) {
	job.Status = status
	if status == domain.JobStatusCompleted && job.ActualCompletion == nil {
		now := time.Now().UTC()
		job.ActualCompletion = &now
	}
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: estimated end is before estimated start", domain.ErrInvalidInput)
	}
	return nil
}

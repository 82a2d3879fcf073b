package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// StartSessionInput is the DTO for clocking in on a job.
type StartSessionInput struct {
	JobID uuid.UUID `json:"job_id" binding:"required"`
}

// EndSessionInput is the DTO for clocking out.
type EndSessionInput struct {
	Notes string `json:"notes"`
}

// WorkSessionService defines the operator time-tracking contract.
type WorkSessionService interface {
	Start(ctx context.Context, actor Actor, input StartSessionInput) (*domain.WorkSession, error)
	End(ctx context.Context, actor Actor, sessionID uuid.UUID, input EndSessionInput) (*domain.WorkSession, error)
	GetByID(ctx context.Context, actor Actor, sessionID uuid.UUID) (*domain.WorkSession, error)
	GetActive(ctx context.Context, actor Actor) (*domain.WorkSession, error)
	List(ctx context.Context, actor Actor, filter port.WorkSessionFilter) ([]domain.WorkSession, error)
	AddMedia(ctx context.Context, actor Actor, sessionID uuid.UUID, key string) (*domain.WorkSession, error)
}

type workSessionService struct {
	sessionRepo port.WorkSessionRepository
	jobRepo     port.JobRepository
	scope       scoper
	now         func() time.Time
}

// NewWorkSessionService creates a new WorkSessionService implementation.
func NewWorkSessionService(
	sessionRepo port.WorkSessionRepository,
	jobRepo port.JobRepository,
	userRepo port.UserRepository,
) WorkSessionService {
	return &workSessionService{
		sessionRepo: sessionRepo,
		jobRepo:     jobRepo,
		scope:       scoper{users: userRepo, jobs: jobRepo},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start clocks the actor in on a job. Operators must be assigned to it;
// the store rejects a second active session for the same operator.
func (s *workSessionService) Start(ctx context.Context, actor Actor, input StartSessionInput) (*domain.WorkSession, error) {
	if !actor.IsManager() && actor.Role != domain.RoleOperator {
		return nil, domain.ErrInsufficientRole
	}
	job, err := s.jobRepo.GetByID(ctx, actor.TenantID, input.JobID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleOperator && !job.AssignedOperators.Contains(actor.UserID) {
		return nil, domain.ErrOperatorNotAssigned
	}

	now := s.now()
	session := &domain.WorkSession{
		TenantID:   actor.TenantID,
		JobID:      job.ID,
		OperatorID: actor.UserID,
		Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:  now,
		Media:      domain.StringList{},
	}
	if err := s.sessionRepo.Start(ctx, session); err != nil {
		return nil, err
	}
	log.Printf("workSessionService.Start: session %s started by %s on job %s", session.ID, actor.UserID, job.ID)
	return session, nil
}

func (s *workSessionService) End(ctx context.Context, actor Actor, sessionID uuid.UUID, input EndSessionInput) (*domain.WorkSession, error) {
	session, err := s.loadOwned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, domain.ErrSessionAlreadyEnded
	}

	end := s.now()
	session.EndTime = &end
	session.Notes = input.Notes
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	log.Printf("workSessionService.End: session %s ended after %s", session.ID, session.Duration(end).Round(time.Second))
	return session, nil
}

func (s *workSessionService) GetByID(ctx context.Context, actor Actor, sessionID uuid.UUID) (*domain.WorkSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, actor.TenantID, sessionID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleOwner, domain.RoleAdmin:
	case domain.RoleOperator:
		if session.OperatorID != actor.UserID {
			return nil, domain.ErrNotFound
		}
	case domain.RoleClient:
		if _, err := s.scope.loadVisibleJob(ctx, actor, session.JobID); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrForbidden
	}
	return session, nil
}

// GetActive returns the actor's running session, or nil when there is none.
func (s *workSessionService) GetActive(ctx context.Context, actor Actor) (*domain.WorkSession, error) {
	session, err := s.sessionRepo.GetActive(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

func (s *workSessionService) List(ctx context.Context, actor Actor, filter port.WorkSessionFilter) ([]domain.WorkSession, error) {
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
	return s.sessionRepo.List(ctx, actor.TenantID, filter)
}

// AddMedia records an uploaded object key on the session.
func (s *workSessionService) AddMedia(ctx context.Context, actor Actor, sessionID uuid.UUID, key string) (*domain.WorkSession, error) {
	session, err := s.loadOwned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	session.Media = append(session.Media, key)
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// loadOwned loads a session the actor may modify: its operator or a manager.
func (s *workSessionService) loadOwned(ctx context.Context, actor Actor, sessionID uuid.UUID) (*domain.WorkSession, error) {
	if !actor.IsManager() && actor.Role != domain.RoleOperator {
		return nil, domain.ErrInsufficientRole
	}
	session, err := s.sessionRepo.GetByID(ctx, actor.TenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && session.OperatorID != actor.UserID {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

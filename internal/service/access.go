package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/port"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     domain.UserRole
}

// IsManager reports whether the actor has full tenant access.
func (a Actor) IsManager() bool {
	return a.Role.IsManager()
}

func requireManager(a Actor) error {
	if !a.IsManager() {
		return domain.ErrInsufficientRole
	}
	return nil
}

// scoper resolves what slice of the tenant an actor may see.
type scoper struct {
	users port.UserRepository
	jobs  port.JobRepository
}

// linkedClientID returns the client record a client-role actor is linked to,
// read fresh from the store. Nil means no link.
func (s scoper) linkedClientID(ctx context.Context, a Actor) (*uuid.UUID, error) {
	user, err := s.users.GetByID(ctx, a.TenantID, a.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("loading actor: %w", err)
	}
	return user.LinkedClientID, nil
}

// jobFilter narrows base to the jobs the actor may see. ok is false when the
// actor can see no jobs at all.
func (s scoper) jobFilter(ctx context.Context, a Actor, base port.JobFilter) (port.JobFilter, bool, error) {
	switch a.Role {
	case domain.RoleOwner, domain.RoleAdmin:
		return base, true, nil
	case domain.RoleOperator:
		id := a.UserID
		base.OperatorID = &id
		return base, true, nil
	case domain.RoleClient:
		clientID, err := s.linkedClientID(ctx, a)
		if err != nil {
			return base, false, err
		}
		if clientID == nil {
			return base, false, nil
		}
		if base.ClientID != nil && *base.ClientID != *clientID {
			return base, false, nil
		}
		base.ClientID = clientID
		return base, true, nil
	default:
		return base, false, domain.ErrForbidden
	}
}

// visibleJobs lists the jobs the actor may see.
func (s scoper) visibleJobs(ctx context.Context, a Actor, base port.JobFilter) ([]domain.Job, error) {
	f, ok, err := s.jobFilter(ctx, a, base)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Job{}, nil
	}
	return s.jobs.List(ctx, a.TenantID, f)
}

// visibleJobIDs returns nil for managers (no restriction) and the actor's job
// set otherwise, which may be empty.
func (s scoper) visibleJobIDs(ctx context.Context, a Actor) ([]uuid.UUID, error) {
	if a.IsManager() {
		return nil, nil
	}
	jobs, err := s.visibleJobs(ctx, a, port.JobFilter{})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(jobs))
	for i := range jobs {
		ids = append(ids, jobs[i].ID)
	}
	return ids, nil
}

// canSeeJob reports whether the actor may read job.
func (s scoper) canSeeJob(ctx context.Context, a Actor, job *domain.Job) (bool, error) {
	switch a.Role {
	case domain.RoleOwner, domain.RoleAdmin:
		return true, nil
	case domain.RoleOperator:
		return job.AssignedOperators.Contains(a.UserID), nil
	case domain.RoleClient:
		clientID, err := s.linkedClientID(ctx, a)
		if err != nil {
			return false, err
		}
		return clientID != nil && *clientID == job.ClientID, nil
	default:
		return false, nil
	}
}

// loadVisibleJob fetches a job and hides it as not found when the actor may not see it.
func (s scoper) loadVisibleJob(ctx context.Context, a Actor, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, a.TenantID, jobID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canSeeJob(ctx, a, job)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// draftError maps drafter failures onto the domain errors surfaced to callers.
func draftError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("%s: draft generation failed: %v", op, err)
	var rl *drafter.RateLimitError
	if errors.As(err, &rl) {
		return domain.ErrDraftRateLimited
	}
	return domain.ErrDraftUnavailable
}

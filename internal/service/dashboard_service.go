package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// DashboardService builds the role-specific summary shown on the home screen.
type DashboardService interface {
	Get(ctx context.Context, actor Actor) (*domain.Dashboard, error)
}

type dashboardService struct {
	jobRepo      port.JobRepository
	proposalRepo port.ProposalRepository
	incidentRepo port.IncidentRepository
	sessionRepo  port.WorkSessionRepository
	userRepo     port.UserRepository
	cache        port.Cache
	ttl          time.Duration
	scope        scoper
	now          func() time.Time
}

// NewDashboardService creates a new DashboardService implementation. A zero
// ttl disables caching.
func NewDashboardService(
	jobRepo port.JobRepository,
	proposalRepo port.ProposalRepository,
	incidentRepo port.IncidentRepository,
	sessionRepo port.WorkSessionRepository,
	userRepo port.UserRepository,
	cache port.Cache,
	ttl time.Duration,
) DashboardService {
	return &dashboardService{
		jobRepo:      jobRepo,
		proposalRepo: proposalRepo,
		incidentRepo: incidentRepo,
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		cache:        cache,
		ttl:          ttl,
		scope:        scoper{users: userRepo, jobs: jobRepo},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func dashboardCacheKey(a Actor) string {
	return fmt.Sprintf("dashboard:%s:%s", a.TenantID, a.UserID)
}

func (s *dashboardService) Get(ctx context.Context, actor Actor) (*domain.Dashboard, error) {
	key := dashboardCacheKey(actor)
	if s.ttl > 0 {
		var cached domain.Dashboard
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("WARNING: dashboardService.Get: cache read %s: %v", key, err)
		} else if hit {
			return &cached, nil
		}
	}

	d, err := s.compute(ctx, actor)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		if err := s.cache.Set(ctx, key, d, s.ttl); err != nil {
			log.Printf("WARNING: dashboardService.Get: cache write %s: %v", key, err)
		}
	}
	return d, nil
}

func (s *dashboardService) compute(ctx context.Context, actor Actor) (*domain.Dashboard, error) {
	now := s.now()
	jobs, err := s.scope.visibleJobs(ctx, actor, port.JobFilter{})
	if err != nil {
		return nil, err
	}

	d := &domain.Dashboard{
		Role:         actor.Role,
		TotalJobs:    len(jobs),
		JobsByStatus: map[domain.JobStatus]int{},
	}
	var jobIDs []uuid.UUID
	if !actor.IsManager() {
		jobIDs = make([]uuid.UUID, 0, len(jobs))
	}
	for i := range jobs {
		j := &jobs[i]
		d.JobsByStatus[j.Status]++
		if j.IsActive() {
			d.ActiveJobs++
		}
		if j.NeedsAssignment() {
			d.PendingAssignment++
		}
		if j.IsOverdue(now) {
			d.OverdueJobs++
		}
		if jobIDs != nil {
			jobIDs = append(jobIDs, j.ID)
		}
	}

	proposals, err := s.proposalRepo.List(ctx, actor.TenantID, port.ProposalFilter{JobIDs: jobIDs})
	if err != nil {
		return nil, err
	}
	approved, rejected := 0, 0
	for i := range proposals {
		p := &proposals[i]
		if p.Status.InPipeline() {
			d.PipelineValue += p.PriceEstimate
		}
		switch p.Status {
		case domain.ProposalStatusApproved:
			approved++
		case domain.ProposalStatusRejected:
			rejected++
		case domain.ProposalStatusSent, domain.ProposalStatusViewed:
			if actor.Role == domain.RoleClient {
				d.AwaitingDecision = append(d.AwaitingDecision, *p)
			}
		}
	}
	d.ConversionRate = domain.ConversionRate(approved, rejected)

	incFilter := port.IncidentFilter{JobIDs: jobIDs}
	if actor.Role == domain.RoleOperator {
		id := actor.UserID
		incFilter = port.IncidentFilter{OperatorID: &id}
	}
	incidents, err := s.incidentRepo.List(ctx, actor.TenantID, incFilter)
	if err != nil {
		return nil, err
	}
	for i := range incidents {
		inc := &incidents[i]
		if inc.ResolutionStatus == domain.IncidentStatusOpen || inc.ResolutionStatus == domain.IncidentStatusInvestigating {
			d.OpenIncidents++
			if inc.Severity == domain.SeverityCritical {
				d.CriticalIncidents++
			}
		}
	}

	switch actor.Role {
	case domain.RoleOwner, domain.RoleAdmin:
		counts, err := s.operatorCounts(ctx, actor.TenantID, jobs)
		if err != nil {
			return nil, err
		}
		d.OperatorJobCounts = counts
	case domain.RoleOperator:
		if err := s.fillOperator(ctx, actor, now, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *dashboardService) operatorCounts(ctx context.Context, tenantID uuid.UUID, jobs []domain.Job) ([]domain.OperatorJobCount, error) {
	operators, err := s.userRepo.List(ctx, tenantID, port.UserFilter{Role: domain.RoleOperator, Status: domain.UserStatusActive})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]int, len(operators))
	for i := range jobs {
		for _, id := range jobs[i].AssignedOperators {
			byID[id]++
		}
	}
	counts := make([]domain.OperatorJobCount, 0, len(operators))
	for i := range operators {
		counts = append(counts, domain.OperatorJobCount{
			OperatorID:  operators[i].ID,
			DisplayName: operators[i].DisplayName,
			JobCount:    byID[operators[i].ID],
		})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].JobCount > counts[j].JobCount })
	return counts, nil
}

func (s *dashboardService) fillOperator(ctx context.Context, actor Actor, now time.Time, d *domain.Dashboard) error {
	active, err := s.sessionRepo.GetActive(ctx, actor.TenantID, actor.UserID)
	switch {
	case err == nil:
		d.ActiveSession = active
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	from := startOfWeek(now)
	id := actor.UserID
	sessions, err := s.sessionRepo.List(ctx, actor.TenantID, port.WorkSessionFilter{OperatorID: &id, From: &from})
	if err != nil {
		return err
	}
	var total time.Duration
	for i := range sessions {
		total += sessions[i].Duration(now)
	}
	d.HoursThisWeek = total.Hours()
	return nil
}

// startOfWeek returns Monday 00:00 UTC of the week containing t.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

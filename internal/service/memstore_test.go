package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// memStore is an in-memory backend for scenario tests that span several
// services. It implements the repository ports the scenarios touch.
type memStore struct {
	mu        sync.Mutex
	tenants   map[uuid.UUID]domain.Tenant
	users     map[uuid.UUID]domain.User
	clients   map[uuid.UUID]domain.Client
	jobs      map[uuid.UUID]domain.Job
	proposals map[uuid.UUID]domain.Proposal
	versions  map[uuid.UUID][]domain.ProposalVersion
	incidents map[uuid.UUID]domain.IncidentReport
	branding  map[uuid.UUID]domain.TenantBranding

	// jobWriteErr and proposalWriteErr fail job and proposal updates,
	// including the second half of a two-entity write, which is then rolled back.
	jobWriteErr      error
	proposalWriteErr error
}

func newMemStore() *memStore {
	return &memStore{
		tenants:   map[uuid.UUID]domain.Tenant{},
		users:     map[uuid.UUID]domain.User{},
		clients:   map[uuid.UUID]domain.Client{},
		jobs:      map[uuid.UUID]domain.Job{},
		proposals: map[uuid.UUID]domain.Proposal{},
		versions:  map[uuid.UUID][]domain.ProposalVersion{},
		incidents: map[uuid.UUID]domain.IncidentReport{},
		branding:  map[uuid.UUID]domain.TenantBranding{},
	}
}

type memTenants struct{ *memStore }
type memUsers struct{ *memStore }
type memClients struct{ *memStore }
type memJobs struct{ *memStore }
type memProposals struct{ *memStore }
type memIncidents struct{ *memStore }
type memBranding struct{ *memStore }

func (s memTenants) Create(_ context.Context, t *domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	s.tenants[t.ID] = *t
	return nil
}

func (s memTenants) GetByID(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s memTenants) Update(_ context.Context, t *domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = *t
	return nil
}

func (s memUsers) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = *u
	return nil
}

func (s memUsers) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s memUsers) GetByIdentityUID(_ context.Context, tenantID uuid.UUID, uid string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TenantID == tenantID && u.IdentityUID == uid {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s memUsers) List(_ context.Context, tenantID uuid.UUID, f port.UserFilter) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.TenantID != tenantID || (f.Role != "" && u.Role != f.Role) || (f.Status != "" && u.Status != f.Status) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (s memUsers) Update(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.users[u.ID]
	u.LinkedClientID = prev.LinkedClientID
	s.users[u.ID] = *u
	return nil
}

func (s memClients) Create(_ context.Context, c *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.clients[c.ID] = *c
	return nil
}

func (s memClients) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s memClients) List(_ context.Context, tenantID uuid.UUID) ([]domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Client{}
	for _, c := range s.clients {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s memClients) Update(_ context.Context, c *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = *c
	return nil
}

func (s memClients) Delete(_ context.Context, _, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
	return nil
}

func (s memClients) LinkUser(_ context.Context, _, clientID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return domain.ErrNotFound
	}
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if (c.LinkedUserID != nil && *c.LinkedUserID != userID) || (u.LinkedClientID != nil && *u.LinkedClientID != clientID) {
		return domain.ErrAlreadyLinked
	}
	c.LinkedUserID = &userID
	u.LinkedClientID = &clientID
	s.clients[clientID] = c
	s.users[userID] = u
	return nil
}

func (s memClients) UnlinkUser(_ context.Context, _, clientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.LinkedUserID == nil {
		return domain.ErrClientNotLinked
	}
	if u, ok := s.users[*c.LinkedUserID]; ok && u.LinkedClientID != nil && *u.LinkedClientID == clientID {
		u.LinkedClientID = nil
		s.users[u.ID] = u
	}
	c.LinkedUserID = nil
	s.clients[clientID] = c
	return nil
}

func (s memClients) ClearUserLink(_ context.Context, _, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	u.LinkedClientID = nil
	s.users[userID] = u
	return nil
}

func (s memClients) ClearClientLink(_ context.Context, _, clientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.clients[clientID]
	c.LinkedUserID = nil
	s.clients[clientID] = c
	return nil
}

func (s memJobs) Create(_ context.Context, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = uuid.New()
	j.CreatedAt = time.Now().UTC()
	j.LastUpdated = j.CreatedAt
	s.jobs[j.ID] = *j
	return nil
}

func (s memJobs) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (s memJobs) List(_ context.Context, tenantID uuid.UUID, f port.JobFilter) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Job{}
	for _, j := range s.jobs {
		switch {
		case j.TenantID != tenantID,
			f.Status != "" && j.Status != f.Status,
			f.Priority != "" && j.Priority != f.Priority,
			f.ClientID != nil && j.ClientID != *f.ClientID,
			f.OperatorID != nil && !j.AssignedOperators.Contains(*f.OperatorID):
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (s memJobs) Update(_ context.Context, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobWriteErr != nil {
		return s.jobWriteErr
	}
	j.LastUpdated = time.Now().UTC()
	s.jobs[j.ID] = *j
	return nil
}

func (s memJobs) Delete(_ context.Context, _, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

func inIDs(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s memProposals) Create(_ context.Context, p *domain.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.proposals[p.ID] = *p
	return nil
}

func (s memProposals) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok || p.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s memProposals) List(_ context.Context, tenantID uuid.UUID, f port.ProposalFilter) ([]domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Proposal{}
	for _, p := range s.proposals {
		switch {
		case p.TenantID != tenantID,
			f.Status != "" && p.Status != f.Status,
			f.JobID != nil && p.JobID != *f.JobID,
			f.JobIDs != nil && !inIDs(f.JobIDs, p.JobID):
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s memProposals) Update(_ context.Context, p *domain.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proposalWriteErr != nil {
		return s.proposalWriteErr
	}
	s.proposals[p.ID] = *p
	return nil
}

func (s memProposals) UpdateWithRevision(_ context.Context, p *domain.Proposal, prev *domain.ProposalVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[p.ID] = append(s.versions[p.ID], *prev)
	s.proposals[p.ID] = *p
	return nil
}

func (s memProposals) ListVersions(_ context.Context, _, id uuid.UUID) ([]domain.ProposalVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ProposalVersion{}, s.versions[id]...), nil
}

func (s memProposals) CreateForJob(_ context.Context, p *domain.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[p.JobID]
	if !ok || job.TenantID != p.TenantID {
		return domain.ErrNotFound
	}
	for _, other := range s.proposals {
		if other.JobID == p.JobID && other.Status.IsOpen() {
			return domain.ErrProposalExists
		}
	}
	if s.jobWriteErr != nil {
		return s.jobWriteErr
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.proposals[p.ID] = *p
	job.ProposalGenerated = true
	job.LastUpdated = p.CreatedAt
	s.jobs[job.ID] = job
	return nil
}

func (s memProposals) ConvertToJob(_ context.Context, p *domain.Proposal, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.proposals[p.ID]
	if !ok || current.TenantID != p.TenantID {
		return domain.ErrNotFound
	}
	if current.ConvertedJobID != nil {
		return domain.ErrProposalAlreadyConverted
	}
	if current.Status != domain.ProposalStatusApproved {
		return domain.ErrProposalNotApproved
	}
	j.ID = uuid.New()
	j.CreatedAt = time.Now().UTC()
	j.LastUpdated = j.CreatedAt
	s.jobs[j.ID] = *j
	if s.proposalWriteErr != nil {
		delete(s.jobs, j.ID)
		return s.proposalWriteErr
	}
	current.ConvertedJobID = &j.ID
	current.UpdatedAt = j.CreatedAt
	s.proposals[p.ID] = current
	p.ConvertedJobID = &j.ID
	p.UpdatedAt = j.CreatedAt
	return nil
}

func (s memProposals) Delete(_ context.Context, _, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.proposals, id)
	delete(s.versions, id)
	return nil
}

func (s memIncidents) Create(_ context.Context, inc *domain.IncidentReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc.ID = uuid.New()
	inc.CreatedAt = time.Now().UTC()
	inc.UpdatedAt = inc.CreatedAt
	s.incidents[inc.ID] = *inc
	return nil
}

func (s memIncidents) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.IncidentReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok || inc.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &inc, nil
}

func (s memIncidents) List(_ context.Context, tenantID uuid.UUID, f port.IncidentFilter) ([]domain.IncidentReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.IncidentReport{}
	for _, inc := range s.incidents {
		switch {
		case inc.TenantID != tenantID,
			f.Severity != "" && inc.Severity != f.Severity,
			f.Status != "" && inc.ResolutionStatus != f.Status,
			f.OperatorID != nil && inc.OperatorID != *f.OperatorID,
			f.JobID != nil && inc.JobID != *f.JobID,
			f.JobIDs != nil && !inIDs(f.JobIDs, inc.JobID):
			continue
		}
		out = append(out, inc)
	}
	return out, nil
}

func (s memIncidents) Update(_ context.Context, inc *domain.IncidentReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc.UpdatedAt = time.Now().UTC()
	s.incidents[inc.ID] = *inc
	return nil
}

func (s memIncidents) Delete(_ context.Context, _, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.incidents, id)
	return nil
}

func (s memBranding) Get(_ context.Context, tenantID uuid.UUID) (*domain.TenantBranding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branding[tenantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (s memBranding) Save(_ context.Context, b *domain.TenantBranding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.UpdatedAt = time.Now().UTC()
	s.branding[b.TenantID] = *b
	return nil
}

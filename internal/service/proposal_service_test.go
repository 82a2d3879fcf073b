package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
	"fieldpilot/internal/validator"
	"fieldpilot/mocks"
)

type proposalDeps struct {
	proposals *mocks.MockProposalRepo
	jobs      *mocks.MockJobRepo
	clients   *mocks.MockClientRepo
	users     *mocks.MockUserRepo
	tenants   *mocks.MockTenantRepo
	branding  *mocks.MockBrandingRepo
	drafter   *mocks.MockDrafter
	validator *mocks.MockSpecsValidator
	email     *mocks.MockEmailSender
}

func setupProposalService() (service.ProposalService, *proposalDeps) {
	d := &proposalDeps{
		proposals: new(mocks.MockProposalRepo),
		jobs:      new(mocks.MockJobRepo),
		clients:   new(mocks.MockClientRepo),
		users:     new(mocks.MockUserRepo),
		tenants:   new(mocks.MockTenantRepo),
		branding:  new(mocks.MockBrandingRepo),
		drafter:   new(mocks.MockDrafter),
		validator: new(mocks.MockSpecsValidator),
		email:     new(mocks.MockEmailSender),
	}
	svc := service.NewProposalService(d.proposals, d.jobs, d.clients, d.users, d.tenants, d.branding,
		d.drafter, d.validator, d.email)
	return svc, d
}

func TestProposalService_Create_Success(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID}

	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.validator.On("ValidateSpecs", mock.Anything, json.RawMessage(`{}`)).Return(nil)
	d.proposals.On("CreateForJob", mock.Anything, mock.MatchedBy(func(p *domain.Proposal) bool {
		return p.JobID == job.ID && p.CreatedBy == actor.UserID
	})).Return(nil)

	p, err := svc.Create(context.Background(), actor, service.CreateProposalInput{JobID: job.ID})

	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusDraft, p.Status)
	assert.Equal(t, 1, p.Version)
	d.proposals.AssertExpectations(t)
	d.jobs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProposalService_Create_OpenProposalExists(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID}

	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.validator.On("ValidateSpecs", mock.Anything, mock.Anything).Return(nil)
	d.proposals.On("CreateForJob", mock.Anything, mock.Anything).Return(domain.ErrProposalExists)

	p, err := svc.Create(context.Background(), actor, service.CreateProposalInput{JobID: job.ID})

	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrProposalExists)
}

// proposalScenario wires a proposal service over the in-memory store with one
// job ready to receive proposals.
type proposalScenario struct {
	store *memStore
	svc   service.ProposalService
	owner service.Actor
	job   domain.Job
}

func newProposalScenario(t *testing.T) *proposalScenario {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()
	tenant := &domain.Tenant{Name: "Volt Bros", IsActive: true}
	require.NoError(t, memTenants{store}.Create(ctx, tenant))

	job := &domain.Job{TenantID: tenant.ID, Title: "Panel upgrade", ClientID: uuid.New(),
		Status: domain.JobStatusLead, Priority: domain.PriorityMedium}
	require.NoError(t, memJobs{store}.Create(ctx, job))

	reg, err := validator.NewDefaultRegistry()
	require.NoError(t, err)
	svc := service.NewProposalService(memProposals{store}, memJobs{store}, memClients{store}, memUsers{store},
		memTenants{store}, memBranding{store}, new(mocks.MockDrafter), validator.New(reg), new(mocks.MockEmailSender))

	return &proposalScenario{
		store: store,
		svc:   svc,
		owner: service.Actor{TenantID: tenant.ID, UserID: uuid.New(), Role: domain.RoleOwner},
		job:   *job,
	}
}

// approved stores an approved proposal for the scenario job.
func (sc *proposalScenario) approved() domain.Proposal {
	p := domain.Proposal{ID: uuid.New(), TenantID: sc.owner.TenantID, JobID: sc.job.ID,
		Version: 1, Status: domain.ProposalStatusApproved, SpecsJSON: json.RawMessage(`{}`)}
	sc.store.proposals[p.ID] = p
	return p
}

func (sc *proposalScenario) jobCount() int {
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return len(sc.store.jobs)
}

func TestProposalService_Create_RejectedDoesNotBlock(t *testing.T) {
	sc := newProposalScenario(t)
	sc.store.proposals[uuid.New()] = domain.Proposal{TenantID: sc.owner.TenantID, JobID: sc.job.ID,
		Status: domain.ProposalStatusRejected}

	p, err := sc.svc.Create(context.Background(), sc.owner, service.CreateProposalInput{JobID: sc.job.ID})

	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusDraft, p.Status)
	assert.True(t, sc.store.jobs[sc.job.ID].ProposalGenerated)

	_, err = sc.svc.Create(context.Background(), sc.owner, service.CreateProposalInput{JobID: sc.job.ID})
	assert.ErrorIs(t, err, domain.ErrProposalExists)
}

func TestProposalService_Create_FailedJobFlagStoresNothing(t *testing.T) {
	sc := newProposalScenario(t)
	ctx := context.Background()
	sc.store.jobWriteErr = errors.New("store unavailable")

	_, err := sc.svc.Create(ctx, sc.owner, service.CreateProposalInput{JobID: sc.job.ID})

	require.Error(t, err)
	assert.Empty(t, sc.store.proposals)
	assert.False(t, sc.store.jobs[sc.job.ID].ProposalGenerated)

	sc.store.jobWriteErr = nil
	p, err := sc.svc.Create(ctx, sc.owner, service.CreateProposalInput{JobID: sc.job.ID})

	require.NoError(t, err, "a retry must not see a half-written proposal")
	assert.Len(t, sc.store.proposals, 1)
	assert.Equal(t, p.ID, sc.store.proposals[p.ID].ID)
	assert.True(t, sc.store.jobs[sc.job.ID].ProposalGenerated)
}

func TestProposalService_Create_InvalidSpecs(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID}

	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.validator.On("ValidateSpecs", mock.Anything, mock.Anything).Return(domain.ErrInvalidSpecs)

	_, err := svc.Create(context.Background(), actor, service.CreateProposalInput{
		JobID: job.ID, SpecsJSON: json.RawMessage(`{"scope":1}`),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidSpecs)
}

func TestProposalService_Edit_IncrementsVersionAndSnapshots(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, Version: 3,
		Status: domain.ProposalStatusSent, SpecsJSON: json.RawMessage(`{"scope":"old"}`), PriceEstimate: 100}
	price := 250.0
	scope := "new"

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)
	d.validator.On("ValidateSpecs", mock.Anything, mock.Anything).Return(nil)
	d.proposals.On("UpdateWithRevision", mock.Anything, p, mock.MatchedBy(func(v *domain.ProposalVersion) bool {
		return v.Version == 3 && v.PriceEstimate == 100 && domain.SpecsScope(v.SpecsJSON) == "old" && v.EditedBy == actor.UserID
	})).Return(nil)

	got, err := svc.Edit(context.Background(), actor, p.ID, service.EditProposalInput{PriceEstimate: &price, Scope: &scope})

	require.NoError(t, err)
	assert.Equal(t, 4, got.Version)
	assert.Equal(t, 250.0, got.PriceEstimate)
	assert.Equal(t, "new", domain.SpecsScope(got.SpecsJSON))
	d.proposals.AssertExpectations(t)
}

func TestProposalService_Edit_LockedAfterDecision(t *testing.T) {
	for _, status := range []domain.ProposalStatus{domain.ProposalStatusApproved, domain.ProposalStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			svc, d := setupProposalService()
			actor := ownerActor(uuid.New())
			p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, Version: 2, Status: status}
			price := 1.0

			d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)

			_, err := svc.Edit(context.Background(), actor, p.ID, service.EditProposalInput{PriceEstimate: &price})

			assert.ErrorIs(t, err, domain.ErrProposalLocked)
			assert.Equal(t, 2, p.Version)
		})
	}
}

func TestProposalService_MarkSent_OnlyFromDraft(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.ProposalStatusViewed}

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)

	_, err := svc.MarkSent(context.Background(), actor, p.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	d.proposals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProposalService_MarkSent_EmailFailureIsNotReturned(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	clientUserID := uuid.New()
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Title: "Panel upgrade", ClientID: uuid.New()}
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, JobID: job.ID, Status: domain.ProposalStatusDraft}

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)
	d.proposals.On("Update", mock.Anything, p).Return(nil)
	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.clients.On("GetByID", mock.Anything, actor.TenantID, job.ClientID).
		Return(&domain.Client{ID: job.ClientID, LinkedUserID: &clientUserID}, nil)
	d.users.On("GetByID", mock.Anything, actor.TenantID, clientUserID).
		Return(&domain.User{ID: clientUserID, Email: "c@acme.test", DisplayName: "Casey"}, nil)
	d.branding.On("Get", mock.Anything, actor.TenantID).
		Return(&domain.TenantBranding{BusinessName: "Volt Bros"}, nil)
	d.email.On("SendProposalSent", mock.Anything, "c@acme.test", "Casey", mock.MatchedBy(func(n port.ProposalNotice) bool {
		return n.BusinessName == "Volt Bros" && n.JobTitle == "Panel upgrade"
	})).Return(errors.New("ses down"))

	got, err := svc.MarkSent(context.Background(), actor, p.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusSent, got.Status)
	d.email.AssertExpectations(t)
}

func TestProposalService_Approve_OperatorDenied(t *testing.T) {
	svc, _ := setupProposalService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleOperator}

	_, err := svc.Approve(context.Background(), actor, uuid.New(), service.DecisionInput{})

	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestProposalService_Approve_ClientOfOtherJobSeesNotFound(t *testing.T) {
	svc, d := setupProposalService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleClient}
	own := uuid.New()
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, ClientID: uuid.New()}
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, JobID: job.ID, Status: domain.ProposalStatusSent}

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)
	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.users.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).
		Return(&domain.User{ID: actor.UserID, LinkedClientID: &own}, nil)

	_, err := svc.Approve(context.Background(), actor, p.ID, service.DecisionInput{Note: "ok"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	d.proposals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProposalService_Reject_FromDraftIsInvalid(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.ProposalStatusDraft}

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)

	_, err := svc.Reject(context.Background(), actor, p.ID, service.DecisionInput{Note: "too much"})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestProposalService_ConvertToJob_Guards(t *testing.T) {
	converted := uuid.New()
	tests := []struct {
		name string
		p    domain.Proposal
		want error
	}{
		{"not approved", domain.Proposal{Status: domain.ProposalStatusViewed}, domain.ErrProposalNotApproved},
		{"already converted", domain.Proposal{Status: domain.ProposalStatusApproved, ConvertedJobID: &converted}, domain.ErrProposalAlreadyConverted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := setupProposalService()
			actor := ownerActor(uuid.New())
			p := tt.p
			p.ID, p.TenantID = uuid.New(), actor.TenantID

			d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(&p, nil)

			job, err := svc.ConvertToJob(context.Background(), actor, p.ID)

			assert.Nil(t, job)
			assert.ErrorIs(t, err, tt.want)
			d.proposals.AssertNotCalled(t, "ConvertToJob", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProposalService_ConvertToJob_FailedStampLeavesNoJob(t *testing.T) {
	sc := newProposalScenario(t)
	ctx := context.Background()
	p := sc.approved()
	before := sc.jobCount()
	sc.store.proposalWriteErr = errors.New("store unavailable")

	for attempt := 0; attempt < 2; attempt++ {
		job, err := sc.svc.ConvertToJob(ctx, sc.owner, p.ID)
		require.Error(t, err)
		assert.Nil(t, job)
		assert.Equal(t, before, sc.jobCount(), "attempt %d left a job behind", attempt+1)
	}

	sc.store.proposalWriteErr = nil
	job, err := sc.svc.ConvertToJob(ctx, sc.owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, sc.jobCount())
	assert.Equal(t, &job.ID, sc.store.proposals[p.ID].ConvertedJobID)

	_, err = sc.svc.ConvertToJob(ctx, sc.owner, p.ID)
	assert.ErrorIs(t, err, domain.ErrProposalAlreadyConverted)
	assert.Equal(t, before+1, sc.jobCount())
}

func TestProposalService_ConvertToJob_ConcurrentCallsConvertOnce(t *testing.T) {
	sc := newProposalScenario(t)
	p := sc.approved()
	before := sc.jobCount()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sc.svc.ConvertToJob(context.Background(), sc.owner, p.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrProposalAlreadyConverted)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, before+1, sc.jobCount())
}

func TestProposalService_GenerateDraft_StoresTextAsNewVersion(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Title: "Panel upgrade", ClientID: uuid.New()}
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, JobID: job.ID, Version: 1,
		Status: domain.ProposalStatusDraft, SpecsJSON: json.RawMessage(`{"scope":"rewire panel"}`), PriceEstimate: 5000}

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)
	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.clients.On("GetByID", mock.Anything, actor.TenantID, job.ClientID).
		Return(&domain.Client{ID: job.ClientID, CompanyName: "Acme"}, nil)
	d.branding.On("Get", mock.Anything, actor.TenantID).Return(nil, domain.ErrNotFound)
	d.tenants.On("GetByID", mock.Anything, actor.TenantID).Return(&domain.Tenant{ID: actor.TenantID, Name: "Volt Bros"}, nil)
	d.drafter.On("Draft", mock.Anything, mock.MatchedBy(func(r port.DraftRequest) bool {
		return r.Type == domain.DraftTypeProposal &&
			r.Payload["job_title"] == "Panel upgrade" &&
			r.Payload["client_company"] == "Acme" &&
			r.Payload["scope"] == "rewire panel" &&
			r.Payload["business_name"] == "Volt Bros"
	})).Return(&port.DraftResult{Markdown: "# Proposal", Provider: "claude", Model: "m"}, nil)
	d.proposals.On("UpdateWithRevision", mock.Anything, p, mock.Anything).Return(nil)

	got, err := svc.GenerateDraft(context.Background(), actor, p.ID)

	require.NoError(t, err)
	assert.Equal(t, "# Proposal", got.AIGeneratedText)
	assert.Equal(t, 2, got.Version)
	d.drafter.AssertExpectations(t)
}

func TestProposalService_GenerateDraft_RateLimited(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, ClientID: uuid.New()}
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, JobID: job.ID, Status: domain.ProposalStatusDraft}

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)
	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.clients.On("GetByID", mock.Anything, actor.TenantID, job.ClientID).Return(nil, domain.ErrNotFound)
	d.branding.On("Get", mock.Anything, actor.TenantID).Return(&domain.TenantBranding{}, nil)
	d.drafter.On("Draft", mock.Anything, mock.Anything).
		Return(nil, drafter.NewRateLimitError("claude", errors.New("429"), 30))

	_, err := svc.GenerateDraft(context.Background(), actor, p.ID)

	assert.ErrorIs(t, err, domain.ErrDraftRateLimited)
	d.proposals.AssertNotCalled(t, "UpdateWithRevision", mock.Anything, mock.Anything, mock.Anything)
}

func TestProposalService_List_OperatorScopedToAssignedJobs(t *testing.T) {
	svc, d := setupProposalService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleOperator}
	jobID := uuid.New()

	d.jobs.On("List", mock.Anything, actor.TenantID, mock.MatchedBy(func(f port.JobFilter) bool {
		return f.OperatorID != nil && *f.OperatorID == actor.UserID
	})).Return([]domain.Job{{ID: jobID}}, nil)
	d.proposals.On("List", mock.Anything, actor.TenantID, mock.MatchedBy(func(f port.ProposalFilter) bool {
		return len(f.JobIDs) == 1 && f.JobIDs[0] == jobID
	})).Return([]domain.Proposal{{JobID: jobID}}, nil)

	got, err := svc.List(context.Background(), actor, port.ProposalFilter{})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	d.proposals.AssertExpectations(t)
}

func TestProposalService_Delete_ClearsJobFlag(t *testing.T) {
	svc, d := setupProposalService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, ProposalGenerated: true}
	p := &domain.Proposal{ID: uuid.New(), TenantID: actor.TenantID, JobID: job.ID}

	d.proposals.On("GetByID", mock.Anything, actor.TenantID, p.ID).Return(p, nil)
	d.proposals.On("Delete", mock.Anything, actor.TenantID, p.ID).Return(nil)
	d.proposals.On("List", mock.Anything, actor.TenantID, mock.Anything).Return([]domain.Proposal{}, nil)
	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.jobs.On("Update", mock.Anything, job).Return(nil)

	err := svc.Delete(context.Background(), actor, p.ID)

	require.NoError(t, err)
	assert.False(t, job.ProposalGenerated)
	d.jobs.AssertExpectations(t)
}

// Lead job, draft proposal priced and scoped, sent, opened by the client,
// approved with a note, then converted by the owner.
func TestProposalWorkflow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	tenants, users, clients, jobs := memTenants{store}, memUsers{store}, memClients{store}, memJobs{store}

	reg, err := validator.NewDefaultRegistry()
	require.NoError(t, err)
	email := new(mocks.MockEmailSender)
	email.On("SendProposalSent", mock.Anything, "casey@acme.test", "Casey", mock.Anything).Return(nil)

	tenant := &domain.Tenant{Name: "Volt Bros", IsActive: true}
	require.NoError(t, tenants.Create(ctx, tenant))
	owner := service.Actor{TenantID: tenant.ID, UserID: uuid.New(), Role: domain.RoleOwner}
	clientUser := &domain.User{TenantID: tenant.ID, Role: domain.RoleClient, DisplayName: "Casey",
		Email: "casey@acme.test", Status: domain.UserStatusActive}
	require.NoError(t, users.Create(ctx, clientUser))

	jobSvc := service.NewJobService(jobs, clients, users)
	clientSvc := service.NewClientService(clients, users)
	proposalSvc := service.NewProposalService(memProposals{store}, jobs, clients, users, tenants,
		memBranding{store}, new(mocks.MockDrafter), validator.New(reg), email)

	client, err := clientSvc.Create(ctx, owner, service.ClientInput{CompanyName: "Acme"})
	require.NoError(t, err)
	_, err = clientSvc.LinkUser(ctx, owner, client.ID, clientUser.ID)
	require.NoError(t, err)

	job, err := jobSvc.Create(ctx, owner, service.CreateJobInput{
		Title: "Panel upgrade", Description: "200A service", ClientID: client.ID,
	})
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusLead, job.Status)

	p, err := proposalSvc.Create(ctx, owner, service.CreateProposalInput{JobID: job.ID})
	require.NoError(t, err)
	require.Equal(t, domain.ProposalStatusDraft, p.Status)
	require.Zero(t, p.PriceEstimate)

	price, scope := 5000.0, "rewire panel"
	p, err = proposalSvc.Edit(ctx, owner, p.ID, service.EditProposalInput{PriceEstimate: &price, Scope: &scope})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Version)

	p, err = proposalSvc.MarkSent(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProposalStatusSent, p.Status)

	clientActor := service.Actor{TenantID: tenant.ID, UserID: clientUser.ID, Role: domain.RoleClient}
	p, err = proposalSvc.GetByID(ctx, clientActor, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProposalStatusViewed, p.Status)

	p, err = proposalSvc.Approve(ctx, clientActor, p.ID, service.DecisionInput{Note: "ok"})
	require.NoError(t, err)

	newJob, err := proposalSvc.ConvertToJob(ctx, owner, p.ID)
	require.NoError(t, err)

	assert.NotEqual(t, job.ID, newJob.ID)
	assert.Equal(t, domain.JobStatusScheduled, newJob.Status)
	assert.True(t, newJob.ProposalGenerated)
	assert.Equal(t, job.ClientID, newJob.ClientID)
	assert.Equal(t, job.Title, newJob.Title)
	assert.Equal(t, job.Description, newJob.Description)

	source, err := jobs.GetByID(ctx, tenant.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusLead, source.Status)

	final, err := proposalSvc.GetByID(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusApproved, final.Status)
	assert.Contains(t, domain.SpecsNotes(final.SpecsJSON), "Approved: ok")
	require.NotNil(t, final.ConvertedJobID)
	assert.Equal(t, newJob.ID, *final.ConvertedJobID)

	versions, err := proposalSvc.ListVersions(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)
	assert.Zero(t, versions[0].PriceEstimate)

	_, err = proposalSvc.ConvertToJob(ctx, owner, p.ID)
	assert.ErrorIs(t, err, domain.ErrProposalAlreadyConverted)
	email.AssertExpectations(t)
}

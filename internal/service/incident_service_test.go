package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
	"fieldpilot/mocks"
)

type incidentDeps struct {
	incidents *mocks.MockIncidentRepo
	jobs      *mocks.MockJobRepo
	users     *mocks.MockUserRepo
	tenants   *mocks.MockTenantRepo
	branding  *mocks.MockBrandingRepo
	drafter   *mocks.MockDrafter
	email     *mocks.MockEmailSender
}

func setupIncidentService() (service.IncidentService, *incidentDeps) {
	d := &incidentDeps{
		incidents: new(mocks.MockIncidentRepo),
		jobs:      new(mocks.MockJobRepo),
		users:     new(mocks.MockUserRepo),
		tenants:   new(mocks.MockTenantRepo),
		branding:  new(mocks.MockBrandingRepo),
		drafter:   new(mocks.MockDrafter),
		email:     new(mocks.MockEmailSender),
	}
	svc := service.NewIncidentService(d.incidents, d.jobs, d.users, d.tenants, d.branding, d.drafter, d.email)
	return svc, d
}

func operatorActor(tenantID uuid.UUID) service.Actor {
	return service.Actor{TenantID: tenantID, UserID: uuid.New(), Role: domain.RoleOperator}
}

func TestIncidentService_Create_AssignedOperator(t *testing.T) {
	svc, d := setupIncidentService()
	actor := operatorActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Title: "Panel upgrade",
		AssignedOperators: domain.IDList{actor.UserID}}

	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.incidents.On("Create", mock.Anything, mock.AnythingOfType("*domain.IncidentReport")).Return(nil)

	inc, err := svc.Create(context.Background(), actor, service.CreateIncidentInput{
		JobID: job.ID, Severity: domain.SeverityHigh, Description: " scorched breaker ",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusOpen, inc.ResolutionStatus)
	assert.Equal(t, "Panel upgrade", inc.JobTitle)
	assert.Equal(t, "scorched breaker", inc.Description)
	assert.Equal(t, actor.UserID, inc.OperatorID)
	d.email.AssertNotCalled(t, "SendCriticalIncident", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIncidentService_Create_UnassignedOperator(t *testing.T) {
	svc, d := setupIncidentService()
	actor := operatorActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID}

	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)

	_, err := svc.Create(context.Background(), actor, service.CreateIncidentInput{
		JobID: job.ID, Severity: domain.SeverityLow, Description: "x",
	})

	assert.ErrorIs(t, err, domain.ErrOperatorNotAssigned)
	d.incidents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIncidentService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		actor service.Actor
		input service.CreateIncidentInput
		want  error
	}{
		{"client", service.Actor{Role: domain.RoleClient}, service.CreateIncidentInput{Severity: domain.SeverityLow, Description: "x"}, domain.ErrInsufficientRole},
		{"unknown severity", ownerActor(uuid.New()), service.CreateIncidentInput{Severity: "urgent", Description: "x"}, domain.ErrInvalidInput},
		{"blank description", ownerActor(uuid.New()), service.CreateIncidentInput{Severity: domain.SeverityLow, Description: "  "}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := setupIncidentService()

			_, err := svc.Create(context.Background(), tt.actor, tt.input)

			assert.ErrorIs(t, err, tt.want)
			d.jobs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestIncidentService_Create_CriticalNotifiesOwners(t *testing.T) {
	svc, d := setupIncidentService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Title: "Panel upgrade"}
	owners := []domain.User{
		{ID: uuid.New(), Email: "a@volt.test", DisplayName: "Ana"},
		{ID: uuid.New(), Email: "b@volt.test", DisplayName: "Ben"},
	}

	d.jobs.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	d.incidents.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.users.On("List", mock.Anything, actor.TenantID, port.UserFilter{Role: domain.RoleOwner, Status: domain.UserStatusActive}).
		Return(owners, nil)
	d.users.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).
		Return(&domain.User{ID: actor.UserID, DisplayName: "Ana"}, nil)
	d.branding.On("Get", mock.Anything, actor.TenantID).Return(&domain.TenantBranding{BusinessName: "Volt Bros"}, nil)
	d.email.On("SendCriticalIncident", mock.Anything, "a@volt.test", "Ana", mock.Anything).Return(errors.New("smtp down"))
	d.email.On("SendCriticalIncident", mock.Anything, "b@volt.test", "Ben", mock.MatchedBy(func(n port.IncidentNotice) bool {
		return n.ReportedBy == "Ana" && n.BusinessName == "Volt Bros" && n.JobTitle == "Panel upgrade"
	})).Return(nil)

	inc, err := svc.Create(context.Background(), actor, service.CreateIncidentInput{
		JobID: job.ID, Severity: domain.SeverityCritical, Description: "arc flash",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SeverityCritical, inc.Severity)
	d.email.AssertExpectations(t)
}

func TestIncidentService_GetByID_OperatorSeesOnlyOwnReports(t *testing.T) {
	svc, d := setupIncidentService()
	actor := operatorActor(uuid.New())
	inc := &domain.IncidentReport{ID: uuid.New(), TenantID: actor.TenantID, OperatorID: uuid.New()}

	d.incidents.On("GetByID", mock.Anything, actor.TenantID, inc.ID).Return(inc, nil)

	_, err := svc.GetByID(context.Background(), actor, inc.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIncidentService_List_ScopesByRole(t *testing.T) {
	t.Run("operator", func(t *testing.T) {
		svc, d := setupIncidentService()
		actor := operatorActor(uuid.New())

		d.incidents.On("List", mock.Anything, actor.TenantID, mock.MatchedBy(func(f port.IncidentFilter) bool {
			return f.OperatorID != nil && *f.OperatorID == actor.UserID && f.JobIDs == nil
		})).Return([]domain.IncidentReport{}, nil)

		_, err := svc.List(context.Background(), actor, port.IncidentFilter{})

		require.NoError(t, err)
		d.incidents.AssertExpectations(t)
	})

	t.Run("unlinked client", func(t *testing.T) {
		svc, d := setupIncidentService()
		actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleClient}

		d.users.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).Return(&domain.User{ID: actor.UserID}, nil)
		d.incidents.On("List", mock.Anything, actor.TenantID, mock.MatchedBy(func(f port.IncidentFilter) bool {
			return f.JobIDs != nil && len(f.JobIDs) == 0
		})).Return([]domain.IncidentReport{}, nil)

		got, err := svc.List(context.Background(), actor, port.IncidentFilter{})

		require.NoError(t, err)
		assert.Empty(t, got)
		d.jobs.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestIncidentService_Edit_OtherOperatorForbidden(t *testing.T) {
	svc, d := setupIncidentService()
	actor := operatorActor(uuid.New())
	inc := &domain.IncidentReport{ID: uuid.New(), TenantID: actor.TenantID, OperatorID: uuid.New()}
	desc := "updated"

	d.incidents.On("GetByID", mock.Anything, actor.TenantID, inc.ID).Return(inc, nil)

	_, err := svc.Edit(context.Background(), actor, inc.ID, service.EditIncidentInput{Description: &desc})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	d.incidents.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestIncidentService_Edit_EscalationNotifies(t *testing.T) {
	svc, d := setupIncidentService()
	actor := operatorActor(uuid.New())
	inc := &domain.IncidentReport{ID: uuid.New(), TenantID: actor.TenantID, OperatorID: actor.UserID,
		Severity: domain.SeverityMedium}
	critical := domain.SeverityCritical

	d.incidents.On("GetByID", mock.Anything, actor.TenantID, inc.ID).Return(inc, nil)
	d.incidents.On("Update", mock.Anything, inc).Return(nil)
	d.users.On("List", mock.Anything, actor.TenantID, mock.Anything).
		Return([]domain.User{{Email: "o@volt.test", DisplayName: "Owner"}}, nil)
	d.users.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).Return(nil, domain.ErrNotFound)
	d.branding.On("Get", mock.Anything, actor.TenantID).Return(&domain.TenantBranding{}, nil)
	d.email.On("SendCriticalIncident", mock.Anything, "o@volt.test", "Owner", mock.Anything).Return(nil)

	got, err := svc.Edit(context.Background(), actor, inc.ID, service.EditIncidentInput{Severity: &critical})

	require.NoError(t, err)
	assert.Equal(t, domain.SeverityCritical, got.Severity)
	d.email.AssertNumberOfCalls(t, "SendCriticalIncident", 1)
}

func TestIncidentService_SetReviewNotes_ManagerOnly(t *testing.T) {
	svc, _ := setupIncidentService()

	_, err := svc.SetReviewNotes(context.Background(), operatorActor(uuid.New()), uuid.New(), "looks fine")

	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestIncidentService_GenerateNarrative_KeepsReviewNotes(t *testing.T) {
	svc, d := setupIncidentService()
	actor := ownerActor(uuid.New())
	inc := &domain.IncidentReport{ID: uuid.New(), TenantID: actor.TenantID, OperatorID: uuid.New(),
		JobTitle: "Panel upgrade", Severity: domain.SeverityHigh, Description: "arc flash",
		Photos: domain.StringList{"a.jpg", "b.jpg"}, ReviewNotes: "checked by Ana"}

	d.incidents.On("GetByID", mock.Anything, actor.TenantID, inc.ID).Return(inc, nil)
	d.branding.On("Get", mock.Anything, actor.TenantID).Return(&domain.TenantBranding{BusinessName: "Volt Bros"}, nil)
	d.users.On("GetByID", mock.Anything, actor.TenantID, inc.OperatorID).
		Return(&domain.User{DisplayName: "Otto"}, nil)
	d.drafter.On("Draft", mock.Anything, mock.MatchedBy(func(r port.DraftRequest) bool {
		return r.Type == domain.DraftTypeIncident &&
			r.Payload["severity"] == "high" &&
			r.Payload["photo_count"] == 2 &&
			r.Payload["reported_by"] == "Otto"
	})).Return(&port.DraftResult{Markdown: "## Incident", Provider: "ollama", Model: "llama3.2"}, nil)
	d.incidents.On("Update", mock.Anything, inc).Return(nil)

	got, err := svc.GenerateNarrative(context.Background(), actor, inc.ID)

	require.NoError(t, err)
	assert.Equal(t, "## Incident", got.GeneratedNarrative)
	assert.Equal(t, "checked by Ana", got.ReviewNotes)
}

func TestIncidentService_GenerateNarrative_ProviderDown(t *testing.T) {
	svc, d := setupIncidentService()
	actor := ownerActor(uuid.New())
	inc := &domain.IncidentReport{ID: uuid.New(), TenantID: actor.TenantID, OperatorID: uuid.New()}

	d.incidents.On("GetByID", mock.Anything, actor.TenantID, inc.ID).Return(inc, nil)
	d.branding.On("Get", mock.Anything, actor.TenantID).Return(&domain.TenantBranding{}, nil)
	d.users.On("GetByID", mock.Anything, actor.TenantID, inc.OperatorID).Return(nil, domain.ErrNotFound)
	d.drafter.On("Draft", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := svc.GenerateNarrative(context.Background(), actor, inc.ID)

	assert.ErrorIs(t, err, domain.ErrDraftUnavailable)
	d.incidents.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// High severity report walked through the whole resolution flow.
func TestIncidentWorkflow_AdvanceToClosed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	jobs := memJobs{store}
	svc := service.NewIncidentService(memIncidents{store}, jobs, memUsers{store}, memTenants{store},
		memBranding{store}, new(mocks.MockDrafter), new(mocks.MockEmailSender))

	tenantID := uuid.New()
	owner := ownerActor(tenantID)
	job := &domain.Job{TenantID: tenantID, Title: "Panel upgrade", Status: domain.JobStatusInProgress}
	require.NoError(t, jobs.Create(ctx, job))

	inc, err := svc.Create(ctx, owner, service.CreateIncidentInput{
		JobID: job.ID, Severity: domain.SeverityHigh, Description: "breaker tripped under load",
	})
	require.NoError(t, err)
	require.Equal(t, domain.IncidentStatusOpen, inc.ResolutionStatus)

	inc, err = svc.Advance(ctx, owner, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusInvestigating, inc.ResolutionStatus)

	inc, err = svc.Advance(ctx, owner, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusResolved, inc.ResolutionStatus)

	inc, err = svc.Advance(ctx, owner, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusClosed, inc.ResolutionStatus)

	_, err = svc.Advance(ctx, owner, inc.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

	stored, err := svc.GetByID(ctx, owner, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusClosed, stored.ResolutionStatus)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
	"fieldpilot/mocks"
)

func setupJobService() (service.JobService, *mocks.MockJobRepo, *mocks.MockClientRepo, *mocks.MockUserRepo) {
	jobRepo := new(mocks.MockJobRepo)
	clientRepo := new(mocks.MockClientRepo)
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewJobService(jobRepo, clientRepo, userRepo)
	return svc, jobRepo, clientRepo, userRepo
}

func ownerActor(tenantID uuid.UUID) service.Actor {
	return service.Actor{TenantID: tenantID, UserID: uuid.New(), Role: domain.RoleOwner}
}

func TestJobService_Create_Defaults(t *testing.T) {
	svc, jobRepo, clientRepo, _ := setupJobService()
	actor := ownerActor(uuid.New())
	clientID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, actor.TenantID, clientID).Return(&domain.Client{ID: clientID}, nil)
	jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)

	job, err := svc.Create(context.Background(), actor, service.CreateJobInput{Title: " Panel upgrade ", ClientID: clientID})

	require.NoError(t, err)
	assert.Equal(t, "Panel upgrade", job.Title)
	assert.Equal(t, domain.JobStatusLead, job.Status)
	assert.Equal(t, domain.PriorityMedium, job.Priority)
	assert.Equal(t, actor.UserID, job.CreatedBy)
	assert.Empty(t, job.AssignedOperators)
	jobRepo.AssertExpectations(t)
}

func TestJobService_Create_UnknownClient(t *testing.T) {
	svc, jobRepo, clientRepo, _ := setupJobService()
	actor := ownerActor(uuid.New())

	clientRepo.On("GetByID", mock.Anything, actor.TenantID, mock.Anything).Return(nil, domain.ErrNotFound)

	job, err := svc.Create(context.Background(), actor, service.CreateJobInput{Title: "x", ClientID: uuid.New()})

	assert.Nil(t, job)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	jobRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestJobService_Create_OperatorForbidden(t *testing.T) {
	svc, _, _, _ := setupJobService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleOperator}

	_, err := svc.Create(context.Background(), actor, service.CreateJobInput{Title: "x", ClientID: uuid.New()})

	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestJobService_Create_RejectsNonOperatorAssignee(t *testing.T) {
	svc, _, clientRepo, userRepo := setupJobService()
	actor := ownerActor(uuid.New())
	clientID, userID := uuid.New(), uuid.New()

	clientRepo.On("GetByID", mock.Anything, actor.TenantID, clientID).Return(&domain.Client{ID: clientID}, nil)
	userRepo.On("GetByID", mock.Anything, actor.TenantID, userID).
		Return(&domain.User{ID: userID, Role: domain.RoleClient, Status: domain.UserStatusActive}, nil)

	_, err := svc.Create(context.Background(), actor, service.CreateJobInput{
		Title: "x", ClientID: clientID, AssignedOperators: []uuid.UUID{userID},
	})

	assert.ErrorIs(t, err, domain.ErrNotAnOperator)
}

func TestJobService_Advance_MovesExactlyOneStep(t *testing.T) {
	steps := domain.JobFlow.Steps()
	for i := 0; i < len(steps)-1; i++ {
		from, want := steps[i], steps[i+1]
		t.Run(string(from), func(t *testing.T) {
			svc, jobRepo, _, _ := setupJobService()
			actor := ownerActor(uuid.New())
			job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: from}

			jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
			jobRepo.On("Update", mock.Anything, job).Return(nil)

			got, err := svc.Advance(context.Background(), actor, job.ID)

			require.NoError(t, err)
			assert.Equal(t, want, got.Status)
			jobRepo.AssertNumberOfCalls(t, "Update", 1)
		})
	}
}

func TestJobService_Advance_RefreshesLastUpdated(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := service.NewJobService(memJobs{store}, memClients{store}, memUsers{store})
	actor := ownerActor(uuid.New())

	stale := time.Now().UTC().Add(-2 * time.Hour)
	job := domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.JobStatusScheduled,
		CreatedAt: stale, LastUpdated: stale}
	store.jobs[job.ID] = job

	got, err := svc.Advance(ctx, actor, job.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, got.Status)
	assert.True(t, got.LastUpdated.After(stale))

	stored, err := memJobs{store}.GetByID(ctx, actor.TenantID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, stored.Status)
	assert.True(t, stored.LastUpdated.After(stale))
	assert.Equal(t, stale, stored.CreatedAt)
}

func TestJobService_Advance_TerminalIsNoOp(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.JobStatusClosed}

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)

	_, err := svc.Advance(context.Background(), actor, job.ID)

	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestJobService_Advance_CancelledIsOutsideFlow(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.JobStatusCancelled}

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)

	_, err := svc.Advance(context.Background(), actor, job.ID)

	assert.ErrorIs(t, err, domain.ErrStatusNotInFlow)
	jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestJobService_Advance_StampsCompletion(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.JobStatusOnHold}

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)

	got, err := svc.Advance(context.Background(), actor, job.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	assert.NotNil(t, got.ActualCompletion)
}

func TestJobService_Advance_UnassignedOperatorSeesNotFound(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleOperator}
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.JobStatusScheduled,
		AssignedOperators: domain.IDList{uuid.New()}}

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)

	_, err := svc.Advance(context.Background(), actor, job.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobService_Advance_ClientDenied(t *testing.T) {
	svc, _, _, _ := setupJobService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleClient}

	_, err := svc.Advance(context.Background(), actor, uuid.New())

	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestJobService_Update_DirectStatusEdit(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.JobStatusInProgress}
	cancelled := domain.JobStatusCancelled

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)

	got, err := svc.Update(context.Background(), actor, job.ID, service.UpdateJobInput{Status: &cancelled})

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, got.Status)
}

func TestJobService_Update_InvalidStatus(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, Status: domain.JobStatusLead}
	bogus := domain.JobStatus("archived")

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)

	_, err := svc.Update(context.Background(), actor, job.ID, service.UpdateJobInput{Status: &bogus})

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestJobService_Update_RejectsInvertedWindow(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, EstimatedStart: &start}

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)

	_, err := svc.Update(context.Background(), actor, job.ID, service.UpdateJobInput{EstimatedEnd: &end})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJobService_ToggleOperator_AddThenRemove(t *testing.T) {
	svc, jobRepo, _, userRepo := setupJobService()
	actor := ownerActor(uuid.New())
	opID := uuid.New()
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, AssignedOperators: domain.IDList{}}

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	jobRepo.On("Update", mock.Anything, job).Return(nil)
	userRepo.On("GetByID", mock.Anything, actor.TenantID, opID).
		Return(&domain.User{ID: opID, Role: domain.RoleOperator, Status: domain.UserStatusActive}, nil).Once()

	got, err := svc.ToggleOperator(context.Background(), actor, job.ID, opID)
	require.NoError(t, err)
	assert.True(t, got.AssignedOperators.Contains(opID))

	got, err = svc.ToggleOperator(context.Background(), actor, job.ID, opID)
	require.NoError(t, err)
	assert.False(t, got.AssignedOperators.Contains(opID))
	userRepo.AssertExpectations(t)
}

func TestJobService_ToggleOperator_DisabledOperator(t *testing.T) {
	svc, jobRepo, _, userRepo := setupJobService()
	actor := ownerActor(uuid.New())
	opID := uuid.New()
	job := &domain.Job{ID: uuid.New(), TenantID: actor.TenantID, AssignedOperators: domain.IDList{}}

	jobRepo.On("GetByID", mock.Anything, actor.TenantID, job.ID).Return(job, nil)
	userRepo.On("GetByID", mock.Anything, actor.TenantID, opID).
		Return(&domain.User{ID: opID, Role: domain.RoleOperator, Status: domain.UserStatusDisabled}, nil)

	_, err := svc.ToggleOperator(context.Background(), actor, job.ID, opID)

	assert.ErrorIs(t, err, domain.ErrNotAnOperator)
	jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestJobService_List_OperatorScopedByAssignment(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleOperator}

	jobRepo.On("List", mock.Anything, actor.TenantID, mock.MatchedBy(func(f port.JobFilter) bool {
		return f.OperatorID != nil && *f.OperatorID == actor.UserID && f.Status == domain.JobStatusScheduled
	})).Return([]domain.Job{{ID: uuid.New()}}, nil)

	jobs, err := svc.List(context.Background(), actor, port.JobFilter{Status: domain.JobStatusScheduled})

	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	jobRepo.AssertExpectations(t)
}

func TestJobService_List_ClientScopedByLinkedClient(t *testing.T) {
	svc, jobRepo, _, userRepo := setupJobService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleClient}
	clientID := uuid.New()

	userRepo.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).
		Return(&domain.User{ID: actor.UserID, Role: domain.RoleClient, LinkedClientID: &clientID}, nil)
	jobRepo.On("List", mock.Anything, actor.TenantID, mock.MatchedBy(func(f port.JobFilter) bool {
		return f.ClientID != nil && *f.ClientID == clientID && f.OperatorID == nil
	})).Return([]domain.Job{{ID: uuid.New(), ClientID: clientID}}, nil)

	jobs, err := svc.List(context.Background(), actor, port.JobFilter{})

	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	jobRepo.AssertExpectations(t)
}

func TestJobService_List_UnlinkedClientSeesNothing(t *testing.T) {
	svc, jobRepo, _, userRepo := setupJobService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleClient}

	userRepo.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).
		Return(&domain.User{ID: actor.UserID, Role: domain.RoleClient}, nil)

	jobs, err := svc.List(context.Background(), actor, port.JobFilter{})

	require.NoError(t, err)
	assert.Empty(t, jobs)
	jobRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobService_List_ClientCannotWidenToOtherClient(t *testing.T) {
	svc, jobRepo, _, userRepo := setupJobService()
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: domain.RoleClient}
	own, other := uuid.New(), uuid.New()

	userRepo.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).
		Return(&domain.User{ID: actor.UserID, LinkedClientID: &own}, nil)

	jobs, err := svc.List(context.Background(), actor, port.JobFilter{ClientID: &other})

	require.NoError(t, err)
	assert.Empty(t, jobs)
	jobRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobService_ListNeedingAssignment(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	needs := domain.Job{ID: uuid.New(), Status: domain.JobStatusScheduled, AssignedOperators: domain.IDList{}}
	lead := domain.Job{ID: uuid.New(), Status: domain.JobStatusLead, AssignedOperators: domain.IDList{}}
	staffed := domain.Job{ID: uuid.New(), Status: domain.JobStatusInProgress, AssignedOperators: domain.IDList{uuid.New()}}

	jobRepo.On("List", mock.Anything, actor.TenantID, port.JobFilter{}).Return([]domain.Job{needs, lead, staffed}, nil)

	jobs, err := svc.ListNeedingAssignment(context.Background(), actor)

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, needs.ID, jobs[0].ID)
}

func TestJobService_ListOverdue(t *testing.T) {
	svc, jobRepo, _, _ := setupJobService()
	actor := ownerActor(uuid.New())
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)
	overdue := domain.Job{ID: uuid.New(), Status: domain.JobStatusInProgress, EstimatedEnd: &past}
	done := domain.Job{ID: uuid.New(), Status: domain.JobStatusCompleted, EstimatedEnd: &past}
	onTime := domain.Job{ID: uuid.New(), Status: domain.JobStatusScheduled, EstimatedEnd: &future}

	jobRepo.On("List", mock.Anything, actor.TenantID, port.JobFilter{}).Return([]domain.Job{overdue, done, onTime}, nil)

	jobs, err := svc.ListOverdue(context.Background(), actor)

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, overdue.ID, jobs[0].ID)
}

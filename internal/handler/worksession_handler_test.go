package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/handler"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
	"fieldpilot/mocks"
)

func TestWorkSessionHandler_Start(t *testing.T) {
	mockSessions := new(mocks.MockWorkSessionService)
	h := handler.NewWorkSessionHandler(mockSessions)

	actor := testActor(domain.RoleOperator)
	jobID := uuid.New()
	mockSessions.On("Start", mock.Anything, actor, service.StartSessionInput{JobID: jobID}).
		Return(&domain.WorkSession{ID: uuid.New(), JobID: jobID, OperatorID: actor.UserID}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/sessions", map[string]string{"job_id": jobID.String()}, actor)

	h.Start(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSessions.AssertExpectations(t)
}

func TestWorkSessionHandler_Start_AlreadyActive(t *testing.T) {
	mockSessions := new(mocks.MockWorkSessionService)
	h := handler.NewWorkSessionHandler(mockSessions)

	actor := testActor(domain.RoleOperator)
	mockSessions.On("Start", mock.Anything, actor, mock.Anything).Return(nil, domain.ErrActiveSessionExists)

	c, w := newContext(http.MethodPost, "/api/v1/sessions", map[string]string{"job_id": uuid.New().String()}, actor)

	h.Start(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ACTIVE_SESSION_EXISTS", decode(t, w).Error.Code)
}

func TestWorkSessionHandler_End_NoBody(t *testing.T) {
	mockSessions := new(mocks.MockWorkSessionService)
	h := handler.NewWorkSessionHandler(mockSessions)

	actor := testActor(domain.RoleOperator)
	id := uuid.New()
	now := time.Now().UTC()
	mockSessions.On("End", mock.Anything, actor, id, service.EndSessionInput{}).
		Return(&domain.WorkSession{ID: id, EndTime: &now}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/sessions/"+id.String()+"/end", nil, actor)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.End(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSessions.AssertExpectations(t)
}

func TestWorkSessionHandler_Active_NoneReturnsNullData(t *testing.T) {
	mockSessions := new(mocks.MockWorkSessionService)
	h := handler.NewWorkSessionHandler(mockSessions)

	actor := testActor(domain.RoleOperator)
	mockSessions.On("GetActive", mock.Anything, actor).Return(nil, nil)

	c, w := newContext(http.MethodGet, "/api/v1/sessions/active", nil, actor)

	h.Active(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Data)
}

func TestWorkSessionHandler_List_DateFilters(t *testing.T) {
	mockSessions := new(mocks.MockWorkSessionService)
	h := handler.NewWorkSessionHandler(mockSessions)

	actor := testActor(domain.RoleAdmin)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	mockSessions.On("List", mock.Anything, actor, port.WorkSessionFilter{ActiveOnly: true, From: &from, To: &to}).
		Return([]domain.WorkSession{}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/sessions?active=true&from=2026-03-01&to=2026-03-31", nil, actor)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSessions.AssertExpectations(t)
}

func TestWorkSessionHandler_List_BadDate(t *testing.T) {
	mockSessions := new(mocks.MockWorkSessionService)
	h := handler.NewWorkSessionHandler(mockSessions)

	c, w := newContext(http.MethodGet, "/api/v1/sessions?from=03/01/2026", nil, testActor(domain.RoleAdmin))

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSessions.AssertNotCalled(t, "List")
}

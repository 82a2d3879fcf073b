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

type userDeps struct {
	users    *mocks.MockUserRepo
	clients  *mocks.MockClientRepo
	tenants  *mocks.MockTenantRepo
	branding *mocks.MockBrandingRepo
	identity *mocks.MockIdentityProvider
	email    *mocks.MockEmailSender
}

func setupUserService() (service.UserService, *userDeps) {
	d := &userDeps{
		users:    new(mocks.MockUserRepo),
		clients:  new(mocks.MockClientRepo),
		tenants:  new(mocks.MockTenantRepo),
		branding: new(mocks.MockBrandingRepo),
		identity: new(mocks.MockIdentityProvider),
		email:    new(mocks.MockEmailSender),
	}
	return service.NewUserService(d.users, d.clients, d.tenants, d.branding, d.identity, d.email), d
}

func adminActor(tenantID uuid.UUID) service.Actor {
	return service.Actor{TenantID: tenantID, UserID: uuid.New(), Role: domain.RoleAdmin}
}

func TestUserService_Invite(t *testing.T) {
	svc, d := setupUserService()
	actor := adminActor(uuid.New())

	d.identity.On("CreateUser", mock.Anything, port.NewIdentityUser{Email: "otto@volt.test", DisplayName: "Otto"}).
		Return("uid-otto", nil)
	d.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	d.branding.On("Get", mock.Anything, actor.TenantID).Return(&domain.TenantBranding{BusinessName: "Volt Bros"}, nil)
	d.email.On("SendInvite", mock.Anything, "otto@volt.test", "Otto", "Volt Bros").Return(errors.New("ses down"))

	u, err := svc.Invite(context.Background(), actor, service.InviteUserInput{
		Email: " Otto@Volt.test ", DisplayName: "Otto", Role: domain.RoleOperator,
	})

	require.NoError(t, err)
	assert.Equal(t, "uid-otto", u.IdentityUID)
	assert.Equal(t, domain.UserStatusInvited, u.Status)
	assert.Equal(t, domain.RoleOperator, u.Role)
	d.email.AssertExpectations(t)
}

func TestUserService_Invite_RoleGrants(t *testing.T) {
	tests := []struct {
		name  string
		actor service.Actor
		role  domain.UserRole
		want  error
	}{
		{"admin cannot invite owner", adminActor(uuid.New()), domain.RoleOwner, domain.ErrInsufficientRole},
		{"unknown role", ownerActor(uuid.New()), "superuser", domain.ErrInvalidInput},
		{"operator cannot invite", operatorActor(uuid.New()), domain.RoleClient, domain.ErrInsufficientRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := setupUserService()

			_, err := svc.Invite(context.Background(), tt.actor, service.InviteUserInput{
				Email: "x@volt.test", DisplayName: "X", Role: tt.role,
			})

			assert.ErrorIs(t, err, tt.want)
			d.identity.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_GetByID_SelfOrManager(t *testing.T) {
	svc, d := setupUserService()
	actor := operatorActor(uuid.New())

	d.users.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).Return(&domain.User{ID: actor.UserID}, nil)

	_, err := svc.GetByID(context.Background(), actor, actor.UserID)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), actor, uuid.New())
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestUserService_Update_Guards(t *testing.T) {
	owner := domain.RoleOwner
	operator := domain.RoleOperator
	disabled := domain.UserStatusDisabled

	t.Run("admin cannot modify owner", func(t *testing.T) {
		svc, d := setupUserService()
		actor := adminActor(uuid.New())
		target := &domain.User{ID: uuid.New(), Role: domain.RoleOwner}
		d.users.On("GetByID", mock.Anything, actor.TenantID, target.ID).Return(target, nil)

		_, err := svc.Update(context.Background(), actor, target.ID, service.UpdateUserInput{Status: &disabled})

		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
		d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("admin cannot promote to owner", func(t *testing.T) {
		svc, d := setupUserService()
		actor := adminActor(uuid.New())
		target := &domain.User{ID: uuid.New(), Role: domain.RoleOperator}
		d.users.On("GetByID", mock.Anything, actor.TenantID, target.ID).Return(target, nil)

		_, err := svc.Update(context.Background(), actor, target.ID, service.UpdateUserInput{Role: &owner})

		assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	})

	t.Run("own role", func(t *testing.T) {
		svc, d := setupUserService()
		actor := ownerActor(uuid.New())
		d.users.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).
			Return(&domain.User{ID: actor.UserID, Role: domain.RoleOwner}, nil)

		_, err := svc.Update(context.Background(), actor, actor.UserID, service.UpdateUserInput{Role: &operator})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("self deactivation", func(t *testing.T) {
		svc, d := setupUserService()
		actor := ownerActor(uuid.New())
		d.users.On("GetByID", mock.Anything, actor.TenantID, actor.UserID).
			Return(&domain.User{ID: actor.UserID, Role: domain.RoleOwner}, nil)

		_, err := svc.Update(context.Background(), actor, actor.UserID, service.UpdateUserInput{Status: &disabled})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestUserService_Update_LeavingClientRoleUnlinks(t *testing.T) {
	svc, d := setupUserService()
	actor := ownerActor(uuid.New())
	clientID := uuid.New()
	target := &domain.User{ID: uuid.New(), Role: domain.RoleClient, LinkedClientID: &clientID}
	operator := domain.RoleOperator

	d.users.On("GetByID", mock.Anything, actor.TenantID, target.ID).Return(target, nil)
	d.clients.On("UnlinkUser", mock.Anything, actor.TenantID, clientID).Return(nil)
	d.users.On("Update", mock.Anything, target).Return(nil)

	u, err := svc.Update(context.Background(), actor, target.ID, service.UpdateUserInput{Role: &operator})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, u.Role)
	assert.Nil(t, u.LinkedClientID)
	d.clients.AssertExpectations(t)
}

func TestUserService_Disable_RevokesIdentitySessions(t *testing.T) {
	svc, d := setupUserService()
	actor := ownerActor(uuid.New())
	target := &domain.User{ID: uuid.New(), IdentityUID: "uid-x", Role: domain.RoleOperator, Status: domain.UserStatusActive}

	d.users.On("GetByID", mock.Anything, actor.TenantID, target.ID).Return(target, nil)
	d.users.On("Update", mock.Anything, target).Return(nil)
	d.identity.On("RevokeSessions", mock.Anything, "uid-x").Return(errors.New("firebase unavailable"))

	u, err := svc.Disable(context.Background(), actor, target.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusDisabled, u.Status)
	d.identity.AssertExpectations(t)
}

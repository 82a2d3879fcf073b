package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// InviteUserInput is the DTO for inviting a team member or client user.
type InviteUserInput struct {
	Email       string          `json:"email" binding:"required,email"`
	DisplayName string          `json:"display_name" binding:"required"`
	Role        domain.UserRole `json:"role" binding:"required"`
}

// UpdateUserInput is the DTO for updating a user.
type UpdateUserInput struct {
	DisplayName *string            `json:"display_name"`
	Role        *domain.UserRole   `json:"role"`
	Status      *domain.UserStatus `json:"status"`
}

// UserService defines the team management contract.
type UserService interface {
	Invite(ctx context.Context, actor Actor, input InviteUserInput) (*domain.User, error)
	GetByID(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error)
	List(ctx context.Context, actor Actor, filter port.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, actor Actor, userID uuid.UUID, input UpdateUserInput) (*domain.User, error)
	Disable(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	repo         port.UserRepository
	clientRepo   port.ClientRepository
	tenantRepo   port.TenantRepository
	brandingRepo port.BrandingRepository
	identity     port.IdentityProvider
	emailSender  port.EmailSender
}

// NewUserService creates a new UserService implementation.
func NewUserService(
	repo port.UserRepository,
	clientRepo port.ClientRepository,
	tenantRepo port.TenantRepository,
	brandingRepo port.BrandingRepository,
	identity port.IdentityProvider,
	emailSender port.EmailSender,
) UserService {
	return &userService{
		repo:         repo,
		clientRepo:   clientRepo,
		tenantRepo:   tenantRepo,
		brandingRepo: brandingRepo,
		identity:     identity,
		emailSender:  emailSender,
	}
}

// Invite provisions the identity principal and an invited tenant user.
// Only owners may invite other owners.
func (s *userService) Invite(ctx context.Context, actor Actor, input InviteUserInput) (*domain.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := checkRoleGrant(actor, input.Role); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	uid, err := s.identity.CreateUser(ctx, port.NewIdentityUser{Email: email, DisplayName: input.DisplayName})
	if err != nil {
		return nil, fmt.Errorf("userService.Invite: %w", err)
	}

	user := &domain.User{
		TenantID:    actor.TenantID,
		IdentityUID: uid,
		Role:        input.Role,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Email:       email,
		Status:      domain.UserStatusInvited,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("userService.Invite: %s invited as %s by %s", user.ID, user.Role, actor.UserID)

	name := businessName(ctx, s.brandingRepo, s.tenantRepo, actor.TenantID)
	if err := s.emailSender.SendInvite(ctx, user.Email, user.DisplayName, name); err != nil {
		log.Printf("WARNING: failed to send invite email to %s: %v", user.Email, err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error) {
	if !actor.IsManager() && actor.UserID != userID {
		return nil, domain.ErrInsufficientRole
	}
	return s.repo.GetByID(ctx, actor.TenantID, userID)
}

func (s *userService) List(ctx context.Context, actor Actor, filter port.UserFilter) ([]domain.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, actor.TenantID, filter)
}

func (s *userService) Update(ctx context.Context, actor Actor, userID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleOwner && actor.Role != domain.RoleOwner {
		return nil, domain.ErrInsufficientRole
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
		}
		user.DisplayName = name
	}
	if input.Role != nil && *input.Role != user.Role {
		if userID == actor.UserID {
			return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrForbidden)
		}
		if err := checkRoleGrant(actor, *input.Role); err != nil {
			return nil, err
		}
		// A user leaving the client role gives up its client link.
		if user.Role == domain.RoleClient && user.LinkedClientID != nil {
			if err := s.clientRepo.UnlinkUser(ctx, actor.TenantID, *user.LinkedClientID); err != nil {
				return nil, err
			}
			user.LinkedClientID = nil
		}
		user.Role = *input.Role
	}
	if input.Status != nil {
		if !domain.ValidUserStatuses[*input.Status] {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *input.Status)
		}
		if userID == actor.UserID && *input.Status != domain.UserStatusActive {
			return nil, fmt.Errorf("%w: cannot deactivate yourself", domain.ErrForbidden)
		}
		user.Status = *input.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Disable blocks the user from signing in and revokes their identity tokens.
// Users are never hard-deleted.
func (s *userService) Disable(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error) {
	disabled := domain.UserStatusDisabled
	user, err := s.Update(ctx, actor, userID, UpdateUserInput{Status: &disabled})
	if err != nil {
		return nil, err
	}
	if err := s.identity.RevokeSessions(ctx, user.IdentityUID); err != nil {
		log.Printf("WARNING: userService.Disable: revoking sessions for %s: %v", user.ID, err)
	}
	log.Printf("userService.Disable: user %s disabled by %s", user.ID, actor.UserID)
	return user, nil
}

func checkRoleGrant(actor Actor, role domain.UserRole) error {
	if !domain.ValidUserRoles[role] {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if role == domain.RoleOwner && actor.Role != domain.RoleOwner {
		return domain.ErrInsufficientRole
	}
	return nil
}

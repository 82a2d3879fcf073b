package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// ClientInput is the DTO for creating or replacing a client's contact details.
type ClientInput struct {
	CompanyName  string `json:"company_name" binding:"required"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// ClientService defines client management and the client/user link contract.
type ClientService interface {
	Create(ctx context.Context, actor Actor, input ClientInput) (*domain.Client, error)
	GetByID(ctx context.Context, actor Actor, clientID uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, actor Actor) ([]domain.Client, error)
	Update(ctx context.Context, actor Actor, clientID uuid.UUID, input ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, actor Actor, clientID uuid.UUID) error
	LinkUser(ctx context.Context, actor Actor, clientID, userID uuid.UUID) (*domain.Client, error)
	UnlinkUser(ctx context.Context, actor Actor, clientID uuid.UUID) (*domain.Client, error)
	ReconcileLinks(ctx context.Context, actor Actor) ([]domain.LinkRepair, error)
}

type clientService struct {
	clientRepo port.ClientRepository
	userRepo   port.UserRepository
	scope      scoper
}

// NewClientService creates a new ClientService implementation.
func NewClientService(clientRepo port.ClientRepository, userRepo port.UserRepository) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		userRepo:   userRepo,
		scope:      scoper{users: userRepo},
	}
}

func (s *clientService) Create(ctx context.Context, actor Actor, input ClientInput) (*domain.Client, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company name is required", domain.ErrInvalidInput)
	}
	client := &domain.Client{TenantID: actor.TenantID}
	applyClientInput(client, input)
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetByID lets managers read any client and client users read their own record.
func (s *clientService) GetByID(ctx context.Context, actor Actor, clientID uuid.UUID) (*domain.Client, error) {
	switch {
	case actor.IsManager():
	case actor.Role == domain.RoleClient:
		linked, err := s.scope.linkedClientID(ctx, actor)
		if err != nil {
			return nil, err
		}
		if linked == nil || *linked != clientID {
			return nil, domain.ErrNotFound
		}
	default:
		return nil, domain.ErrInsufficientRole
	}
	return s.clientRepo.GetByID(ctx, actor.TenantID, clientID)
}

func (s *clientService) List(ctx context.Context, actor Actor) ([]domain.Client, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return s.clientRepo.List(ctx, actor.TenantID)
}

func (s *clientService) Update(ctx context.Context, actor Actor, clientID uuid.UUID, input ClientInput) (*domain.Client, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company name is required", domain.ErrInvalidInput)
	}
	client, err := s.clientRepo.GetByID(ctx, actor.TenantID, clientID)
	if err != nil {
		return nil, err
	}
	applyClientInput(client, input)
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, actor Actor, clientID uuid.UUID) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, actor.TenantID, clientID)
}

func (s *clientService) LinkUser(ctx context.Context, actor Actor, clientID, userID uuid.UUID) (*domain.Client, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleClient {
		return nil, domain.ErrNotClientRole
	}

	if err := s.clientRepo.LinkUser(ctx, actor.TenantID, clientID, userID); err != nil {
		return nil, err
	}
	log.Printf("clientService.LinkUser: client %s linked to user %s by %s", clientID, userID, actor.UserID)
	return s.clientRepo.GetByID(ctx, actor.TenantID, clientID)
}

func (s *clientService) UnlinkUser(ctx context.Context, actor Actor, clientID uuid.UUID) (*domain.Client, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := s.clientRepo.UnlinkUser(ctx, actor.TenantID, clientID); err != nil {
		return nil, err
	}
	log.Printf("clientService.UnlinkUser: client %s unlinked by %s", clientID, actor.UserID)
	return s.clientRepo.GetByID(ctx, actor.TenantID, clientID)
}

// ReconcileLinks clears pointers that are not matched by the other side:
// a client pointing at a missing or non-client user, a client whose user
// points elsewhere, and a user pointing at a client that does not point back.
func (s *clientService) ReconcileLinks(ctx context.Context, actor Actor) ([]domain.LinkRepair, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return ReconcileTenantLinks(ctx, s.clientRepo, s.userRepo, actor.TenantID)
}

// ReconcileTenantLinks runs link reconciliation for one tenant. It is shared
// by the service and the reconcile command.
func ReconcileTenantLinks(ctx context.Context, clients port.ClientRepository, users port.UserRepository, tenantID uuid.UUID) ([]domain.LinkRepair, error) {
	clientList, err := clients.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	userList, err := users.List(ctx, tenantID, port.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	usersByID := make(map[uuid.UUID]*domain.User, len(userList))
	for i := range userList {
		usersByID[userList[i].ID] = &userList[i]
	}
	clientsByID := make(map[uuid.UUID]*domain.Client, len(clientList))
	for i := range clientList {
		clientsByID[clientList[i].ID] = &clientList[i]
	}

	repairs := []domain.LinkRepair{}
	for i := range clientList {
		c := &clientList[i]
		if c.LinkedUserID == nil {
			continue
		}
		u, ok := usersByID[*c.LinkedUserID]
		if ok && u.Role == domain.RoleClient && u.LinkedClientID != nil && *u.LinkedClientID == c.ID {
			continue
		}
		if err := clients.ClearClientLink(ctx, tenantID, c.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return repairs, fmt.Errorf("clearing client %s: %w", c.ID, err)
		}
		clientID, userID := c.ID, *c.LinkedUserID
		repairs = append(repairs, domain.LinkRepair{ClientID: &clientID, UserID: &userID, Action: "cleared_client_link"})
		c.LinkedUserID = nil
	}

	for i := range userList {
		u := &userList[i]
		if u.LinkedClientID == nil {
			continue
		}
		c, ok := clientsByID[*u.LinkedClientID]
		if ok && c.LinkedUserID != nil && *c.LinkedUserID == u.ID {
			continue
		}
		if err := clients.ClearUserLink(ctx, tenantID, u.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return repairs, fmt.Errorf("clearing user %s: %w", u.ID, err)
		}
		clientID, userID := *u.LinkedClientID, u.ID
		repairs = append(repairs, domain.LinkRepair{ClientID: &clientID, UserID: &userID, Action: "cleared_user_link"})
	}

	if len(repairs) > 0 {
		log.Printf("service.ReconcileTenantLinks: tenant %s repaired %d link(s)", tenantID, len(repairs))
	}
	return repairs, nil
}

func applyClientInput(c *domain.Client, input ClientInput) {
	c.CompanyName = strings.TrimSpace(input.CompanyName)
	c.ContactName = input.ContactName
	c.ContactEmail = strings.TrimSpace(input.ContactEmail)
	c.Phone = input.Phone
	c.Address = input.Address
}

package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
)

// TenantRepository defines the contract for tenant persistence.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
}

// UserFilter narrows user listings. Zero values are ignored.
type UserFilter struct {
	Role   domain.UserRole
	Status domain.UserStatus
}

// UserRepository defines the contract for user persistence.
// All query methods include tenantID to enforce tenant isolation at the data layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error)
	GetByIdentityUID(ctx context.Context, tenantID uuid.UUID, uid string) (*domain.User, error)
	List(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// ClientRepository defines the contract for client persistence, including the
// client/user link which must be written to both records atomically.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, tenantID, clientID uuid.UUID) error

	// LinkUser sets Client.LinkedUserID and User.LinkedClientID in one transaction.
	// It returns domain.ErrAlreadyLinked if either side already points elsewhere.
	LinkUser(ctx context.Context, tenantID, clientID, userID uuid.UUID) error
	// UnlinkUser clears both sides of the client's link in one transaction.
	UnlinkUser(ctx context.Context, tenantID, clientID uuid.UUID) error
	// ClearUserLink clears only User.LinkedClientID. Used by reconciliation.
	ClearUserLink(ctx context.Context, tenantID, userID uuid.UUID) error
	// ClearClientLink clears only Client.LinkedUserID. Used by reconciliation.
	ClearClientLink(ctx context.Context, tenantID, clientID uuid.UUID) error
}

// JobFilter narrows job listings. Zero values are ignored.
type JobFilter struct {
	Status     domain.JobStatus
	Priority   domain.JobPriority
	ClientID   *uuid.UUID
	OperatorID *uuid.UUID // matches jobs whose assigned operators contain this user
}

// JobRepository defines the contract for job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error)
	List(ctx context.Context, tenantID uuid.UUID, filter JobFilter) ([]domain.Job, error)
	Update(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, tenantID, jobID uuid.UUID) error
}

// ProposalFilter narrows proposal listings. Zero values are ignored; a non-nil
// empty JobIDs matches nothing.
type ProposalFilter struct {
	Status domain.ProposalStatus
	JobID  *uuid.UUID
	JobIDs []uuid.UUID
}

// ProposalRepository defines the contract for proposal persistence.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *domain.Proposal) error
	GetByID(ctx context.Context, tenantID, proposalID uuid.UUID) (*domain.Proposal, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ProposalFilter) ([]domain.Proposal, error)
	// Update persists status and bookkeeping changes that do not create a new version.
	Update(ctx context.Context, proposal *domain.Proposal) error
	// UpdateWithRevision stores prev as a version snapshot and the edited proposal
	// in one atomic write.
	UpdateWithRevision(ctx context.Context, proposal *domain.Proposal, prev *domain.ProposalVersion) error
	ListVersions(ctx context.Context, tenantID, proposalID uuid.UUID) ([]domain.ProposalVersion, error)
	Delete(ctx context.Context, tenantID, proposalID uuid.UUID) error
	// CreateForJob inserts the proposal and raises its job's proposalGenerated
	// flag in one transaction. It fails with ErrProposalExists when the job
	// already has an open proposal.
	CreateForJob(ctx context.Context, proposal *domain.Proposal) error
	// ConvertToJob inserts job and records it as the proposal's converted job
	// in one transaction, re-checking that the proposal is approved and not
	// yet converted.
	ConvertToJob(ctx context.Context, proposal *domain.Proposal, job *domain.Job) error
}

// WorkSessionFilter narrows work session listings. Zero values are ignored; a
// non-nil empty JobIDs matches nothing.
type WorkSessionFilter struct {
	OperatorID *uuid.UUID
	JobID      *uuid.UUID
	JobIDs     []uuid.UUID
	ActiveOnly bool
	From       *time.Time
	To         *time.Time
}

// WorkSessionRepository defines the contract for work session persistence.
type WorkSessionRepository interface {
	// Start creates the session unless the operator already has an active one,
	// in which case it returns domain.ErrActiveSessionExists.
	Start(ctx context.Context, session *domain.WorkSession) error
	GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.WorkSession, error)
	GetActive(ctx context.Context, tenantID, operatorID uuid.UUID) (*domain.WorkSession, error)
	List(ctx context.Context, tenantID uuid.UUID, filter WorkSessionFilter) ([]domain.WorkSession, error)
	Update(ctx context.Context, session *domain.WorkSession) error
}

// IncidentFilter narrows incident listings. Zero values are ignored; a non-nil
// empty JobIDs matches nothing.
type IncidentFilter struct {
	Severity   domain.IncidentSeverity
	Status     domain.IncidentStatus
	OperatorID *uuid.UUID
	JobID      *uuid.UUID
	JobIDs     []uuid.UUID
}

// IncidentRepository defines the contract for incident report persistence.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.IncidentReport) error
	GetByID(ctx context.Context, tenantID, incidentID uuid.UUID) (*domain.IncidentReport, error)
	List(ctx context.Context, tenantID uuid.UUID, filter IncidentFilter) ([]domain.IncidentReport, error)
	Update(ctx context.Context, incident *domain.IncidentReport) error
	Delete(ctx context.Context, tenantID, incidentID uuid.UUID) error
}

// BrandingRepository stores the per-tenant branding singleton.
type BrandingRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantBranding, error)
	Save(ctx context.Context, branding *domain.TenantBranding) error
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

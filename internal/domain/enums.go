package domain

// MediaType represents the allowed media types for upload.
type MediaType string

const (
	MediaTypeJPG MediaType = "jpg"
	MediaTypePNG MediaType = "png"
	MediaTypePDF MediaType = "pdf"
	MediaTypeMP4 MediaType = "mp4"
	MediaTypeM4A MediaType = "m4a"
)

// AllowedContentTypes maps MIME content types back to MediaType.
var AllowedContentTypes = map[string]MediaType{
	"image/jpeg":      MediaTypeJPG,
	"image/png":       MediaTypePNG,
	"application/pdf": MediaTypePDF,
	"video/mp4":       MediaTypeMP4,
	"audio/mp4":       MediaTypeM4A,
}

// AllowedExtensions maps file extensions (without dot) to MediaType.
var AllowedExtensions = map[string]MediaType{
	"jpg":  MediaTypeJPG,
	"jpeg": MediaTypeJPG,
	"png":  MediaTypePNG,
	"pdf":  MediaTypePDF,
	"mp4":  MediaTypeMP4,
	"m4a":  MediaTypeM4A,
}

// UserRole defines the role of a principal within a tenant.
type UserRole string

const (
	RoleOwner    UserRole = "owner"
	RoleAdmin    UserRole = "admin"
	RoleOperator UserRole = "operator"
	RoleClient   UserRole = "client"
)

// ValidUserRoles is the set of assignable roles.
var ValidUserRoles = map[UserRole]bool{
	RoleOwner:    true,
	RoleAdmin:    true,
	RoleOperator: true,
	RoleClient:   true,
}

// IsManager reports whether the role has full tenant access.
func (r UserRole) IsManager() bool {
	return r == RoleOwner || r == RoleAdmin
}

// UserStatus tracks whether a user may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInvited  UserStatus = "invited"
	UserStatusDisabled UserStatus = "disabled"
)

// ValidUserStatuses is the set of assignable user statuses.
var ValidUserStatuses = map[UserStatus]bool{
	UserStatusActive:   true,
	UserStatusInvited:  true,
	UserStatusDisabled: true,
}

// JobStatus is a step in the job lifecycle.
type JobStatus string

const (
	JobStatusLead         JobStatus = "lead"
	JobStatusProposalSent JobStatus = "proposal_sent"
	JobStatusApproved     JobStatus = "approved"
	JobStatusScheduled    JobStatus = "scheduled"
	JobStatusInProgress   JobStatus = "in_progress"
	JobStatusOnHold       JobStatus = "on_hold"
	JobStatusCompleted    JobStatus = "completed"
	JobStatusInvoiced     JobStatus = "invoiced"
	JobStatusClosed       JobStatus = "closed"
	JobStatusCancelled    JobStatus = "cancelled"
)

// JobPriority ranks jobs for scheduling.
type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityMedium JobPriority = "medium"
	PriorityHigh   JobPriority = "high"
	PriorityUrgent JobPriority = "urgent"
)

// ValidJobPriorities is the set of assignable priorities.
var ValidJobPriorities = map[JobPriority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// ProposalStatus is a step in the proposal lifecycle.
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusViewed   ProposalStatus = "viewed"
	ProposalStatusApproved ProposalStatus = "approved"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// IncidentSeverity grades an incident report.
type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

// IncidentStatus is a step in the incident resolution flow.
type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
	IncidentStatusClosed        IncidentStatus = "closed"
)

// DraftType selects the prompt family used by the AI drafter.
type DraftType string

const (
	DraftTypeProposal DraftType = "proposal"
	DraftTypeIncident DraftType = "incident"
)

// MediaOwner identifies which entity an uploaded media object is attached to.
type MediaOwner string

const (
	MediaOwnerWorkSession MediaOwner = "work_session"
	MediaOwnerIncident    MediaOwner = "incident"
	MediaOwnerProposal    MediaOwner = "proposal"
)

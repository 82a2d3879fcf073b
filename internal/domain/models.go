package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated customer organisation.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User is a tenant-scoped principal mapped from the external identity provider.
type User struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	TenantID       uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	IdentityUID    string     `db:"identity_uid" json:"identity_uid"`
	Role           UserRole   `db:"role" json:"role"`
	DisplayName    string     `db:"display_name" json:"display_name"`
	Email          string     `db:"email" json:"email"`
	Status         UserStatus `db:"status" json:"status"`
	LinkedClientID *uuid.UUID `db:"linked_client_id" json:"linked_client_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the user may sign in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Client is a customer record; a client-role user may be linked to it for portal access.
type Client struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TenantID     uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	CompanyName  string     `db:"company_name" json:"company_name"`
	ContactName  string     `db:"contact_name" json:"contact_name"`
	ContactEmail string     `db:"contact_email" json:"contact_email"`
	Phone        string     `db:"phone" json:"phone"`
	Address      string     `db:"address" json:"address"`
	LinkedUserID *uuid.UUID `db:"linked_user_id" json:"linked_user_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Job is a unit of field work.
type Job struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	TenantID          uuid.UUID   `db:"tenant_id" json:"tenant_id"`
	Title             string      `db:"title" json:"title"`
	Description       string      `db:"description" json:"description"`
	Status            JobStatus   `db:"status" json:"status"`
	Priority          JobPriority `db:"priority" json:"priority"`
	ClientID          uuid.UUID   `db:"client_id" json:"client_id"`
	AssignedOperators IDList      `db:"assigned_operators" json:"assigned_operators"`
	EstimatedStart    *time.Time  `db:"estimated_start" json:"estimated_start,omitempty"`
	EstimatedEnd      *time.Time  `db:"estimated_end" json:"estimated_end,omitempty"`
	ActualCompletion  *time.Time  `db:"actual_completion" json:"actual_completion,omitempty"`
	ProposalGenerated bool        `db:"proposal_generated" json:"proposal_generated"`
	CreatedBy         uuid.UUID   `db:"created_by" json:"created_by"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	LastUpdated       time.Time   `db:"last_updated" json:"last_updated"`
}

var assignmentExempt = map[JobStatus]bool{
	JobStatusLead:      true,
	JobStatusCancelled: true,
	JobStatusClosed:    true,
	JobStatusCompleted: true,
	JobStatusInvoiced:  true,
}

var overdueEligible = map[JobStatus]bool{
	JobStatusInProgress: true,
	JobStatusScheduled:  true,
	JobStatusOnHold:     true,
}

// NeedsAssignment reports whether the job has no operators while in an active phase.
func (j *Job) NeedsAssignment() bool {
	return len(j.AssignedOperators) == 0 && !assignmentExempt[j.Status]
}

// IsOverdue reports whether the estimated end has passed while work is still open.
func (j *Job) IsOverdue(now time.Time) bool {
	return j.EstimatedEnd != nil && j.EstimatedEnd.Before(now) && overdueEligible[j.Status]
}

// IsActive reports whether work on the job is scheduled or underway.
func (j *Job) IsActive() bool {
	return overdueEligible[j.Status]
}

// Proposal is a priced offer for a job.
type Proposal struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	TenantID        uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	JobID           uuid.UUID       `db:"job_id" json:"job_id"`
	SpecsJSON       json.RawMessage `db:"specs_json" json:"specs_json" swaggertype:"object"`
	Images          StringList      `db:"images" json:"images"`
	AIGeneratedText string          `db:"ai_generated_text" json:"ai_generated_text"`
	PriceEstimate   float64         `db:"price_estimate" json:"price_estimate"`
	Version         int             `db:"version" json:"version"`
	Status          ProposalStatus  `db:"status" json:"status"`
	ConvertedJobID  *uuid.UUID      `db:"converted_job_id" json:"converted_job_id,omitempty"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Readiness is a completeness heuristic for display: AI text 40, price 30,
// scope 20, past draft 10.
func (p *Proposal) Readiness() int {
	score := 0
	if p.AIGeneratedText != "" {
		score += 40
	}
	if p.PriceEstimate > 0 {
		score += 30
	}
	if SpecsScope(p.SpecsJSON) != "" {
		score += 20
	}
	if p.Status != ProposalStatusDraft {
		score += 10
	}
	return score
}

// Snapshot captures the proposal content at its current version.
func (p *Proposal) Snapshot(editedBy uuid.UUID) *ProposalVersion {
	specs := make(json.RawMessage, len(p.SpecsJSON))
	copy(specs, p.SpecsJSON)
	return &ProposalVersion{
		ProposalID:      p.ID,
		TenantID:        p.TenantID,
		Version:         p.Version,
		SpecsJSON:       specs,
		AIGeneratedText: p.AIGeneratedText,
		PriceEstimate:   p.PriceEstimate,
		EditedBy:        editedBy,
	}
}

// ProposalVersion is an immutable snapshot of a proposal's content at a version.
type ProposalVersion struct {
	ProposalID      uuid.UUID       `db:"proposal_id" json:"proposal_id"`
	TenantID        uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	Version         int             `db:"version" json:"version"`
	SpecsJSON       json.RawMessage `db:"specs_json" json:"specs_json" swaggertype:"object"`
	AIGeneratedText string          `db:"ai_generated_text" json:"ai_generated_text"`
	PriceEstimate   float64         `db:"price_estimate" json:"price_estimate"`
	EditedBy        uuid.UUID       `db:"edited_by" json:"edited_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// WorkSession is an operator's clocked time on a job.
type WorkSession struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	TenantID   uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	JobID      uuid.UUID  `db:"job_id" json:"job_id"`
	OperatorID uuid.UUID  `db:"operator_id" json:"operator_id"`
	Date       time.Time  `db:"date" json:"date"`
	StartTime  time.Time  `db:"start_time" json:"start_time"`
	EndTime    *time.Time `db:"end_time" json:"end_time,omitempty"`
	Notes      string     `db:"notes" json:"notes"`
	Media      StringList `db:"media" json:"media"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// IsActive reports whether the session has not been ended.
func (s *WorkSession) IsActive() bool {
	return s.EndTime == nil
}

// Duration returns the elapsed time of an ended session, or the time so far.
func (s *WorkSession) Duration(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// IncidentReport records a safety or quality incident on a job.
type IncidentReport struct {
	ID                 uuid.UUID        `db:"id" json:"id"`
	TenantID           uuid.UUID        `db:"tenant_id" json:"tenant_id"`
	JobID              uuid.UUID        `db:"job_id" json:"job_id"`
	JobTitle           string           `db:"job_title" json:"job_title"`
	OperatorID         uuid.UUID        `db:"operator_id" json:"operator_id"`
	Severity           IncidentSeverity `db:"severity" json:"severity"`
	Description        string           `db:"description" json:"description"`
	Photos             StringList       `db:"photos" json:"photos"`
	VoiceNoteRecorded  bool             `db:"voice_note_recorded" json:"voice_note_recorded"`
	GeneratedNarrative string           `db:"generated_narrative" json:"generated_narrative"`
	ReviewNotes        string           `db:"review_notes" json:"review_notes"`
	ResolutionStatus   IncidentStatus   `db:"resolution_status" json:"resolution_status"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// TenantBranding is the per-tenant display identity.
type TenantBranding struct {
	TenantID       uuid.UUID `db:"tenant_id" json:"tenant_id"`
	BusinessName   string    `db:"business_name" json:"business_name"`
	PrimaryColor   string    `db:"primary_color" json:"primary_color"`
	SecondaryColor string    `db:"secondary_color" json:"secondary_color"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultBranding returns the branding used before a tenant saves its own.
func DefaultBranding(tenantID uuid.UUID, businessName string) *TenantBranding {
	return &TenantBranding{
		TenantID:       tenantID,
		BusinessName:   businessName,
		PrimaryColor:   "#1E40AF",
		SecondaryColor: "#F59E0B",
	}
}

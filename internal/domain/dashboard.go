package domain

import "github.com/google/uuid"

// OperatorJobCount is the number of jobs assigned to one operator.
type OperatorJobCount struct {
	OperatorID  uuid.UUID `json:"operator_id"`
	DisplayName string    `json:"display_name"`
	JobCount    int       `json:"job_count"`
}

// Dashboard is a role-specific read-only summary. Fields that do not apply to
// the viewer's role are left empty.
type Dashboard struct {
	Role              UserRole          `json:"role"`
	TotalJobs         int               `json:"total_jobs"`
	ActiveJobs        int               `json:"active_jobs"`
	PendingAssignment int               `json:"pending_assignment"`
	OverdueJobs       int               `json:"overdue_jobs"`
	JobsByStatus      map[JobStatus]int `json:"jobs_by_status"`
	PipelineValue     float64           `json:"pipeline_value"`
	ConversionRate    float64           `json:"conversion_rate"`
	OpenIncidents     int               `json:"open_incidents"`
	CriticalIncidents int               `json:"critical_incidents"`

	OperatorJobCounts []OperatorJobCount `json:"operator_job_counts,omitempty"`
	ActiveSession     *WorkSession       `json:"active_session,omitempty"`
	HoursThisWeek     float64            `json:"hours_this_week,omitempty"`
	AwaitingDecision  []Proposal         `json:"awaiting_decision,omitempty"`
}

// ConversionRate is approved/(approved+rejected), or 0 when nothing was decided.
func ConversionRate(approved, rejected int) float64 {
	if approved+rejected == 0 {
		return 0
	}
	return float64(approved) / float64(approved+rejected)
}

// LinkRepair describes one pointer fixed by link reconciliation.
type LinkRepair struct {
	ClientID *uuid.UUID `json:"client_id,omitempty"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
	Action   string     `json:"action"`
}

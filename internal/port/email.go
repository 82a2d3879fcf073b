package port

import "context"

// ProposalNotice describes a proposal that was sent to a client.
type ProposalNotice struct {
	BusinessName  string
	JobTitle      string
	ProposalID    string
	PriceEstimate float64
}

// IncidentNotice describes a critical incident raised on a job.
type IncidentNotice struct {
	BusinessName string
	JobTitle     string
	IncidentID   string
	Description  string
	ReportedBy   string
}

// EmailSender defines the contract for sending notification emails.
type EmailSender interface {
	SendProposalSent(ctx context.Context, toEmail, toName string, notice ProposalNotice) error
	SendCriticalIncident(ctx context.Context, toEmail, toName string, notice IncidentNotice) error
	SendInvite(ctx context.Context, toEmail, toName, businessName string) error
}

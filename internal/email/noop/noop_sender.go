package noop

import (
	"context"
	"log"

	"fieldpilot/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs notifications to stdout.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendProposalSent(_ context.Context, toEmail, toName string, notice port.ProposalNotice) error {
	log.Printf("[NOOP EMAIL] Proposal %q sent to %s (%s): %s/portal/proposals/%s", notice.JobTitle, toName, toEmail, s.frontendURL, notice.ProposalID)
	return nil
}

func (s *noopSender) SendCriticalIncident(_ context.Context, toEmail, toName string, notice port.IncidentNotice) error {
	log.Printf("[NOOP EMAIL] Critical incident on %q for %s (%s): %s/incidents/%s", notice.JobTitle, toName, toEmail, s.frontendURL, notice.IncidentID)
	return nil
}

func (s *noopSender) SendInvite(_ context.Context, toEmail, toName, businessName string) error {
	log.Printf("[NOOP EMAIL] Invite to %s for %s (%s): %s/login", businessName, toName, toEmail, s.frontendURL)
	return nil
}

package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"fieldpilot/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(ctx context.Context, region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendProposalSent(ctx context.Context, toEmail, toName string, notice port.ProposalNotice) error {
	link := fmt.Sprintf("%s/portal/proposals/%s", s.frontendURL, notice.ProposalID)
	subject := fmt.Sprintf("%s sent you a proposal: %s", notice.BusinessName, notice.JobTitle)
	textBody := fmt.Sprintf("Hi %s,\n\n%s has sent you a proposal for \"%s\" (estimate %.2f).\nReview and approve it here:\n%s\n\n%s",
		toName, notice.BusinessName, notice.JobTitle, notice.PriceEstimate, link, notice.BusinessName)
	htmlBody := buildHTML(
		"You have a new proposal",
		toName,
		fmt.Sprintf("%s has sent you a proposal for <strong>%s</strong> with an estimate of %.2f.",
			html.EscapeString(notice.BusinessName), html.EscapeString(notice.JobTitle), notice.PriceEstimate),
		"Review Proposal",
		link,
		notice.BusinessName,
	)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendCriticalIncident(ctx context.Context, toEmail, toName string, notice port.IncidentNotice) error {
	link := fmt.Sprintf("%s/incidents/%s", s.frontendURL, notice.IncidentID)
	subject := fmt.Sprintf("CRITICAL incident on %s", notice.JobTitle)
	textBody := fmt.Sprintf("Hi %s,\n\n%s reported a critical incident on \"%s\":\n\n%s\n\nOpen the report:\n%s\n\n%s",
		toName, notice.ReportedBy, notice.JobTitle, notice.Description, link, notice.BusinessName)
	htmlBody := buildHTML(
		"Critical incident reported",
		toName,
		fmt.Sprintf("%s reported a critical incident on <strong>%s</strong>:</p><blockquote>%s</blockquote><p>",
			html.EscapeString(notice.ReportedBy), html.EscapeString(notice.JobTitle), html.EscapeString(notice.Description)),
		"Open Incident",
		link,
		notice.BusinessName,
	)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendInvite(ctx context.Context, toEmail, toName, businessName string) error {
	link := fmt.Sprintf("%s/login?email=%s", s.frontendURL, toEmail)
	subject := fmt.Sprintf("You've been invited to %s on Field Pilot", businessName)
	textBody := fmt.Sprintf("Hi %s,\n\n%s has invited you to Field Pilot. Sign in with this email address to get started:\n%s\n\n%s",
		toName, businessName, link, businessName)
	htmlBody := buildHTML(
		"You're invited",
		toName,
		fmt.Sprintf("%s has invited you to Field Pilot. Sign in with this email address to get started.", html.EscapeString(businessName)),
		"Sign In",
		link,
		businessName,
	)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildHTML(heading, name, bodyHTML, buttonLabel, link, footer string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  <p>Hi %s,</p>
  <p>%s</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #1E40AF; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">%s</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`, html.EscapeString(heading), html.EscapeString(name), bodyHTML, link, buttonLabel, link, html.EscapeString(footer))
}

package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInsufficientRole     = errors.New("insufficient role for this action")
	ErrTenantInactive       = errors.New("tenant is inactive")
	ErrUserInactive         = errors.New("user is inactive")
	ErrDuplicateEmail       = errors.New("email already exists for this tenant")
	ErrIdentityTokenInvalid = errors.New("identity token is invalid or expired")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrInvalidInput         = errors.New("invalid input")

	// Status flows
	ErrAlreadyTerminal   = errors.New("status is already at the end of its flow")
	ErrStatusNotInFlow   = errors.New("current status is not part of the advance flow")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("status transition not allowed")

	// Proposals
	ErrProposalExists           = errors.New("job already has an open proposal")
	ErrProposalNotApproved      = errors.New("proposal must be approved before conversion")
	ErrProposalAlreadyConverted = errors.New("proposal has already been converted to a job")
	ErrProposalLocked           = errors.New("proposal can no longer be edited")
	ErrInvalidSpecs             = errors.New("proposal specs do not match the expected format")

	// Work sessions and incidents
	ErrOperatorNotAssigned = errors.New("operator is not assigned to this job")
	ErrNotAnOperator       = errors.New("user is not an active operator")
	ErrActiveSessionExists = errors.New("operator already has an active work session")
	ErrSessionAlreadyEnded = errors.New("work session has already ended")

	// Client links
	ErrAlreadyLinked   = errors.New("client or user is already linked")
	ErrNotClientRole   = errors.New("only client users can be linked to a client record")
	ErrClientNotLinked = errors.New("client has no linked user")

	// AI drafting
	ErrDraftUnavailable = errors.New("draft generation is unavailable")
	ErrDraftRateLimited = errors.New("draft generation is rate limited")
)

package port

import "context"

// IdentityClaims holds the verified claims of an identity provider token.
type IdentityClaims struct {
	UID           string // provider-specific principal ID
	Email         string
	EmailVerified bool
	DisplayName   string
}

// NewIdentityUser carries the fields needed to provision a principal for a team invite.
type NewIdentityUser struct {
	Email       string
	DisplayName string
}

// IdentityProvider abstracts the external authentication service.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*IdentityClaims, error)
	// CreateUser provisions a principal, or returns the existing one for the same email.
	CreateUser(ctx context.Context, input NewIdentityUser) (uid string, err error)
	RevokeSessions(ctx context.Context, uid string) error
	Provider() string
}

package firebase

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// authClient is the subset of *auth.Client used here.
type authClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// IdentityProvider implements port.IdentityProvider on Firebase Authentication.
type IdentityProvider struct {
	client authClient
}

// NewIdentityProvider creates a provider from an initialized Firebase app.
func NewIdentityProvider(ctx context.Context, app *firebase.App) (*IdentityProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase auth client: %w", err)
	}
	return &IdentityProvider{client: client}, nil
}

func newIdentityProviderWithClient(client authClient) *IdentityProvider {
	return &IdentityProvider{client: client}
}

func (p *IdentityProvider) Provider() string {
	return "firebase"
}

func (p *IdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*port.IdentityClaims, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Printf("firebase.IdentityProvider.VerifyIDToken: %v", err)
		return nil, domain.ErrIdentityTokenInvalid
	}

	claims := &port.IdentityClaims{UID: token.UID}
	if v, ok := token.Claims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := token.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		claims.DisplayName = v
	}
	if claims.Email == "" {
		return nil, domain.ErrIdentityTokenInvalid
	}
	return claims, nil
}

func (p *IdentityProvider) CreateUser(ctx context.Context, input port.NewIdentityUser) (string, error) {
	params := (&auth.UserToCreate{}).Email(input.Email)
	if input.DisplayName != "" {
		params = params.DisplayName(input.DisplayName)
	}

	rec, err := p.client.CreateUser(ctx, params)
	if err == nil {
		return rec.UID, nil
	}
	if !auth.IsEmailAlreadyExists(err) {
		return "", fmt.Errorf("firebase.CreateUser: %w", err)
	}

	existing, err := p.client.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return "", fmt.Errorf("firebase.GetUserByEmail: %w", err)
	}
	return existing.UID, nil
}

func (p *IdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("firebase.RevokeRefreshTokens: %w", err)
	}
	return nil
}

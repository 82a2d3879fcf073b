package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fieldpilot/internal/config"
	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// Claims represents the JWT claims with tenant context.
type Claims struct {
	jwt.RegisteredClaims
	TenantID uuid.UUID       `json:"tenant_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

// Actor returns the caller identity carried by the token.
func (c *Claims) Actor() Actor {
	return Actor{TenantID: c.TenantID, UserID: c.UserID, Role: c.Role}
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResult is returned by signup and session exchange.
type AuthResult struct {
	User   *domain.User   `json:"user"`
	Tenant *domain.Tenant `json:"tenant"`
	Tokens *TokenPair     `json:"tokens"`
}

// SignupInput is the DTO for creating a business and its owner.
type SignupInput struct {
	IDToken      string `json:"id_token" binding:"required"`
	BusinessName string `json:"business_name" binding:"required"`
	DisplayName  string `json:"display_name"`
}

// SessionInput is the DTO for exchanging an identity token for API tokens.
type SessionInput struct {
	IDToken  string    `json:"id_token" binding:"required"`
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
}

// RefreshInput is the DTO for token refresh and sign-out requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Session(ctx context.Context, input SessionInput) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Signout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, actor Actor) (*domain.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo     port.UserRepository
	tenantRepo   port.TenantRepository
	brandingRepo port.BrandingRepository
	identity     port.IdentityProvider
	sessions     port.SessionStore
	cfg          config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(
	userRepo port.UserRepository,
	tenantRepo port.TenantRepository,
	brandingRepo port.BrandingRepository,
	identity port.IdentityProvider,
	sessions port.SessionStore,
	cfg config.JWTConfig,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		tenantRepo:   tenantRepo,
		brandingRepo: brandingRepo,
		identity:     identity,
		sessions:     sessions,
		cfg:          cfg,
	}
}

// Signup creates a tenant with the verified caller as its owner.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	claims, err := s.identity.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.BusinessName)
	if name == "" {
		return nil, fmt.Errorf("%w: business name is required", domain.ErrInvalidInput)
	}

	tenant := &domain.Tenant{Name: name, IsActive: true}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("auth.Signup: creating tenant: %w", err)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = claims.DisplayName
	}
	if displayName == "" {
		displayName = claims.Email
	}
	user := &domain.User{
		TenantID:    tenant.ID,
		IdentityUID: claims.UID,
		Role:        domain.RoleOwner,
		DisplayName: displayName,
		Email:       strings.ToLower(claims.Email),
		Status:      domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.brandingRepo.Save(ctx, domain.DefaultBranding(tenant.ID, tenant.Name)); err != nil {
		log.Printf("WARNING: auth.Signup: saving default branding for tenant %s: %v", tenant.ID, err)
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	log.Printf("auth.Signup: tenant %s created with owner %s", tenant.ID, user.ID)
	return &AuthResult{User: user, Tenant: tenant, Tokens: tokens}, nil
}

// Session exchanges a verified identity token for API tokens. Invited users
// become active on their first session.
func (s *authService) Session(ctx context.Context, input SessionInput) (*AuthResult, error) {
	claims, err := s.identity.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, input.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.Session: %w", err)
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantInactive
	}

	user, err := s.userRepo.GetByIdentityUID(ctx, tenant.ID, claims.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.Session: %w", err)
	}
	switch user.Status {
	case domain.UserStatusDisabled:
		return nil, domain.ErrUserInactive
	case domain.UserStatusInvited:
		user.Status = domain.UserStatusActive
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("auth.Session: activating user: %w", err)
		}
		log.Printf("auth.Session: invited user %s activated", user.ID)
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tenant: tenant, Tokens: tokens}, nil
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// new pair is issued.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, audienceRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	ok, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshToken: %w", err)
	}
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	tenant, err := s.tenantRepo.GetByID(ctx, claims.TenantID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantInactive
	}
	user, err := s.userRepo.GetByID(ctx, claims.TenantID, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrUserInactive
	}

	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("auth.RefreshToken: revoking old session: %w", err)
	}
	return s.generateTokenPair(ctx, user)
}

// Signout revokes the refresh session and, best effort, the identity
// provider's tokens for the user.
func (s *authService) Signout(ctx context.Context, refreshToken string) error {
	claims, err := s.validateTokenString(refreshToken, audienceRefresh)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return fmt.Errorf("auth.Signout: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.TenantID, claims.UserID)
	if err != nil {
		log.Printf("WARNING: auth.Signout: loading user %s: %v", claims.UserID, err)
		return nil
	}
	if err := s.identity.RevokeSessions(ctx, user.IdentityUID); err != nil {
		log.Printf("WARNING: auth.Signout: revoking %s sessions for %s: %v", s.identity.Provider(), user.ID, err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, actor.TenantID, actor.UserID)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, audienceAccess)
}

func (s *authService) generateTokenPair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)
	refreshExpiry := now.Add(s.cfg.RefreshTokenExpiry)

	accessToken, _, err := s.sign(user, audienceAccess, now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, refreshID, err := s.sign(user, audienceRefresh, now, refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}
	if err := s.sessions.Save(ctx, refreshID, user.ID.String(), refreshExpiry); err != nil {
		return nil, fmt.Errorf("storing refresh session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) sign(user *domain.User, audience string, now, expiry time.Time) (token, id string, err error) {
	id = uuid.New().String()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        id,
			Audience:  jwt.ClaimStrings{audience},
		},
		TenantID: user.TenantID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	return token, id, err
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithAudience(audience), jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

package handler

import (
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// SignupRequest represents the signup request body.
type SignupRequest struct {
	IDToken      string `json:"id_token" binding:"required" example:"eyJhbGciOiJSUzI1NiIsImtpZCI6..."`
	BusinessName string `json:"business_name" binding:"required" example:"Bright Spark Electrical"`
	DisplayName  string `json:"display_name" example:"Dana Reyes"`
}

// SessionRequest represents the identity token exchange body.
type SessionRequest struct {
	IDToken  string    `json:"id_token" binding:"required" example:"eyJhbGciOiJSUzI1NiIsImtpZCI6..."`
	TenantID uuid.UUID `json:"tenant_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// RefreshRequest represents the token refresh and sign-out request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// InviteUserRequest represents the invite request body.
type InviteUserRequest struct {
	Email       string          `json:"email" binding:"required" example:"sam@brightspark.example"`
	DisplayName string          `json:"display_name" binding:"required" example:"Sam Ortiz"`
	Role        domain.UserRole `json:"role" binding:"required" example:"operator"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	DisplayName *string            `json:"display_name" example:"Sam Ortiz"`
	Role        *domain.UserRole   `json:"role" example:"admin"`
	Status      *domain.UserStatus `json:"status" example:"active"`
}

// UpdateTenantRequest represents the update tenant request body.
type UpdateTenantRequest struct {
	Name *string `json:"name" example:"Bright Spark Electrical Ltd"`
}

// SaveBrandingRequest represents the branding request body.
type SaveBrandingRequest struct {
	BusinessName   string `json:"business_name" binding:"required" example:"Bright Spark Electrical"`
	PrimaryColor   string `json:"primary_color" binding:"required" example:"#1E40AF"`
	SecondaryColor string `json:"secondary_color" binding:"required" example:"#F59E0B"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    string `json:"expires_at" example:"2026-03-04T12:15:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"store not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// MediaURLResponse is a presigned download link for a media key.
type MediaURLResponse struct {
	Key string `json:"key" example:"tenants/550e8400-e29b-41d4-a716-446655440000/incident/660e8400-e29b-41d4-a716-446655440001/photo.jpg"`
	URL string `json:"url" example:"https://fieldpilot-media.s3.amazonaws.com/..."`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

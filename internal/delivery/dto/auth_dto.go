package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type NonceRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,eth_addr"`
}

type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,eth_addr"`
	Signature     string `json:"signature" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response DTOs

type NonceResponse struct {
	WalletAddress string    `json:"wallet_address"`
	Nonce         string    `json:"nonce"`
	Message       string    `json:"message"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID             uuid.UUID               `json:"id"`
	WalletAddress  string                  `json:"wallet_address"`
	DisplayName    string                  `json:"display_name,omitempty"`
	Role           string                  `json:"role"`
	DoctorProfile  *DoctorResponse         `json:"doctor_profile,omitempty"`
	PatientProfile *PatientProfileResponse `json:"patient_profile,omitempty"`
	LastLoginAt    *time.Time              `json:"last_login_at,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

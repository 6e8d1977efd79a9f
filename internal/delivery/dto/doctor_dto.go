package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// RegisterDoctorRequest is sent as multipart form fields alongside the
// legal_documents file.
type RegisterDoctorRequest struct {
	Name               string          `json:"name" validate:"required,min=2,max=255"`
	Specialization     string          `json:"specialization" validate:"required,max=100"`
	ProfileDescription string          `json:"profile_description" validate:"omitempty,max=4000"`
	Email              string          `json:"email" validate:"required,email"`
	ConsultationFee    decimal.Decimal `json:"consultation_fee"`
	FeeCurrency        string          `json:"fee_currency" validate:"omitempty,min=3,max=10"`
}

type UpdateDoctorSelfRequest struct {
	Name               string           `json:"name" validate:"omitempty,min=2,max=255"`
	Specialization     string           `json:"specialization" validate:"omitempty,max=100"`
	ProfileDescription *string          `json:"profile_description" validate:"omitempty,max=4000"`
	Email              string           `json:"email" validate:"omitempty,email"`
	ConsultationFee    *decimal.Decimal `json:"consultation_fee"`
	FeeCurrency        string           `json:"fee_currency" validate:"omitempty,min=3,max=10"`
}

type LinkOnChainRequest struct {
	OnChainID uint32 `json:"onchain_id" validate:"required"`
}

// Response DTOs

type RatingSummaryResponse struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type DoctorResponse struct {
	ID                     uuid.UUID              `json:"id"`
	WalletAddress          string                 `json:"wallet_address"`
	OnChainID              *uint32                `json:"onchain_id,omitempty"`
	Name                   string                 `json:"name"`
	Specialization         string                 `json:"specialization"`
	ProfileDescription     string                 `json:"profile_description,omitempty"`
	Email                  string                 `json:"email,omitempty"`
	ConsultationFee        decimal.Decimal        `json:"consultation_fee"`
	FeeCurrency            string                 `json:"fee_currency"`
	LegalDocumentsIPFSHash string                 `json:"legal_documents_ipfs_hash,omitempty"`
	VerificationStatus     string                 `json:"verification_status"`
	VerifiedAt             *time.Time             `json:"verified_at,omitempty"`
	Rating                 *RatingSummaryResponse `json:"rating,omitempty"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type OnChainDoctorResponse struct {
	ID                     uint32     `json:"id"`
	Name                   string     `json:"name"`
	Specialization         string     `json:"specialization"`
	ProfileDescription     string     `json:"profile_description,omitempty"`
	Email                  string     `json:"email,omitempty"`
	WalletAddress          string     `json:"wallet_address"`
	ConsultationFeePerHour string     `json:"consultation_fee_per_hour"`
	DepositFeeStored       string     `json:"deposit_fee_stored"`
	LegalDocumentsIPFSHash string     `json:"legal_documents_ipfs_hash,omitempty"`
	ProfileID              *uuid.UUID `json:"profile_id,omitempty"`
}

type PendingDoctorsResponse struct {
	OffChain []DoctorResponse        `json:"off_chain"`
	OnChain  []OnChainDoctorResponse `json:"on_chain"`
	Total    int                     `json:"total"`
}

type VerificationResponse struct {
	Doctor DoctorResponse `json:"doctor"`
	TxHash string         `json:"tx_hash,omitempty"`
}

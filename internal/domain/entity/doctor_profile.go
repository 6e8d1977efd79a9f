package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VerificationStatus is the admin review state of a doctor registration.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationDenied   VerificationStatus = "denied"
)

// DoctorProfile is a doctor's listing. OnChainID links the profile to its
// DoctorRegistry registration; once set, approve and deny are final.
type DoctorProfile struct {
	ID                     uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID                 *uuid.UUID         `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	WalletAddress          string             `gorm:"type:varchar(42);uniqueIndex;not null" json:"wallet_address"`
	OnChainID              *uint32            `gorm:"column:onchain_id;uniqueIndex" json:"onchain_id,omitempty"`
	Name                   string             `gorm:"type:varchar(255);not null" json:"name"`
	Specialization         string             `gorm:"type:varchar(100);not null;index" json:"specialization"`
	ProfileDescription     string             `gorm:"type:text" json:"profile_description,omitempty"`
	Email                  string             `gorm:"type:varchar(255)" json:"email,omitempty"`
	ConsultationFee        decimal.Decimal    `gorm:"type:numeric(20,6);not null" json:"consultation_fee"`
	FeeCurrency            string             `gorm:"type:varchar(10);not null;default:'USD'" json:"fee_currency"`
	LegalDocumentsIPFSHash string             `gorm:"column:legal_documents_ipfs_hash;type:varchar(128)" json:"legal_documents_ipfs_hash,omitempty"`
	VerificationStatus     VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"verification_status"`
	VerifiedAt             *time.Time         `json:"verified_at,omitempty"`
	CreatedAt              time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorProfile) TableName() string {
	return "doctors"
}

func (d *DoctorProfile) IsApproved() bool {
	return d.VerificationStatus == VerificationApproved
}

func (d *DoctorProfile) IsPending() bool {
	return d.VerificationStatus == VerificationPending
}

// LinkedOnChain reports whether the registration lives in the registry contract.
func (d *DoctorProfile) LinkedOnChain() bool {
	return d.OnChainID != nil
}

// CanDecide reports whether an admin may approve or deny the profile now.
func (d *DoctorProfile) CanDecide() bool {
	if d.LinkedOnChain() {
		return d.IsPending()
	}
	return true
}

// CanReset reports whether the profile may go back to pending. On-chain
// decisions are final.
func (d *DoctorProfile) CanReset() bool {
	return !d.LinkedOnChain() && !d.IsPending()
}

// DoctorFilter is a domain-level filter for the verified doctor listing.
type DoctorFilter struct {
	Name           string
	Specialization string
	Status         VerificationStatus
}

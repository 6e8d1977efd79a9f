package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type SelectSlotRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	SlotID   uuid.UUID `json:"slot_id" validate:"required"`
}

type ConfirmDetailsRequest struct {
	SettlementToken string `json:"settlement_token" validate:"required,min=2,max=10"`
}

// ProceedRequest optionally picks the settlement token before running the
// remaining steps.
type ProceedRequest struct {
	SettlementToken string `json:"settlement_token" validate:"omitempty,min=2,max=10"`
}

// Response DTOs

type BookingAttemptResponse struct {
	ID              uuid.UUID         `json:"id"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	SlotID          uuid.UUID         `json:"slot_id"`
	Stage           string            `json:"stage"`
	Fee             decimal.Decimal   `json:"fee"`
	FeeCurrency     string            `json:"fee_currency"`
	SettlementToken string            `json:"settlement_token,omitempty"`
	TokenAddress    string            `json:"token_address,omitempty"`
	ConvertedAmount *decimal.Decimal  `json:"converted_amount,omitempty"`
	AmountBaseUnits string            `json:"amount_base_units,omitempty"`
	PriceSource     *decimal.Decimal  `json:"price_source,omitempty"`
	PriceTarget     *decimal.Decimal  `json:"price_target,omitempty"`
	QuotedAt        *time.Time        `json:"quoted_at,omitempty"`
	ApprovalAmount  string            `json:"approval_amount,omitempty"`
	ApprovalTokens  *decimal.Decimal  `json:"approval_tokens,omitempty"`
	ApproveTxHash   string            `json:"approve_tx_hash,omitempty"`
	SessionTxHash   string            `json:"session_tx_hash,omitempty"`
	SessionID       string            `json:"session_id,omitempty"`
	LastError       string            `json:"last_error,omitempty"`
	Slot            *TimeSlotResponse `json:"slot,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type BookingAttemptListResponse struct {
	Attempts []BookingAttemptResponse `json:"attempts"`
	Total    int                      `json:"total"`
}

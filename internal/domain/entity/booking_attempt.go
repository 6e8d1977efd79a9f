package entity

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStage is the step a booking attempt will perform next.
type BookingStage string

const (
	StageSelectSlot     BookingStage = "select_slot"
	StageConfirmDetails BookingStage = "confirm_details"
	StageApproveToken   BookingStage = "approve_token"
	StageCreateSession  BookingStage = "create_session"
	StageConfirmed      BookingStage = "confirmed"
	StageExpired        BookingStage = "expired"
)

// BookingAttempt is the persisted state of one patient's walk through
// SELECT_SLOT, CONFIRM_DETAILS, APPROVE_TOKEN, CREATE_SESSION and CONFIRMED.
// A failed step leaves Stage unchanged and records LastError so the patient
// can retry from there.
type BookingAttempt struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientWallet   string          `gorm:"type:varchar(42);not null" json:"patient_wallet"`
	DoctorID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SlotID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"slot_id"`
	Stage           BookingStage    `gorm:"type:varchar(30);not null;index" json:"stage"`
	FeeAmount       decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"fee_amount"`
	FeeCurrency     string          `gorm:"type:varchar(10);not null" json:"fee_currency"`
	SettlementToken string          `gorm:"type:varchar(10)" json:"settlement_token,omitempty"`
	TokenAddress    string          `gorm:"type:varchar(42)" json:"token_address,omitempty"`
	TokenDecimals   uint8           `json:"token_decimals,omitempty"`
	ConvertedAmount decimal.Decimal `gorm:"type:numeric(38,18)" json:"converted_amount"`
	AmountBaseUnits string          `gorm:"type:varchar(80)" json:"amount_base_units,omitempty"`
	PriceSource     decimal.Decimal `gorm:"type:numeric(38,18)" json:"price_source"`
	PriceTarget     decimal.Decimal `gorm:"type:numeric(38,18)" json:"price_target"`
	QuotedAt        *time.Time      `json:"quoted_at,omitempty"`
	ApprovalAmount  string          `gorm:"type:varchar(80)" json:"approval_amount,omitempty"`
	ApproveTxHash   string          `gorm:"type:varchar(66)" json:"approve_tx_hash,omitempty"`
	SessionTxHash   string          `gorm:"type:varchar(66)" json:"session_tx_hash,omitempty"`
	SessionID       string          `gorm:"type:varchar(80);index" json:"session_id,omitempty"`
	LastError       string          `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BookingAttempt) TableName() string {
	return "booking_attempts"
}

// IsNative reports whether the attempt settles in the chain's gas currency.
func (a *BookingAttempt) IsNative() bool {
	return a.TokenAddress == ""
}

func (a *BookingAttempt) IsConfirmed() bool {
	return a.Stage == StageConfirmed
}

func (a *BookingAttempt) IsExpired() bool {
	return a.Stage == StageExpired
}

// IsQuoted reports whether CONFIRM_DETAILS has produced an amount.
func (a *BookingAttempt) IsQuoted() bool {
	return a.AmountBaseUnits != "" && a.SettlementToken != ""
}

// CanRequote reports whether the settlement token or quote may still change.
// Once a session transaction was submitted the amount is fixed.
func (a *BookingAttempt) CanRequote() bool {
	switch a.Stage {
	case StageConfirmDetails, StageApproveToken, StageCreateSession:
		return a.SessionTxHash == ""
	}
	return false
}

// StageAfterQuote is APPROVE_TOKEN for ERC-20 settlement and CREATE_SESSION
// for native settlement.
func (a *BookingAttempt) StageAfterQuote() BookingStage {
	if a.IsNative() {
		return StageCreateSession
	}
	return StageApproveToken
}

// Amount returns the quoted amount in token base units.
func (a *BookingAttempt) Amount() (*big.Int, bool) {
	if a.AmountBaseUnits == "" {
		return nil, false
	}
	return new(big.Int).SetString(a.AmountBaseUnits, 10)
}

// Fail records a step error without moving the stage.
func (a *BookingAttempt) Fail(err error) {
	if err == nil {
		a.LastError = ""
		return
	}
	a.LastError = err.Error()
}

package converter

import (
	"math/big"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/service"
)

// BookingAttemptToResponse converts a BookingAttempt entity to its DTO.
// Quote fields are only set once the attempt has been quoted.
func BookingAttemptToResponse(attempt *entity.BookingAttempt) *dto.BookingAttemptResponse {
	if attempt == nil {
		return nil
	}

	response := &dto.BookingAttemptResponse{
		ID:              attempt.ID,
		DoctorID:        attempt.DoctorID,
		SlotID:          attempt.SlotID,
		Stage:           string(attempt.Stage),
		Fee:             attempt.FeeAmount,
		FeeCurrency:     attempt.FeeCurrency,
		SettlementToken: attempt.SettlementToken,
		TokenAddress:    attempt.TokenAddress,
		ApprovalAmount:  attempt.ApprovalAmount,
		ApproveTxHash:   attempt.ApproveTxHash,
		SessionTxHash:   attempt.SessionTxHash,
		SessionID:       attempt.SessionID,
		LastError:       attempt.LastError,
		CreatedAt:       attempt.CreatedAt,
		UpdatedAt:       attempt.UpdatedAt,
	}

	if attempt.IsQuoted() {
		converted := attempt.ConvertedAmount
		priceSource := attempt.PriceSource
		priceTarget := attempt.PriceTarget
		response.ConvertedAmount = &converted
		response.AmountBaseUnits = attempt.AmountBaseUnits
		response.PriceSource = &priceSource
		response.PriceTarget = &priceTarget
		response.QuotedAt = attempt.QuotedAt
	}

	if units, ok := new(big.Int).SetString(attempt.ApprovalAmount, 10); ok {
		tokens := service.FromBaseUnits(units, attempt.TokenDecimals)
		response.ApprovalTokens = &tokens
	}

	return response
}

func BookingAttemptsToResponses(attempts []entity.BookingAttempt) []dto.BookingAttemptResponse {
	responses := make([]dto.BookingAttemptResponse, len(attempts))
	for i := range attempts {
		responses[i] = *BookingAttemptToResponse(&attempts[i])
	}
	return responses
}

package converter

import (
	"time"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
)

func TimeSlotToResponse(slot *entity.TimeSlot, now time.Time) *dto.TimeSlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.TimeSlotResponse{
		ID:        slot.ID,
		Date:      slot.Date,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		IsBooked:  slot.IsBooked,
		Held:      !slot.IsBooked && slot.IsHeld(now),
	}
}

func TimeSlotsToResponses(slots []entity.TimeSlot, now time.Time) []dto.TimeSlotResponse {
	responses := make([]dto.TimeSlotResponse, len(slots))
	for i := range slots {
		responses[i] = *TimeSlotToResponse(&slots[i], now)
	}
	return responses
}

func AvailabilityToResponse(availability *entity.DoctorAvailability, slots []entity.TimeSlot, now time.Time) *dto.AvailabilityResponse {
	if availability == nil {
		return nil
	}

	updatedAt := availability.UpdatedAt
	return &dto.AvailabilityResponse{
		DoctorID:      availability.DoctorID,
		WalletAddress: availability.WalletAddress,
		TimeSlots:     TimeSlotsToResponses(slots, now),
		UpdatedAt:     &updatedAt,
	}
}

package converter

import (
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
)

func PrescriptionToResponse(p *entity.Prescription) *dto.PrescriptionResponse {
	if p == nil {
		return nil
	}

	return &dto.PrescriptionResponse{
		SessionID:     p.SessionID,
		AppointmentID: p.AppointmentID,
		DoctorID:      p.DoctorID,
		PatientWallet: p.PatientWallet,
		IPFSHash:      p.IPFSHash,
		ReleaseTxHash: p.ReleaseTxHash,
		CreatedAt:     p.CreatedAt,
	}
}

func PrescriptionsToResponses(items []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(items))
	for i := range items {
		responses[i] = *PrescriptionToResponse(&items[i])
	}
	return responses
}

func ReviewToResponse(r *entity.Review) *dto.ReviewResponse {
	if r == nil {
		return nil
	}

	return &dto.ReviewResponse{
		ID:            r.ID,
		DoctorID:      r.DoctorID,
		SessionID:     r.SessionID,
		PatientWallet: r.PatientWallet,
		Rating:        r.Rating,
		Comment:       r.Comment,
		TxHash:        r.TxHash,
		CreatedAt:     r.CreatedAt,
	}
}

func ReviewsToResponses(reviews []entity.Review) []dto.ReviewResponse {
	responses := make([]dto.ReviewResponse, len(reviews))
	for i := range reviews {
		responses[i] = *ReviewToResponse(&reviews[i])
	}
	return responses
}

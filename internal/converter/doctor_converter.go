package converter

import (
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
)

// DoctorProfileToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:                     profile.ID,
		WalletAddress:          profile.WalletAddress,
		OnChainID:              profile.OnChainID,
		Name:                   profile.Name,
		Specialization:         profile.Specialization,
		ProfileDescription:     profile.ProfileDescription,
		Email:                  profile.Email,
		ConsultationFee:        profile.ConsultationFee,
		FeeCurrency:            profile.FeeCurrency,
		LegalDocumentsIPFSHash: profile.LegalDocumentsIPFSHash,
		VerificationStatus:     string(profile.VerificationStatus),
		VerifiedAt:             profile.VerifiedAt,
	}
}

// DoctorProfilesToResponses converts a slice of DoctorProfile entities to slice of DoctorResponse DTOs
func DoctorProfilesToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorProfileToResponse(&profiles[i])
	}
	return responses
}

func RatingSummaryToResponse(summary *entity.RatingSummary) *dto.RatingSummaryResponse {
	if summary == nil {
		return &dto.RatingSummaryResponse{}
	}
	return &dto.RatingSummaryResponse{
		Average: summary.Average,
		Count:   summary.Count,
	}
}

func RegisteredDoctorToResponse(doctor *gateway.RegisteredDoctor) *dto.OnChainDoctorResponse {
	if doctor == nil {
		return nil
	}

	response := &dto.OnChainDoctorResponse{
		ID:                     doctor.ID,
		Name:                   doctor.Name,
		Specialization:         doctor.Specialization,
		ProfileDescription:     doctor.ProfileDescription,
		Email:                  doctor.Email,
		WalletAddress:          doctor.WalletAddress.Hex(),
		LegalDocumentsIPFSHash: doctor.LegalDocumentsIPFSHash,
		ConsultationFeePerHour: "0",
		DepositFeeStored:       "0",
	}
	if doctor.ConsultationFeePerHour != nil {
		response.ConsultationFeePerHour = doctor.ConsultationFeePerHour.String()
	}
	if doctor.DepositFeeStored != nil {
		response.DepositFeeStored = doctor.DepositFeeStored.String()
	}
	return response
}

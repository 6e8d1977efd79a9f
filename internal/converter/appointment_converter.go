package converter

import (
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
)

func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                 a.ID,
		BookingAttemptID:   a.BookingAttemptID,
		SessionID:          a.SessionID,
		DoctorID:           a.DoctorID,
		DoctorWallet:       a.DoctorWallet,
		PatientWallet:      a.PatientWallet,
		Date:               a.Date,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Fee:                a.Fee,
		FeeCurrency:        a.FeeCurrency,
		SettlementToken:    a.SettlementToken,
		AmountPaid:         a.AmountPaid,
		Status:             string(a.Status),
		MeetingLink:        a.MeetingLink,
		DoctorJoined:       a.DoctorJoined,
		DoctorJoinedAt:     a.DoctorJoinedAt,
		PatientJoined:      a.PatientJoined,
		PatientJoinedAt:    a.PatientJoinedAt,
		BothPresent:        a.BothPresent,
		MeetingStartTime:   a.MeetingStartTime,
		MeetingCompleted:   a.MeetingCompleted,
		MeetingCompletedAt: a.MeetingCompletedAt,
	}
}

func SessionToResponse(s *gateway.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}

	response := &dto.SessionResponse{
		Patient:              s.Patient.Hex(),
		DoctorID:             s.DoctorID,
		Token:                s.Token.Hex(),
		StartTime:            s.StartTime.UTC(),
		Status:               s.Status.String(),
		PrescriptionIPFSHash: s.PrescriptionIPFSHash,
		Rating:               s.Rating,
	}
	if s.ID != nil {
		response.ID = s.ID.String()
	}
	if s.Amount != nil {
		response.Amount = s.Amount.String()
	}
	return response
}

func TaskToResponse(t *entity.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:            t.ID,
		AppointmentID: t.AppointmentID,
		Kind:          string(t.Kind),
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
		DoneAt:        t.DoneAt,
	}
}

func TasksToResponses(tasks []entity.Task) []dto.TaskResponse {
	responses := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = TaskToResponse(&tasks[i])
	}
	return responses
}

package usecase_test

import (
	"testing"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConsole(t *testing.T, appointment *entity.Appointment) (usecase.ConsoleUsecase, *mocks.MockAppointmentRepository) {
	t.Helper()
	db, _ := newMockDB(t)
	appts := new(mocks.MockAppointmentRepository)
	appts.On("Mutate", mock.Anything, appointment.ID).Return(appointment, nil)

	audit := new(mocks.MockAuditService)
	audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	console := usecase.NewConsoleUsecase(db, quietLogger(), appts, new(mocks.MockTaskRepository),
		new(mocks.MockDoctorProfileRepository), new(mocks.MockEscrowGateway), audit)
	return console, appts
}

func newAppointment() *entity.Appointment {
	return &entity.Appointment{
		ID:            uuid.New(),
		SessionID:     "42",
		DoctorWallet:  doctorWallet,
		PatientWallet: patientWallet,
		Status:        entity.AppointmentScheduled,
	}
}

func TestConsole_MarkParticipantJoined(t *testing.T) {
	doctorCtx := asUser(uuid.New(), doctorWallet, entity.RoleIDDoctor)
	patientCtx := asUser(uuid.New(), patientWallet, entity.RoleIDPatient)

	t.Run("both present once each side joined", func(t *testing.T) {
		appointment := newAppointment()
		console, _ := newConsole(t, appointment)

		first, err := console.MarkParticipantJoined(doctorCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.NoError(t, err)
		assert.True(t, first.DoctorJoined)
		assert.False(t, first.BothPresent)
		assert.Nil(t, first.MeetingStartTime)

		second, err := console.MarkParticipantJoined(patientCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "patient"})
		require.NoError(t, err)
		assert.True(t, second.PatientJoined)
		assert.True(t, second.BothPresent)
		require.NotNil(t, second.MeetingStartTime)
	})

	t.Run("order does not matter", func(t *testing.T) {
		appointment := newAppointment()
		console, _ := newConsole(t, appointment)

		_, err := console.MarkParticipantJoined(patientCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "patient"})
		require.NoError(t, err)
		resp, err := console.MarkParticipantJoined(doctorCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.NoError(t, err)
		assert.True(t, resp.BothPresent)
	})

	t.Run("repeating a join keeps the first timestamp", func(t *testing.T) {
		appointment := newAppointment()
		console, _ := newConsole(t, appointment)

		first, err := console.MarkParticipantJoined(doctorCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.NoError(t, err)
		joinedAt := *first.DoctorJoinedAt

		again, err := console.MarkParticipantJoined(doctorCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.NoError(t, err)
		assert.True(t, joinedAt.Equal(*again.DoctorJoinedAt))
		assert.False(t, again.BothPresent)
	})

	t.Run("meeting start is stamped once", func(t *testing.T) {
		appointment := newAppointment()
		console, _ := newConsole(t, appointment)

		_, err := console.MarkParticipantJoined(doctorCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.NoError(t, err)
		started, err := console.MarkParticipantJoined(patientCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "patient"})
		require.NoError(t, err)
		startedAt := *started.MeetingStartTime

		again, err := console.MarkParticipantJoined(patientCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "patient"})
		require.NoError(t, err)
		assert.True(t, startedAt.Equal(*again.MeetingStartTime))
	})

	t.Run("patients cannot mark the doctor", func(t *testing.T) {
		appointment := newAppointment()
		console, _ := newConsole(t, appointment)

		_, err := console.MarkParticipantJoined(patientCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.ErrorIs(t, err, usecase.ErrNotParticipant)
		assert.False(t, appointment.DoctorJoined)
	})

	t.Run("admins can mark either side", func(t *testing.T) {
		appointment := newAppointment()
		console, _ := newConsole(t, appointment)
		adminCtx := asUser(uuid.New(), "0x4444444444444444444444444444444444444444", entity.RoleIDAdmin)

		_, err := console.MarkParticipantJoined(adminCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.NoError(t, err)
		resp, err := console.MarkParticipantJoined(adminCtx, appointment.ID, &dto.MarkJoinedRequest{Participant: "patient"})
		require.NoError(t, err)
		assert.True(t, resp.BothPresent)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		db, _ := newMockDB(t)
		appts := new(mocks.MockAppointmentRepository)
		missing := uuid.New()
		appts.On("Mutate", mock.Anything, missing).Return(nil, nil)
		console := usecase.NewConsoleUsecase(db, quietLogger(), appts, new(mocks.MockTaskRepository),
			new(mocks.MockDoctorProfileRepository), new(mocks.MockEscrowGateway), new(mocks.MockAuditService))

		_, err := console.MarkParticipantJoined(doctorCtx, missing, &dto.MarkJoinedRequest{Participant: "doctor"})
		require.ErrorIs(t, err, usecase.ErrAppointmentNotFound)
	})
}

func TestConsole_CompleteMeetingIsIndependentOfPayment(t *testing.T) {
	appointment := newAppointment()
	console, _ := newConsole(t, appointment)
	adminCtx := asUser(uuid.New(), "0x4444444444444444444444444444444444444444", entity.RoleIDAdmin)

	resp, err := console.CompleteMeeting(adminCtx, appointment.ID)
	require.NoError(t, err)
	assert.True(t, resp.MeetingCompleted)
	assert.Equal(t, string(entity.AppointmentScheduled), resp.Status)
}

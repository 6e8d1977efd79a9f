package usecase

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"pulsebridge-consult/internal/converter"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotParticipant      = errors.New("you are not a participant of this appointment")
	ErrDoctorNotOnChain    = errors.New("doctor is not linked to the registry")
	ErrSessionNotFound     = errors.New("session not found")
)

const sessionReadLimit = 8

// ConsoleUsecase covers appointment follow-up after a booking is confirmed:
// meeting links, attendance and on-chain session status.
type ConsoleUsecase interface {
	ListAppointments(ctx context.Context, query *dto.AppointmentQuery) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	SetMeetingLink(ctx context.Context, appointmentID uuid.UUID, req *dto.SetMeetingLinkRequest) (*dto.AppointmentResponse, error)
	MarkParticipantJoined(ctx context.Context, appointmentID uuid.UUID, req *dto.MarkJoinedRequest) (*dto.AppointmentResponse, error)
	CompleteMeeting(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	// ListDoctorSessions reads a doctor's escrow sessions. A nil doctorID
	// means the calling doctor.
	ListDoctorSessions(ctx context.Context, doctorID *uuid.UUID) (*dto.SessionListResponse, error)
	ListOpenTasks(ctx context.Context) (*dto.TaskListResponse, error)
}

type consoleUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	taskRepo          repository.TaskRepository
	doctorProfileRepo repository.DoctorProfileRepository
	escrow            gateway.EscrowGateway
	auditService      service.AuditService
	now               func() time.Time
}

func NewConsoleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	taskRepo repository.TaskRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	escrow gateway.EscrowGateway,
	auditService service.AuditService,
) ConsoleUsecase {
	return &consoleUsecase{
		db:                db,
		log:               log,
		appointmentRepo:   appointmentRepo,
		taskRepo:          taskRepo,
		doctorProfileRepo: doctorProfileRepo,
		escrow:            escrow,
		auditService:      auditService,
		now:               time.Now,
	}
}

// ListAppointments lists confirmed appointments with their on-chain session
// status. Admins see everything, doctors and patients their own.
func (u *consoleUsecase) ListAppointments(ctx context.Context, query *dto.AppointmentQuery) (*dto.AppointmentListResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	filter := &entity.AppointmentFilter{}
	if query != nil {
		filter.DoctorID = query.DoctorID
		filter.Date = query.Date
		filter.Status = entity.AppointmentStatus(query.Status)
	}

	db := u.db.WithContext(ctx)
	switch who.RoleID {
	case entity.RoleIDAdmin:
	case entity.RoleIDDoctor:
		profile, err := u.doctorProfileRepo.FindByWallet(db, who.Wallet.Hex())
		if err != nil {
			u.log.Warnf("Failed to find doctor by wallet: %+v", err)
			return nil, err
		}
		if profile == nil {
			return nil, ErrDoctorNotFound
		}
		filter.DoctorID = &profile.ID
	default:
		filter.PatientID = &who.UserID
	}

	appointments, err := u.appointmentRepo.FindAll(db, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *converter.AppointmentToResponse(&appointments[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sessionReadLimit)
	for i := range appointments {
		i := i
		sessionID, ok := parseSessionID(appointments[i].SessionID)
		if !ok {
			continue
		}
		g.Go(func() error {
			session, err := u.escrow.GetSession(gctx, sessionID)
			if err != nil {
				u.log.Warnf("Failed to read session %s: %+v", sessionID, err)
				return nil
			}
			responses[i].OnChain = converter.SessionToResponse(session)
			return nil
		})
	}
	_ = g.Wait()

	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}, nil
}

func (u *consoleUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if who.RoleID != entity.RoleIDAdmin {
		if _, ok := appointment.ParticipantFor(who.Wallet.Hex()); !ok {
			return nil, ErrNotParticipant
		}
	}

	response := converter.AppointmentToResponse(appointment)
	if sessionID, ok := parseSessionID(appointment.SessionID); ok {
		if session, err := u.escrow.GetSession(ctx, sessionID); err == nil {
			response.OnChain = converter.SessionToResponse(session)
		} else {
			u.log.Warnf("Failed to read session %s: %+v", sessionID, err)
		}
	}
	return response, nil
}

// SetMeetingLink stores the link and closes the appointment's meeting link task.
func (u *consoleUsecase) SetMeetingLink(ctx context.Context, appointmentID uuid.UUID, req *dto.SetMeetingLinkRequest) (*dto.AppointmentResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := u.appointmentRepo.UpdateMeetingLink(tx, appointmentID, strings.TrimSpace(req.MeetingLink))
	if err != nil {
		u.log.Warnf("Failed to set meeting link for appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAppointmentNotFound
	}

	if _, err := u.taskRepo.CompleteForAppointment(tx, appointmentID, entity.TaskMeetingLink, u.now()); err != nil {
		u.log.Warnf("Failed to close meeting link task for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	if err := u.auditService.Record(ctx, tx, &who.UserID, entity.AuditActionMeetingLinkSet, "appointment", appointmentID.String(),
		map[string]interface{}{"meeting_link": req.MeetingLink}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil || appointment == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointmentID, err)
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

// MarkParticipantJoined sets a joined flag under a row lock. Repeating it is
// a no-op. Non-admins may only mark themselves.
func (u *consoleUsecase) MarkParticipantJoined(ctx context.Context, appointmentID uuid.UUID, req *dto.MarkJoinedRequest) (*dto.AppointmentResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	participant := entity.Participant(req.Participant)
	now := u.now()

	appointment, err := u.appointmentRepo.Mutate(u.db.WithContext(ctx), appointmentID, func(a *entity.Appointment) (bool, error) {
		if who.RoleID != entity.RoleIDAdmin {
			self, ok := a.ParticipantFor(who.Wallet.Hex())
			if !ok || self != participant {
				return false, ErrNotParticipant
			}
		}
		return a.MarkJoined(participant, now), nil
	})
	if err != nil {
		if errors.Is(err, ErrNotParticipant) {
			return nil, err
		}
		u.log.Warnf("Failed to mark %s joined for appointment %s: %+v", participant, appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if appointment.BothPresent && appointment.MeetingStartTime != nil && appointment.MeetingStartTime.Equal(now) {
		u.log.Infof("Meeting started: appointment=%s, session=%s", appointment.ID, appointment.SessionID)
	}
	return converter.AppointmentToResponse(appointment), nil
}

// CompleteMeeting marks the meeting finished. Payment release is a separate
// step driven by the doctor's prescription.
func (u *consoleUsecase) CompleteMeeting(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	changed := false
	appointment, err := u.appointmentRepo.Mutate(u.db.WithContext(ctx), appointmentID, func(a *entity.Appointment) (bool, error) {
		changed = a.Complete(u.now())
		return changed, nil
	})
	if err != nil {
		u.log.Warnf("Failed to complete meeting for appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if changed {
		_ = u.auditService.Record(ctx, nil, &who.UserID, entity.AuditActionMeetingComplete, "appointment", appointmentID.String(),
			map[string]interface{}{"session_id": appointment.SessionID})
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *consoleUsecase) ListDoctorSessions(ctx context.Context, doctorID *uuid.UUID) (*dto.SessionListResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	var profile *entity.DoctorProfile
	if doctorID == nil {
		profile, err = u.doctorProfileRepo.FindByWallet(db, who.Wallet.Hex())
	} else {
		profile, err = u.doctorProfileRepo.FindByID(db, *doctorID)
	}
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	if !profile.LinkedOnChain() {
		return nil, ErrDoctorNotOnChain
	}

	ids, err := u.escrow.GetDoctorSessions(ctx, *profile.OnChainID)
	if err != nil {
		u.log.Warnf("Failed to list sessions for doctor %d: %+v", *profile.OnChainID, err)
		return nil, err
	}

	sessions := make([]*dto.SessionResponse, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sessionReadLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			session, err := u.escrow.GetSession(gctx, id)
			if err != nil {
				return err
			}
			sessions[i] = converter.SessionToResponse(session)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to read sessions for doctor %d: %+v", *profile.OnChainID, err)
		return nil, err
	}

	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		if s != nil {
			out = append(out, *s)
		}
	}
	return &dto.SessionListResponse{Sessions: out, Total: len(out)}, nil
}

func (u *consoleUsecase) ListOpenTasks(ctx context.Context) (*dto.TaskListResponse, error) {
	tasks, err := u.taskRepo.FindOpen(u.db.WithContext(ctx), entity.TaskMeetingLink)
	if err != nil {
		u.log.Warnf("Failed to list open tasks: %+v", err)
		return nil, err
	}
	return &dto.TaskListResponse{
		Tasks: converter.TasksToResponses(tasks),
		Total: len(tasks),
	}, nil
}

func parseSessionID(raw string) (*big.Int, bool) {
	if raw == "" {
		return nil, false
	}
	id, ok := new(big.Int).SetString(raw, 10)
	if !ok || id.Sign() <= 0 {
		return nil, false
	}
	return id, true
}

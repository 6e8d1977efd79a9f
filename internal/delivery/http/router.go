package http

import (
	"net/http"

	"pulsebridge-consult/internal/delivery/http/handler"
	"pulsebridge-consult/internal/delivery/http/middleware"
	"pulsebridge-consult/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router              *mux.Router
	log                 *logrus.Logger
	authHandler         *handler.AuthHandler
	doctorHandler       *handler.DoctorHandler
	availabilityHandler *handler.AvailabilityHandler
	bookingHandler      *handler.BookingHandler
	consoleHandler      *handler.ConsoleHandler
	consultationHandler *handler.ConsultationHandler
	patientHandler      *handler.PatientHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	service             ServiceInfo
}

// ServiceInfo identifies the running build in the health check.
type ServiceInfo struct {
	Name    string `json:"service"`
	Version string `json:"version"`
	Network string `json:"network"`
}

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth         *handler.AuthHandler
	Doctor       *handler.DoctorHandler
	Availability *handler.AvailabilityHandler
	Booking      *handler.BookingHandler
	Console      *handler.ConsoleHandler
	Consultation *handler.ConsultationHandler
	Patient      *handler.PatientHandler
	AuditLog     *handler.AuditLogHandler
}

func NewRouter(
	log *logrus.Logger,
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	service ServiceInfo,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		log:                 log,
		authHandler:         handlers.Auth,
		doctorHandler:       handlers.Doctor,
		availabilityHandler: handlers.Availability,
		bookingHandler:      handlers.Booking,
		consoleHandler:      handlers.Console,
		consultationHandler: handlers.Consultation,
		patientHandler:      handlers.Patient,
		auditLogHandler:     handlers.AuditLog,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		service:             service,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/nonce", r.authHandler.RequestNonce).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Doctor directory (public)
	api.HandleFunc("/doctors", r.doctorHandler.ListVerifiedDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/slots", r.availabilityHandler.GetAvailableSlots).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/reviews", r.consultationHandler.ListDoctorReviews).Methods(http.MethodGet)
	api.HandleFunc("/registry/doctors/{onchainId}", r.doctorHandler.GetOnChainDoctor).Methods(http.MethodGet)

	// Any signed-in wallet
	account := api.NewRoute().Subrouter()
	account.Use(r.authMiddleware.Authenticate)
	account.HandleFunc("/doctor-registrations", r.doctorHandler.RegisterDoctor).Methods(http.MethodPost)
	account.HandleFunc("/appointments", r.consoleHandler.ListAppointments).Methods(http.MethodGet)
	account.HandleFunc("/appointments/{id}", r.consoleHandler.GetAppointment).Methods(http.MethodGet)
	account.HandleFunc("/appointments/{id}/join", r.consoleHandler.MarkParticipantJoined).Methods(http.MethodPost)
	account.HandleFunc("/sessions/{sessionId}/prescription", r.consultationHandler.OpenPrescription).Methods(http.MethodGet)

	// Doctor routes
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/profile", r.doctorHandler.GetMyProfile).Methods(http.MethodGet)
	doctor.HandleFunc("/profile", r.doctorHandler.UpdateMyProfile).Methods(http.MethodPut)
	doctor.HandleFunc("/availability", r.availabilityHandler.GetMyAvailability).Methods(http.MethodGet)
	doctor.HandleFunc("/availability", r.availabilityHandler.SaveMyAvailability).Methods(http.MethodPut)
	doctor.HandleFunc("/availability", r.availabilityHandler.ClearMyAvailability).Methods(http.MethodDelete)
	doctor.HandleFunc("/availability/slots", r.availabilityHandler.AddMySlots).Methods(http.MethodPost)
	doctor.HandleFunc("/availability/slots/{slotId}", r.availabilityHandler.RemoveMySlot).Methods(http.MethodDelete)
	doctor.HandleFunc("/sessions", r.consoleHandler.ListMySessions).Methods(http.MethodGet)
	doctor.HandleFunc("/sessions/{sessionId}/prescription", r.consultationHandler.SubmitPrescription).Methods(http.MethodPost)

	// Console routes (doctor or admin)
	console := api.PathPrefix("/console").Subrouter()
	console.Use(r.authMiddleware.Authenticate)
	console.Use(middleware.RequireAdminOrDoctor)
	console.HandleFunc("/tasks", r.consoleHandler.ListOpenTasks).Methods(http.MethodGet)
	console.HandleFunc("/appointments/{id}/meeting-link", r.consoleHandler.SetMeetingLink).Methods(http.MethodPut)
	console.HandleFunc("/appointments/{id}/complete", r.consoleHandler.CompleteMeeting).Methods(http.MethodPost)

	// Patient routes
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/profile", r.patientHandler.GetSelfProfile).Methods(http.MethodGet)
	patient.HandleFunc("/profile", r.patientHandler.UpdateSelfProfile).Methods(http.MethodPut)
	patient.HandleFunc("/prescriptions", r.consultationHandler.ListMyPrescriptions).Methods(http.MethodGet)
	patient.HandleFunc("/sessions/{sessionId}/rating", r.consultationHandler.RateSession).Methods(http.MethodPost)

	// Booking flow (patient)
	bookings := patient.PathPrefix("/bookings").Subrouter()
	bookings.HandleFunc("", r.bookingHandler.SelectSlot).Methods(http.MethodPost)
	bookings.HandleFunc("", r.bookingHandler.ListMyAttempts).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.GetAttempt).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}/details", r.bookingHandler.ConfirmDetails).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/approve", r.bookingHandler.ApproveToken).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/session", r.bookingHandler.CreateSession).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/proceed", r.bookingHandler.Proceed).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Doctor verification (admin)
	admin.HandleFunc("/doctors/pending", r.doctorHandler.ListPendingDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/link", r.doctorHandler.LinkOnChain).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/approve", r.doctorHandler.ApproveDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/deny", r.doctorHandler.DenyDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/reset", r.doctorHandler.ResetDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/sessions", r.consoleHandler.ListDoctorSessions).Methods(http.MethodGet)

	// Audit trail (admin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS and request logging middleware
	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(middleware.RequestLogger(r.log))

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.Success(w, http.StatusOK, r.service.Name+" is up", r.service)
}

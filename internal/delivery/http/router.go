package http

import (
	"net/http"

	"medilink/internal/delivery/http/handler"
	"medilink/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	donorHandler       *handler.DonorHandler
	directoryHandler   *handler.DirectoryHandler
	adminHandler       *handler.AdminHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	rateLimiter        *middleware.RateLimiter
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	donorHandler *handler.DonorHandler,
	directoryHandler *handler.DirectoryHandler,
	adminHandler *handler.AdminHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		appointmentHandler: appointmentHandler,
		donorHandler:       donorHandler,
		directoryHandler:   directoryHandler,
		adminHandler:       adminHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		rateLimiter:        rateLimiter,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public, rate limited where a code or password is checked)
	authLimited := api.PathPrefix("/auth").Subrouter()
	authLimited.Use(r.rateLimiter.Handle)
	authLimited.HandleFunc("/signup", r.authHandler.Signup).Methods(http.MethodPost)
	authLimited.HandleFunc("/verify-otp", r.authHandler.VerifyOTP).Methods(http.MethodPost)
	authLimited.HandleFunc("/otp", r.authHandler.RequestOTP).Methods(http.MethodPost)
	authLimited.HandleFunc("/signin", r.authHandler.Login).Methods(http.MethodPost)

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	authOptional := api.PathPrefix("/auth").Subrouter()
	authOptional.Use(r.authMiddleware.OptionalAuthenticate)
	authOptional.HandleFunc("/session", r.authHandler.GetSession).Methods(http.MethodGet)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/events", r.authHandler.Events).Methods(http.MethodGet)

	me := api.PathPrefix("/me").Subrouter()
	me.Use(r.authMiddleware.Authenticate)
	me.HandleFunc("/device-token", r.authHandler.UpdateDeviceToken).Methods(http.MethodPut)

	// Directory (public)
	api.HandleFunc("/hospitals", r.directoryHandler.GetAllHospitals).Methods(http.MethodGet)
	api.HandleFunc("/hospitals/{id}", r.directoryHandler.GetHospital).Methods(http.MethodGet)
	api.HandleFunc("/doctors", r.directoryHandler.GetAllDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.directoryHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/search", r.directoryHandler.Search).Methods(http.MethodGet)

	// Donor routes (protected - donor only)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Use(middleware.RequireDonor)
	appointments.HandleFunc("", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)

	donor := api.PathPrefix("/donor").Subrouter()
	donor.Use(r.authMiddleware.Authenticate)
	donor.Use(middleware.RequireDonor)
	donor.HandleFunc("/registration", r.donorHandler.Register).Methods(http.MethodPost)
	donor.HandleFunc("/registration", r.donorHandler.GetMyRegistration).Methods(http.MethodGet)
	donor.HandleFunc("/registration", r.donorHandler.UpdateMyRegistration).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/dashboard", r.adminHandler.GetDashboard).Methods(http.MethodGet)

	// Appointment decisions (admin)
	admin.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}/approve", r.appointmentHandler.ApproveAppointment).Methods(http.MethodPost)
	admin.HandleFunc("/appointments/{id}/reject", r.appointmentHandler.RejectAppointment).Methods(http.MethodPost)
	admin.HandleFunc("/appointments/{id}/complete", r.appointmentHandler.CompleteAppointment).Methods(http.MethodPost)

	// Hospital management (admin)
	admin.HandleFunc("/hospitals", r.directoryHandler.CreateHospital).Methods(http.MethodPost)
	admin.HandleFunc("/hospitals/{id}", r.directoryHandler.UpdateHospital).Methods(http.MethodPut)
	admin.HandleFunc("/hospitals/{id}", r.directoryHandler.DeleteHospital).Methods(http.MethodDelete)

	// Doctor management (admin)
	admin.HandleFunc("/doctors", r.directoryHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}", r.directoryHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{id}", r.directoryHandler.DeleteDoctor).Methods(http.MethodDelete)
	admin.HandleFunc("/doctors/{id}/approval", r.directoryHandler.SetDoctorApproval).Methods(http.MethodPatch)

	admin.HandleFunc("/donors", r.donorHandler.GetAllDonors).Methods(http.MethodGet)
	admin.HandleFunc("/blood-requests", r.adminHandler.CreateBloodRequest).Methods(http.MethodPost)
	admin.HandleFunc("/blood-requests", r.adminHandler.GetAllBloodRequests).Methods(http.MethodGet)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

package http

import (
	"net/http"

	"github.com/christinepetrosyan/Timebook/internal/delivery/http/handler"
	"github.com/christinepetrosyan/Timebook/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	healthHandler       *handler.HealthHandler
	scheduleHandler     *handler.ScheduleHandler
	appointmentHandler  *handler.AppointmentHandler
	timeSlotHandler     *handler.TimeSlotHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

func NewRouter(
	healthHandler *handler.HealthHandler,
	scheduleHandler *handler.ScheduleHandler,
	appointmentHandler *handler.AppointmentHandler,
	timeSlotHandler *handler.TimeSlotHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		healthHandler:       healthHandler,
		scheduleHandler:     scheduleHandler,
		appointmentHandler:  appointmentHandler,
		timeSlotHandler:     timeSlotHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Check).Methods(http.MethodGet)

	// Offers (public)
	api.HandleFunc("/services/{serviceId}/offers", r.scheduleHandler.GetOffers).Methods(http.MethodGet)

	// Client routes
	client := api.PathPrefix("/appointments").Subrouter()
	client.Use(r.authMiddleware.Authenticate)
	client.Use(r.rateLimitMiddleware.Handle)
	client.Use(middleware.RequireUser)
	client.HandleFunc("", r.appointmentHandler.Book).Methods(http.MethodPost)
	client.HandleFunc("", r.appointmentHandler.ListMine).Methods(http.MethodGet)
	client.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPut)

	// Master routes
	master := api.PathPrefix("/master").Subrouter()
	master.Use(r.authMiddleware.Authenticate)
	master.Use(r.rateLimitMiddleware.Handle)
	master.Use(middleware.RequireMaster)
	master.HandleFunc("/schedule", r.scheduleHandler.GetMySchedule).Methods(http.MethodGet)
	master.HandleFunc("/appointments", r.appointmentHandler.ListMasterAppointments).Methods(http.MethodGet)
	master.HandleFunc("/appointments", r.appointmentHandler.BookOnBehalf).Methods(http.MethodPost)
	master.HandleFunc("/appointments/{id}/confirm", r.appointmentHandler.Confirm).Methods(http.MethodPut)
	master.HandleFunc("/appointments/{id}/reject", r.appointmentHandler.Reject).Methods(http.MethodPut)
	master.HandleFunc("/blocks", r.timeSlotHandler.ToggleBlock).Methods(http.MethodPut)
	master.HandleFunc("/time-slots", r.timeSlotHandler.CreateSlot).Methods(http.MethodPost)
	master.HandleFunc("/time-slots", r.timeSlotHandler.ListSlots).Methods(http.MethodGet)
	master.HandleFunc("/time-slots/{id}", r.timeSlotHandler.UpdateSlot).Methods(http.MethodPut)
	master.HandleFunc("/time-slots/{id}", r.timeSlotHandler.DeleteSlot).Methods(http.MethodDelete)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/masters/{masterId}/schedule", r.scheduleHandler.GetMasterSchedule).Methods(http.MethodGet)
	admin.HandleFunc("/masters/{masterId}/appointments", r.appointmentHandler.ListAppointmentsByMaster).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}/confirm", r.appointmentHandler.Confirm).Methods(http.MethodPut)
	admin.HandleFunc("/appointments/{id}/reject", r.appointmentHandler.Reject).Methods(http.MethodPut)
	admin.HandleFunc("/blocks", r.timeSlotHandler.ToggleBlock).Methods(http.MethodPut)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

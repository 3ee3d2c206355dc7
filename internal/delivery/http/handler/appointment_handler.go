package handler

import (
	"encoding/json"
	"net/http"

	"github.com/christinepetrosyan/Timebook/internal/delivery/dto"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/internal/usecase"
	"github.com/christinepetrosyan/Timebook/pkg/response"
	"github.com/christinepetrosyan/Timebook/pkg/validator"

	"github.com/google/uuid"
)

type AppointmentHandler struct {
	bookingUsecase     usecase.BookingUsecase
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(
	bookingUsecase usecase.BookingUsecase,
	appointmentUsecase usecase.AppointmentUsecase,
	validator *validator.CustomValidator,
) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase:     bookingUsecase,
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.Book(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment requested successfully", booking)
}

func (h *AppointmentHandler) BookOnBehalf(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.BookOnBehalfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.BookOnBehalf(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", booking)
}

func (h *AppointmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	appointments, err := h.appointmentUsecase.ListForUser(r.Context(), actor)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// ListMasterAppointments lists the calling master's calendar.
func (h *AppointmentHandler) ListMasterAppointments(w http.ResponseWriter, r *http.Request) {
	h.listForMaster(w, r, nil)
}

// ListAppointmentsByMaster lists any master's calendar. Admin only.
func (h *AppointmentHandler) ListAppointmentsByMaster(w http.ResponseWriter, r *http.Request) {
	masterID, ok := pathUUID(w, r, "masterId", "master ID")
	if !ok {
		return
	}
	h.listForMaster(w, r, &masterID)
}

func (h *AppointmentHandler) listForMaster(w http.ResponseWriter, r *http.Request, masterID *uuid.UUID) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	from, err := queryTime(r, "from")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid from, use RFC 3339", nil)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid to, use RFC 3339", nil)
		return
	}
	req := dto.ListAppointmentsRequest{
		From:   from,
		To:     to,
		Status: r.URL.Query().Get("status"),
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointments, err := h.appointmentUsecase.ListForMaster(r.Context(), actor, masterID, &req)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, entity.AppointmentStatusCancelled, "Appointment cancelled successfully")
}

func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, entity.AppointmentStatusConfirmed, "Appointment confirmed successfully")
}

func (h *AppointmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, entity.AppointmentStatusRejected, "Appointment rejected successfully")
}

func (h *AppointmentHandler) transition(w http.ResponseWriter, r *http.Request, target entity.AppointmentStatus, message string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.Transition(r.Context(), actor, appointmentID, target)
	if err != nil {
		writeError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, message, appointment)
}

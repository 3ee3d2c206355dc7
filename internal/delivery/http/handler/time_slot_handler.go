package handler

import (
	"encoding/json"
	"net/http"

	"github.com/christinepetrosyan/Timebook/internal/delivery/dto"
	"github.com/christinepetrosyan/Timebook/internal/usecase"
	"github.com/christinepetrosyan/Timebook/pkg/response"
	"github.com/christinepetrosyan/Timebook/pkg/validator"
)

type TimeSlotHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	bookingUsecase      usecase.BookingUsecase
	validator           *validator.CustomValidator
}

func NewTimeSlotHandler(
	availabilityUsecase usecase.AvailabilityUsecase,
	bookingUsecase usecase.BookingUsecase,
	validator *validator.CustomValidator,
) *TimeSlotHandler {
	return &TimeSlotHandler{
		availabilityUsecase: availabilityUsecase,
		bookingUsecase:      bookingUsecase,
		validator:           validator,
	}
}

func (h *TimeSlotHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateTimeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slot, err := h.availabilityUsecase.CreateSlot(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to create time slot")
		return
	}

	response.Success(w, http.StatusCreated, "Time slot created successfully", slot)
}

func (h *TimeSlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.ListTimeSlotsRequest
	var err error
	if req.ServiceID, err = queryUUID(r, "service_id"); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid service_id", nil)
		return
	}
	if req.From, err = queryTime(r, "from"); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid from, use RFC 3339", nil)
		return
	}
	if req.To, err = queryTime(r, "to"); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid to, use RFC 3339", nil)
		return
	}
	if req.IsBooked, err = queryBool(r, "is_booked"); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid is_booked", nil)
		return
	}

	slots, err := h.availabilityUsecase.ListSlots(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to get time slots")
		return
	}

	response.Success(w, http.StatusOK, "Time slots retrieved successfully", slots)
}

func (h *TimeSlotHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	slotID, ok := pathUUID(w, r, "id", "time slot ID")
	if !ok {
		return
	}

	var req dto.UpdateTimeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	slot, err := h.availabilityUsecase.UpdateSlot(r.Context(), actor, slotID, &req)
	if err != nil {
		writeError(w, err, "Failed to update time slot")
		return
	}

	response.Success(w, http.StatusOK, "Time slot updated successfully", slot)
}

func (h *TimeSlotHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	slotID, ok := pathUUID(w, r, "id", "time slot ID")
	if !ok {
		return
	}

	if err := h.availabilityUsecase.DeleteSlot(r.Context(), actor, slotID); err != nil {
		writeError(w, err, "Failed to delete time slot")
		return
	}

	response.Success(w, http.StatusOK, "Time slot deleted successfully", nil)
}

// ToggleBlock blocks or frees an exact range of a service's calendar.
func (h *TimeSlotHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.ToggleBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slot, err := h.bookingUsecase.ToggleBlock(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to toggle block")
		return
	}

	response.Success(w, http.StatusOK, "Block updated successfully", slot)
}

package handler

import (
	"net/http"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/usecase"
	"github.com/christinepetrosyan/Timebook/pkg/response"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type ScheduleHandler struct {
	scheduleUsecase usecase.ScheduleUsecase
	loc             *time.Location
	now             func() time.Time
}

func NewScheduleHandler(scheduleUsecase usecase.ScheduleUsecase, loc *time.Location) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		loc:             loc,
		now:             time.Now,
	}
}

// GetOffers lists the bookable slots of a service for one day. Public.
func (h *ScheduleHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathUUID(w, r, "serviceId", "service ID")
	if !ok {
		return
	}
	day, ok := h.parseDay(w, r)
	if !ok {
		return
	}

	offers, err := h.scheduleUsecase.GetOffers(r.Context(), serviceID, day)
	if err != nil {
		writeError(w, err, "Failed to get offers")
		return
	}

	response.Success(w, http.StatusOK, "Offers retrieved successfully", offers)
}

// GetMySchedule returns the hour grid of the calling master.
func (h *ScheduleHandler) GetMySchedule(w http.ResponseWriter, r *http.Request) {
	h.getGrid(w, r, nil)
}

// GetMasterSchedule returns the hour grid of any master. Admin only.
func (h *ScheduleHandler) GetMasterSchedule(w http.ResponseWriter, r *http.Request) {
	masterID, ok := pathUUID(w, r, "masterId", "master ID")
	if !ok {
		return
	}
	h.getGrid(w, r, &masterID)
}

func (h *ScheduleHandler) getGrid(w http.ResponseWriter, r *http.Request, masterID *uuid.UUID) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	day, ok := h.parseDay(w, r)
	if !ok {
		return
	}

	grid, err := h.scheduleUsecase.GetDayGrid(r.Context(), actor, masterID, day)
	if err != nil {
		writeError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", grid)
}

// parseDay reads ?date=YYYY-MM-DD in the service timezone, defaulting to today.
func (h *ScheduleHandler) parseDay(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.now().In(h.loc), true
	}
	day, err := time.ParseInLocation(dateLayout, raw, h.loc)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return day, true
}

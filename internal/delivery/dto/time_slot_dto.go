package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateTimeSlotRequest struct {
	ServiceID uuid.UUID `json:"service_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// UpdateTimeSlotRequest moves a slot. Omitted bounds keep their current value.
type UpdateTimeSlotRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type ListTimeSlotsRequest struct {
	ServiceID *uuid.UUID
	From      *time.Time
	To        *time.Time
	IsBooked  *bool
}

type ToggleBlockRequest struct {
	ServiceID uuid.UUID `json:"service_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Booked    *bool     `json:"booked" validate:"required"`
}

// Response DTOs

type TimeSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	MasterID  uuid.UUID `json:"master_id"`
	ServiceID uuid.UUID `json:"service_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsBooked  bool      `json:"is_booked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TimeSlotListResponse struct {
	TimeSlots []TimeSlotResponse `json:"time_slots"`
	Total     int                `json:"total"`
}

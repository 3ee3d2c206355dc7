package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	ServiceID       uuid.UUID  `json:"service_id" validate:"required"`
	ServiceOptionID *uuid.UUID `json:"service_option_id"`
	StartTime       time.Time  `json:"start_time" validate:"required"`
	Notes           string     `json:"notes" validate:"max=1000"`
}

// BookOnBehalfRequest records a walk-in or phone booking for a known client.
type BookOnBehalfRequest struct {
	UserID          uuid.UUID  `json:"user_id" validate:"required"`
	ServiceID       uuid.UUID  `json:"service_id" validate:"required"`
	ServiceOptionID *uuid.UUID `json:"service_option_id"`
	StartTime       time.Time  `json:"start_time" validate:"required"`
	Notes           string     `json:"notes" validate:"max=1000"`
}

type ListAppointmentsRequest struct {
	From   *time.Time
	To     *time.Time
	Status string `validate:"omitempty,oneof=pending confirmed rejected cancelled"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	MasterID        uuid.UUID  `json:"master_id"`
	ServiceID       uuid.UUID  `json:"service_id"`
	ServiceOptionID *uuid.UUID `json:"service_option_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BookingResponse is an accepted booking together with the catalog quote it was made at.
type BookingResponse struct {
	Appointment     AppointmentResponse `json:"appointment"`
	DurationMinutes int                 `json:"duration_minutes"`
	Price           decimal.Decimal     `json:"price"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type OfferResponse struct {
	SlotID    uuid.UUID `json:"slot_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
	Status    string    `json:"status"`
}

type OfferListResponse struct {
	ServiceID uuid.UUID       `json:"service_id"`
	MasterID  uuid.UUID       `json:"master_id"`
	Date      string          `json:"date"`
	Offers    []OfferResponse `json:"offers"`
	Total     int             `json:"total"`
}

type GridCellResponse struct {
	Hour          int        `json:"hour"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Status        string     `json:"status"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	SlotID        *uuid.UUID `json:"slot_id,omitempty"`
}

type DayGridResponse struct {
	MasterID uuid.UUID          `json:"master_id"`
	Date     string             `json:"date"`
	Cells    []GridCellResponse `json:"cells"`
}

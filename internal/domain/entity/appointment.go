package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// LiveAppointmentStatuses block the master's calendar.
var LiveAppointmentStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusRejected, AppointmentStatusCancelled:
		return true
	}
	return false
}

// IsLive reports whether the appointment still occupies master time.
func (s AppointmentStatus) IsLive() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// IsSink reports whether no further transition can leave the status.
func (s AppointmentStatus) IsSink() bool {
	return s == AppointmentStatusRejected || s == AppointmentStatusCancelled
}

// CanTransitionTo lists the only legal edges: pending -> confirmed | rejected | cancelled.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	if s != AppointmentStatusPending {
		return false
	}
	switch target {
	case AppointmentStatusConfirmed, AppointmentStatusRejected, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is a client's request against a master's calendar.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	MasterID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_master_range,priority:1" json:"master_id"`
	ServiceID       uuid.UUID         `gorm:"type:uuid;not null" json:"service_id"`
	ServiceOptionID *uuid.UUID        `gorm:"type:uuid" json:"service_option_id,omitempty"`
	StartTime       time.Time         `gorm:"not null;index:idx_appointments_master_range,priority:2" json:"start_time"`
	EndTime         time.Time         `gorm:"not null;index:idx_appointments_master_range,priority:3" json:"end_time"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) Range() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// AppointmentFilter narrows master appointment listings. Zero values are ignored.
type AppointmentFilter struct {
	MasterID uuid.UUID
	From     *time.Time
	To       *time.Time
	Status   AppointmentStatus
}

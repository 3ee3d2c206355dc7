package repository

import (
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindLiveOverlapping returns pending and confirmed appointments of the master overlapping r.
	FindLiveOverlapping(db *gorm.DB, masterID uuid.UUID, r entity.TimeRange) ([]entity.Appointment, error)
	FindByMaster(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	FindByUser(db *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error)
	// UpdateStatus moves the appointment from one status to another only if it is still in from.
	// Returns affected rows: 1 = moved, 0 = lost the race.
	UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error)
}

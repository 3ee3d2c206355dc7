package repository

import (
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeSlotRepository interface {
	Create(db *gorm.DB, slot *entity.TimeSlot) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.TimeSlot, error)
	// FindExact returns the slot covering exactly r for master and service, or nil.
	FindExact(db *gorm.DB, masterID, serviceID uuid.UUID, r entity.TimeRange) (*entity.TimeSlot, error)
	FindOverlapping(db *gorm.DB, filter entity.SlotFilter) ([]entity.TimeSlot, error)
	Update(db *gorm.DB, slot *entity.TimeSlot) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}

package repository

import (
	"errors"

	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	domainRepo "github.com/christinepetrosyan/Timebook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type timeSlotRepository struct{}

func NewTimeSlotRepository() domainRepo.TimeSlotRepository {
	return &timeSlotRepository{}
}

func (r *timeSlotRepository) Create(db *gorm.DB, slot *entity.TimeSlot) error {
	return db.Create(slot).Error
}

func (r *timeSlotRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.TimeSlot, error) {
	var slot entity.TimeSlot
	err := db.Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepository) FindExact(db *gorm.DB, masterID, serviceID uuid.UUID, tr entity.TimeRange) (*entity.TimeSlot, error) {
	var slot entity.TimeSlot
	err := db.Where("master_id = ? AND service_id = ? AND start_time = ? AND end_time = ?",
		masterID, serviceID, tr.Start, tr.End).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// FindOverlapping returns the master's slots sharing at least one instant with filter.Range.
// A zero bound leaves that side open. Optional filters: service, booked flag, excluded id.
func (r *timeSlotRepository) FindOverlapping(db *gorm.DB, filter entity.SlotFilter) ([]entity.TimeSlot, error) {
	var slots []entity.TimeSlot
	query := db.Where("master_id = ?", filter.MasterID)

	if !filter.Range.End.IsZero() {
		query = query.Where("start_time < ?", filter.Range.End)
	}
	if !filter.Range.Start.IsZero() {
		query = query.Where("end_time > ?", filter.Range.Start)
	}

	if filter.ServiceID != nil {
		query = query.Where("service_id = ?", *filter.ServiceID)
	}
	if filter.IsBooked != nil {
		query = query.Where("is_booked = ?", *filter.IsBooked)
	}
	if filter.ExcludeID != nil {
		query = query.Where("id <> ?", *filter.ExcludeID)
	}

	err := query.Order("start_time ASC, end_time ASC").Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *timeSlotRepository) Update(db *gorm.DB, slot *entity.TimeSlot) error {
	return db.Save(slot).Error
}

func (r *timeSlotRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.TimeSlot{})
	return result.RowsAffected, result.Error
}

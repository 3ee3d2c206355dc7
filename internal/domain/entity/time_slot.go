package entity

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a master-declared window, open for booking or manually blocked.
type TimeSlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MasterID  uuid.UUID `gorm:"type:uuid;not null;index:idx_time_slots_master_range,priority:1" json:"master_id"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`
	StartTime time.Time `gorm:"not null;index:idx_time_slots_master_range,priority:2" json:"start_time"`
	EndTime   time.Time `gorm:"not null;index:idx_time_slots_master_range,priority:3" json:"end_time"`
	IsBooked  bool      `gorm:"not null;default:false" json:"is_booked"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}

func (s *TimeSlot) Range() TimeRange {
	return TimeRange{Start: s.StartTime, End: s.EndTime}
}

// SlotFilter is a domain-level filter for slot overlap queries. A zero Range bound is open.
type SlotFilter struct {
	MasterID  uuid.UUID
	ServiceID *uuid.UUID
	Range     TimeRange
	IsBooked  *bool
	ExcludeID *uuid.UUID
}

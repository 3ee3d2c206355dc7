package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a read-only catalog entry. A simple service carries its own
// duration and price and has no options; an option-based service delegates both
// to its options.
type Service struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MasterID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"master_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	DurationMinutes int             `gorm:"column:duration;not null" json:"duration_minutes"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	Options []ServiceOption `gorm:"foreignKey:ServiceID" json:"options,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

func (s *Service) HasOptions() bool {
	return len(s.Options) > 0
}

// Option returns the option with the given id, or nil.
func (s *Service) Option(id uuid.UUID) *ServiceOption {
	for i := range s.Options {
		if s.Options[i].ID == id {
			return &s.Options[i]
		}
	}
	return nil
}

type ServiceOption struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	DurationMinutes int             `gorm:"column:duration;not null" json:"duration_minutes"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (ServiceOption) TableName() string {
	return "service_options"
}

// MasterProfile links an identity user to the master id used on calendars.
type MasterProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
}

func (MasterProfile) TableName() string {
	return "master_profiles"
}

// Quote is what the catalog says a booking costs and how long it runs.
type Quote struct {
	ServiceID       uuid.UUID
	ServiceOptionID *uuid.UUID
	MasterID        uuid.UUID
	Duration        time.Duration
	Price           decimal.Decimal
}

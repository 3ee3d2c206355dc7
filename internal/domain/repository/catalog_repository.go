package repository

import (
	"context"

	"github.com/christinepetrosyan/Timebook/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository reads the externally owned service catalog.
type CatalogRepository interface {
	FindServiceByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Service, error)
	FindMasterByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.MasterProfile, error)
}

package repository

import (
	"context"
	"errors"

	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	domainRepo "github.com/christinepetrosyan/Timebook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type catalogRepository struct{}

func NewCatalogRepository() domainRepo.CatalogRepository {
	return &catalogRepository{}
}

func (r *catalogRepository) FindServiceByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := db.WithContext(ctx).
		Preload("Options", func(tx *gorm.DB) *gorm.DB { return tx.Order("duration ASC") }).
		Where("id = ?", id).
		First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *catalogRepository) FindMasterByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.MasterProfile, error) {
	var profile entity.MasterProfile
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// CatalogService is the read-only boundary to the service catalog.
type CatalogService interface {
	GetService(ctx context.Context, serviceID uuid.UUID) (*entity.Service, error)
	GetQuote(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (*entity.Quote, error)
	GetDuration(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (time.Duration, error)
	GetPrice(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (decimal.Decimal, error)
	GetMasterID(ctx context.Context, serviceID uuid.UUID) (uuid.UUID, error)
	// ResolveMasterID maps an identity user id to the master id used on calendars.
	ResolveMasterID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type catalogService struct {
	txManager   repository.TxManager
	log         *logrus.Logger
	catalogRepo repository.CatalogRepository
	group       singleflight.Group
}

func NewCatalogService(txManager repository.TxManager, log *logrus.Logger, catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{
		txManager:   txManager,
		log:         log,
		catalogRepo: catalogRepo,
	}
}

// GetService collapses concurrent lookups of the same service into one query.
func (s *catalogService) GetService(ctx context.Context, serviceID uuid.UUID) (*entity.Service, error) {
	v, err := s.shared(ctx, "service:"+serviceID.String(), func(ctx context.Context) (interface{}, error) {
		var service *entity.Service
		err := s.txManager.Read(ctx, func(db *gorm.DB) error {
			var err error
			service, err = s.catalogRepo.FindServiceByID(ctx, db, serviceID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if service == nil {
			return nil, apperror.ErrServiceNotFound
		}
		return service, nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.Warnf("Failed to load service %s: %+v", serviceID, err)
		}
		return nil, err
	}
	return v.(*entity.Service), nil
}

// GetQuote resolves duration and price. Option-based services require an option
// of their own; simple services refuse one.
func (s *catalogService) GetQuote(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (*entity.Quote, error) {
	service, err := s.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return QuoteFor(service, optionID)
}

func (s *catalogService) GetDuration(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (time.Duration, error) {
	quote, err := s.GetQuote(ctx, serviceID, optionID)
	if err != nil {
		return 0, err
	}
	return quote.Duration, nil
}

func (s *catalogService) GetPrice(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (decimal.Decimal, error) {
	quote, err := s.GetQuote(ctx, serviceID, optionID)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.Price, nil
}

func (s *catalogService) GetMasterID(ctx context.Context, serviceID uuid.UUID) (uuid.UUID, error) {
	service, err := s.GetService(ctx, serviceID)
	if err != nil {
		return uuid.Nil, err
	}
	return service.MasterID, nil
}

func (s *catalogService) ResolveMasterID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	v, err := s.shared(ctx, "master:"+userID.String(), func(ctx context.Context) (interface{}, error) {
		var profile *entity.MasterProfile
		err := s.txManager.Read(ctx, func(db *gorm.DB) error {
			var err error
			profile, err = s.catalogRepo.FindMasterByUserID(ctx, db, userID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, apperror.ErrMasterNotFound
		}
		return profile.ID, nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.Warnf("Failed to resolve master for user %s: %+v", userID, err)
		}
		return uuid.Nil, err
	}
	return v.(uuid.UUID), nil
}

// shared runs fn once per key for all concurrent callers. fn gets a context
// detached from the first caller's cancellation and is bounded by the query
// timeout of txManager.Read; each caller still stops waiting when its own ctx ends.
func (s *catalogService) shared(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", apperror.ErrTimeout, ctx.Err())
	}
}

// QuoteFor derives the quote from an already loaded service.
func QuoteFor(service *entity.Service, optionID *uuid.UUID) (*entity.Quote, error) {
	quote := &entity.Quote{
		ServiceID: service.ID,
		MasterID:  service.MasterID,
	}

	if service.HasOptions() {
		if optionID == nil {
			return nil, apperror.ErrServiceOptionRequired
		}
		option := service.Option(*optionID)
		if option == nil {
			return nil, fmt.Errorf("%w: %s", apperror.ErrServiceOptionNotFound, *optionID)
		}
		if option.DurationMinutes <= 0 {
			return nil, apperror.ErrServiceMisconfigured
		}
		id := option.ID
		quote.ServiceOptionID = &id
		quote.Duration = time.Duration(option.DurationMinutes) * time.Minute
		quote.Price = option.Price
		return quote, nil
	}

	if optionID != nil {
		return nil, apperror.ErrServiceOptionNotAllowed
	}
	if service.DurationMinutes <= 0 {
		return nil, apperror.ErrServiceMisconfigured
	}
	quote.Duration = time.Duration(service.DurationMinutes) * time.Minute
	quote.Price = service.Price
	return quote, nil
}

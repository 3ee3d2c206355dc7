package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/converter"
	"github.com/christinepetrosyan/Timebook/internal/delivery/dto"
	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/internal/domain/repository"
	"github.com/christinepetrosyan/Timebook/internal/domain/schedule"
	"github.com/christinepetrosyan/Timebook/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ScheduleUsecase is the read side: it never takes the master lock.
type ScheduleUsecase interface {
	// GetOffers lists the service's slots on day with their availability.
	GetOffers(ctx context.Context, serviceID uuid.UUID, day time.Time) (*dto.OfferListResponse, error)
	// GetDayGrid is the master's hour grid. Admins must name the master.
	GetDayGrid(ctx context.Context, actor entity.Actor, masterID *uuid.UUID, day time.Time) (*dto.DayGridResponse, error)
}

type scheduleUsecase struct {
	txManager repository.TxManager
	log       *logrus.Logger
	catalog   service.CatalogService
	slotRepo  repository.TimeSlotRepository
	apptRepo  repository.AppointmentRepository
	loc       *time.Location
	window    schedule.Window
}

func NewScheduleUsecase(
	txManager repository.TxManager,
	log *logrus.Logger,
	catalog service.CatalogService,
	slotRepo repository.TimeSlotRepository,
	apptRepo repository.AppointmentRepository,
	loc *time.Location,
	window schedule.Window,
) ScheduleUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &scheduleUsecase{
		txManager: txManager,
		log:       log,
		catalog:   catalog,
		slotRepo:  slotRepo,
		apptRepo:  apptRepo,
		loc:       loc,
		window:    window,
	}
}

func (u *scheduleUsecase) GetOffers(ctx context.Context, serviceID uuid.UUID, day time.Time) (*dto.OfferListResponse, error) {
	svc, err := u.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	dayRange := entity.DayRange(day, u.loc)
	slots, appointments, err := u.fetchDay(ctx, svc.MasterID, dayRange)
	if err != nil {
		return nil, err
	}

	var own []entity.TimeSlot
	for _, s := range slots {
		if s.ServiceID == serviceID {
			own = append(own, s)
		}
	}

	offers := schedule.BuildOffers(own, slots, appointments)
	return &dto.OfferListResponse{
		ServiceID: serviceID,
		MasterID:  svc.MasterID,
		Date:      dayRange.Start.Format(dateLayout),
		Offers:    converter.OffersToResponses(offers),
		Total:     len(offers),
	}, nil
}

func (u *scheduleUsecase) GetDayGrid(ctx context.Context, actor entity.Actor, masterID *uuid.UUID, day time.Time) (*dto.DayGridResponse, error) {
	target, err := u.targetMaster(ctx, actor, masterID)
	if err != nil {
		return nil, err
	}

	dayRange := entity.DayRange(day, u.loc)
	slots, appointments, err := u.fetchDay(ctx, target, dayRange)
	if err != nil {
		return nil, err
	}

	cells := schedule.BuildGrid(dayRange.Start, u.loc, u.window, slots, appointments)
	return &dto.DayGridResponse{
		MasterID: target,
		Date:     dayRange.Start.Format(dateLayout),
		Cells:    converter.CellsToResponses(cells),
	}, nil
}

// fetchDay loads the master's slots and live appointments for the window concurrently.
func (u *scheduleUsecase) fetchDay(ctx context.Context, masterID uuid.UUID, r entity.TimeRange) ([]entity.TimeSlot, []entity.Appointment, error) {
	var slots []entity.TimeSlot
	var appointments []entity.Appointment

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		return u.txManager.Read(ctx, func(db *gorm.DB) error {
			var err error
			slots, err = u.slotRepo.FindOverlapping(db, entity.SlotFilter{MasterID: masterID, Range: r})
			return err
		})
	})
	p.Go(func(ctx context.Context) error {
		return u.txManager.Read(ctx, func(db *gorm.DB) error {
			var err error
			appointments, err = u.apptRepo.FindLiveOverlapping(db, masterID, r)
			return err
		})
	})

	if err := p.Wait(); err != nil {
		logFailure(u.log, err, "Failed to load day %s for master %s", r.Start.Format(dateLayout), masterID)
		return nil, nil, err
	}
	return slots, appointments, nil
}

func (u *scheduleUsecase) targetMaster(ctx context.Context, actor entity.Actor, masterID *uuid.UUID) (uuid.UUID, error) {
	switch actor.Role {
	case entity.RoleAdmin:
		if masterID == nil {
			return uuid.Nil, fmt.Errorf("%w: master id is required", apperror.ErrValidation)
		}
		return *masterID, nil
	case entity.RoleMaster:
		own, err := u.catalog.ResolveMasterID(ctx, actor.UserID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return uuid.Nil, fmt.Errorf("%w: no master profile for this account", apperror.ErrForbidden)
			}
			return uuid.Nil, err
		}
		if masterID != nil && *masterID != own {
			return uuid.Nil, fmt.Errorf("%w: calendar belongs to another master", apperror.ErrForbidden)
		}
		return own, nil
	}
	return uuid.Nil, fmt.Errorf("%w: master role required", apperror.ErrForbidden)
}

package usecase

import (
	"context"
	"fmt"

	"github.com/christinepetrosyan/Timebook/internal/converter"
	"github.com/christinepetrosyan/Timebook/internal/delivery/dto"
	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/internal/domain/repository"
	"github.com/christinepetrosyan/Timebook/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BookingUsecase is the only writer that turns an offer into an appointment or
// toggles a manual block. A Conflict is never retried here: the caller re-reads
// the offers and picks again.
type BookingUsecase interface {
	Book(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.BookingResponse, error)
	BookOnBehalf(ctx context.Context, actor entity.Actor, req *dto.BookOnBehalfRequest) (*dto.BookingResponse, error)
	ToggleBlock(ctx context.Context, actor entity.Actor, req *dto.ToggleBlockRequest) (*dto.TimeSlotResponse, error)
}

type bookingUsecase struct {
	*calendar
	log                 *logrus.Logger
	availability        AvailabilityUsecase
	auditService        service.AuditService
	notificationService service.NotificationService
}

func NewBookingUsecase(
	txManager repository.TxManager,
	locker MasterLocker,
	log *logrus.Logger,
	catalog service.CatalogService,
	slotRepo repository.TimeSlotRepository,
	apptRepo repository.AppointmentRepository,
	availability AvailabilityUsecase,
	auditService service.AuditService,
	notificationService service.NotificationService,
) BookingUsecase {
	return &bookingUsecase{
		calendar: &calendar{
			txManager: txManager,
			locker:    locker,
			catalog:   catalog,
			slotRepo:  slotRepo,
			apptRepo:  apptRepo,
		},
		log:                 log,
		availability:        availability,
		auditService:        auditService,
		notificationService: notificationService,
	}
}

// Book reserves the range derived from the catalog duration for a client.
//
// Flow:
// 1. Resolve duration and master from the catalog (validation errors surface here)
// 2. Under the master's atomic section, require an open slot of the service covering the range
// 3. Re-check the range against live appointments and blocks
// 4. Insert the appointment as pending
func (u *bookingUsecase) Book(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.BookingResponse, error) {
	if actor.Role != entity.RoleUser {
		return nil, fmt.Errorf("%w: only clients book for themselves", apperror.ErrForbidden)
	}

	appointment, quote, err := u.reserve(ctx, actor.UserID, req, true, nil)
	if err != nil {
		return nil, err
	}

	u.auditService.LogCreate(ctx, actor, service.AuditActionBook, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment))
	u.notificationService.AppointmentCreated(ctx, appointment)
	u.log.Infof("Appointment booked: id=%s, master=%s, %s - %s", appointment.ID, appointment.MasterID, appointment.StartTime, appointment.EndTime)

	return converter.BookingToResponse(appointment, quote), nil
}

// BookOnBehalf is the same atomic path for the service's own master, without
// requiring an open slot to cover the range.
func (u *bookingUsecase) BookOnBehalf(ctx context.Context, actor entity.Actor, req *dto.BookOnBehalfRequest) (*dto.BookingResponse, error) {
	if actor.Role != entity.RoleMaster {
		return nil, fmt.Errorf("%w: only the service's master books on behalf of a client", apperror.ErrForbidden)
	}

	appointment, quote, err := u.reserve(ctx, req.UserID, &dto.CreateAppointmentRequest{
		ServiceID:       req.ServiceID,
		ServiceOptionID: req.ServiceOptionID,
		StartTime:       req.StartTime,
		Notes:           req.Notes,
	}, false, &actor)
	if err != nil {
		return nil, err
	}

	u.auditService.LogCreate(ctx, actor, service.AuditActionBookOnBehalf, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment))
	u.notificationService.AppointmentCreated(ctx, appointment)
	u.log.Infof("Appointment booked on behalf of %s: id=%s, master=%s", req.UserID, appointment.ID, appointment.MasterID)

	return converter.BookingToResponse(appointment, quote), nil
}

// ToggleBlock blocks or frees exactly [start, end) on the service's calendar.
// Blocking over a live appointment fails Conflict.
func (u *bookingUsecase) ToggleBlock(ctx context.Context, actor entity.Actor, req *dto.ToggleBlockRequest) (*dto.TimeSlotResponse, error) {
	if req.Booked == nil {
		return nil, fmt.Errorf("%w: booked is required", apperror.ErrValidation)
	}
	r, err := newRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	svc, err := u.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := u.authorizeMaster(ctx, actor, svc.MasterID); err != nil {
		return nil, err
	}

	var slot *entity.TimeSlot
	err = u.atomically(ctx, svc.MasterID, func(tx *gorm.DB) error {
		var err error
		slot, err = u.availability.SetBooked(tx, svc.MasterID, svc.ID, r, *req.Booked)
		return err
	})
	if err != nil {
		logFailure(u.log, err, "Failed to toggle block for master %s", svc.MasterID)
		return nil, err
	}

	u.auditService.LogUpdate(ctx, actor, service.AuditActionToggleBlock, "time_slot", slot.ID.String(), nil, converter.TimeSlotToResponse(slot))
	u.log.Infof("Block toggled: slot=%s, booked=%v", slot.ID, slot.IsBooked)
	return converter.TimeSlotToResponse(slot), nil
}

// reserve runs the shared booking path. When requireOffer is set, an open slot of
// the service must contain the range. A non-nil owner must own the service.
func (u *bookingUsecase) reserve(
	ctx context.Context,
	clientID uuid.UUID,
	req *dto.CreateAppointmentRequest,
	requireOffer bool,
	owner *entity.Actor,
) (*entity.Appointment, *entity.Quote, error) {
	if err := requireInstant("start_time", req.StartTime); err != nil {
		return nil, nil, err
	}

	quote, err := u.catalog.GetQuote(ctx, req.ServiceID, req.ServiceOptionID)
	if err != nil {
		return nil, nil, err
	}
	if owner != nil {
		if err := u.authorizeMaster(ctx, *owner, quote.MasterID); err != nil {
			return nil, nil, err
		}
	}

	r, err := entity.RangeFrom(req.StartTime.UTC(), quote.Duration)
	if err != nil {
		return nil, nil, err
	}

	appointment := &entity.Appointment{
		UserID:          clientID,
		MasterID:        quote.MasterID,
		ServiceID:       quote.ServiceID,
		ServiceOptionID: quote.ServiceOptionID,
		StartTime:       r.Start,
		EndTime:         r.End,
		Status:          entity.AppointmentStatusPending,
		Notes:           req.Notes,
	}

	err = u.atomically(ctx, quote.MasterID, func(tx *gorm.DB) error {
		if requireOffer {
			if err := u.ensureOffered(tx, quote, r); err != nil {
				return err
			}
		}
		if err := u.ensureClear(tx, quote.MasterID, r, nil); err != nil {
			return err
		}
		return u.apptRepo.Create(tx, appointment)
	})
	if err != nil {
		logFailure(u.log, err, "Failed to book %s for master %s", r.Start, quote.MasterID)
		return nil, nil, err
	}
	return appointment, quote, nil
}

// ensureOffered requires an open slot of the service that contains r.
func (u *bookingUsecase) ensureOffered(tx *gorm.DB, quote *entity.Quote, r entity.TimeRange) error {
	open := false
	slots, err := u.slotRepo.FindOverlapping(tx, entity.SlotFilter{
		MasterID:  quote.MasterID,
		ServiceID: &quote.ServiceID,
		Range:     r,
		IsBooked:  &open,
	})
	if err != nil {
		return err
	}
	for i := range slots {
		if slots[i].Range().Contains(r) {
			return nil
		}
	}
	return apperror.ErrOfferUnavailable
}

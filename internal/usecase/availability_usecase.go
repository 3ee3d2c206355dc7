package usecase

import (
	"context"

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

type AvailabilityUsecase interface {
	CreateSlot(ctx context.Context, actor entity.Actor, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	UpdateSlot(ctx context.Context, actor entity.Actor, slotID uuid.UUID, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	DeleteSlot(ctx context.Context, actor entity.Actor, slotID uuid.UUID) error
	ListSlots(ctx context.Context, actor entity.Actor, req *dto.ListTimeSlotsRequest) (*dto.TimeSlotListResponse, error)

	// SetBooked upserts the slot covering exactly r. It must run inside the
	// master's atomic section; only the booking coordinator calls it.
	SetBooked(tx *gorm.DB, masterID, serviceID uuid.UUID, r entity.TimeRange, booked bool) (*entity.TimeSlot, error)
}

type availabilityUsecase struct {
	*calendar
	log          *logrus.Logger
	auditService service.AuditService
}

func NewAvailabilityUsecase(
	txManager repository.TxManager,
	locker MasterLocker,
	log *logrus.Logger,
	catalog service.CatalogService,
	slotRepo repository.TimeSlotRepository,
	apptRepo repository.AppointmentRepository,
	auditService service.AuditService,
) AvailabilityUsecase {
	return &availabilityUsecase{
		calendar: &calendar{
			txManager: txManager,
			locker:    locker,
			catalog:   catalog,
			slotRepo:  slotRepo,
			apptRepo:  apptRepo,
		},
		log:          log,
		auditService: auditService,
	}
}

// CreateSlot opens a window for one of the master's services. Open slots may
// overlap each other; a slot over one of the master's blocks is rejected.
func (u *availabilityUsecase) CreateSlot(ctx context.Context, actor entity.Actor, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
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

	slot := &entity.TimeSlot{
		MasterID:  svc.MasterID,
		ServiceID: svc.ID,
		StartTime: r.Start,
		EndTime:   r.End,
	}

	err = u.atomically(ctx, svc.MasterID, func(tx *gorm.DB) error {
		booked := true
		blocks, err := u.slotRepo.FindOverlapping(tx, entity.SlotFilter{MasterID: svc.MasterID, Range: r, IsBooked: &booked})
		if err != nil {
			return err
		}
		if len(blocks) > 0 {
			return apperror.ErrSlotOverlap
		}
		return u.slotRepo.Create(tx, slot)
	})
	if err != nil {
		logFailure(u.log, err, "Failed to create time slot for master %s", svc.MasterID)
		return nil, err
	}

	u.auditService.LogCreate(ctx, actor, service.AuditActionCreateSlot, "time_slot", slot.ID.String(), converter.TimeSlotToResponse(slot))
	u.log.Infof("Time slot created: id=%s, master=%s, %s - %s", slot.ID, slot.MasterID, slot.StartTime, slot.EndTime)
	return converter.TimeSlotToResponse(slot), nil
}

// UpdateSlot moves a slot. A slot consumed by a live appointment is locked.
func (u *availabilityUsecase) UpdateSlot(ctx context.Context, actor entity.Actor, slotID uuid.UUID, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	existing, err := u.findSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if err := u.authorizeMaster(ctx, actor, existing.MasterID); err != nil {
		return nil, err
	}

	var old, updated entity.TimeSlot
	err = u.atomically(ctx, existing.MasterID, func(tx *gorm.DB) error {
		slot, err := u.slotRepo.FindByID(tx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return apperror.ErrSlotNotFound
		}
		old = *slot

		consumers, err := u.apptRepo.FindLiveOverlapping(tx, slot.MasterID, slot.Range())
		if err != nil {
			return err
		}
		if len(consumers) > 0 {
			return apperror.ErrSlotLocked
		}

		start, end := slot.StartTime, slot.EndTime
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		r, err := newRange(start, end)
		if err != nil {
			return err
		}

		if slot.IsBooked {
			if err := u.ensureClear(tx, slot.MasterID, r, &slot.ID); err != nil {
				return err
			}
		} else {
			booked := true
			blocks, err := u.slotRepo.FindOverlapping(tx, entity.SlotFilter{MasterID: slot.MasterID, Range: r, IsBooked: &booked})
			if err != nil {
				return err
			}
			if len(blocks) > 0 {
				return apperror.ErrSlotOverlap
			}
		}

		slot.StartTime, slot.EndTime = r.Start, r.End
		if err := u.slotRepo.Update(tx, slot); err != nil {
			return err
		}
		updated = *slot
		return nil
	})
	if err != nil {
		logFailure(u.log, err, "Failed to update time slot %s", slotID)
		return nil, err
	}

	u.auditService.LogUpdate(ctx, actor, service.AuditActionUpdateSlot, "time_slot", slotID.String(),
		converter.TimeSlotToResponse(&old), converter.TimeSlotToResponse(&updated))
	return converter.TimeSlotToResponse(&updated), nil
}

// DeleteSlot removes an open slot no live appointment overlaps. Blocks must be
// released through the toggle first.
func (u *availabilityUsecase) DeleteSlot(ctx context.Context, actor entity.Actor, slotID uuid.UUID) error {
	existing, err := u.findSlot(ctx, slotID)
	if err != nil {
		return err
	}
	if err := u.authorizeMaster(ctx, actor, existing.MasterID); err != nil {
		return err
	}

	var deleted entity.TimeSlot
	err = u.atomically(ctx, existing.MasterID, func(tx *gorm.DB) error {
		slot, err := u.slotRepo.FindByID(tx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return apperror.ErrSlotNotFound
		}
		if slot.IsBooked {
			return apperror.ErrBlockedSlotLocked
		}

		consumers, err := u.apptRepo.FindLiveOverlapping(tx, slot.MasterID, slot.Range())
		if err != nil {
			return err
		}
		if len(consumers) > 0 {
			return apperror.ErrSlotLocked
		}

		affected, err := u.slotRepo.Delete(tx, slotID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperror.ErrSlotNotFound
		}
		deleted = *slot
		return nil
	})
	if err != nil {
		logFailure(u.log, err, "Failed to delete time slot %s", slotID)
		return err
	}

	u.auditService.LogDelete(ctx, actor, service.AuditActionDeleteSlot, "time_slot", slotID.String(), converter.TimeSlotToResponse(&deleted))
	u.log.Infof("Time slot deleted: id=%s", slotID)
	return nil
}

func (u *availabilityUsecase) ListSlots(ctx context.Context, actor entity.Actor, req *dto.ListTimeSlotsRequest) (*dto.TimeSlotListResponse, error) {
	masterID, err := u.ownMasterID(ctx, actor)
	if err != nil {
		return nil, err
	}

	filter := entity.SlotFilter{
		MasterID:  masterID,
		ServiceID: req.ServiceID,
		IsBooked:  req.IsBooked,
	}
	if req.From != nil {
		filter.Range.Start = *req.From
	}
	if req.To != nil {
		filter.Range.End = *req.To
	}
	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		return nil, apperror.ErrInvalidRange
	}

	var slots []entity.TimeSlot
	err = u.txManager.Read(ctx, func(db *gorm.DB) error {
		var err error
		slots, err = u.slotRepo.FindOverlapping(db, filter)
		return err
	})
	if err != nil {
		logFailure(u.log, err, "Failed to list time slots for master %s", masterID)
		return nil, err
	}

	return &dto.TimeSlotListResponse{
		TimeSlots: converter.TimeSlotsToResponses(slots),
		Total:     len(slots),
	}, nil
}

// SetBooked creates the exact-range slot with the flag, or flips the existing one.
// Blocking fails while a live appointment or another block overlaps r.
func (u *availabilityUsecase) SetBooked(tx *gorm.DB, masterID, serviceID uuid.UUID, r entity.TimeRange, booked bool) (*entity.TimeSlot, error) {
	slot, err := u.slotRepo.FindExact(tx, masterID, serviceID, r)
	if err != nil {
		return nil, err
	}

	if booked {
		var exclude *uuid.UUID
		if slot != nil {
			exclude = &slot.ID
		}
		if err := u.ensureClear(tx, masterID, r, exclude); err != nil {
			return nil, err
		}
	}

	if slot == nil {
		slot = &entity.TimeSlot{
			MasterID:  masterID,
			ServiceID: serviceID,
			StartTime: r.Start,
			EndTime:   r.End,
			IsBooked:  booked,
		}
		if err := u.slotRepo.Create(tx, slot); err != nil {
			return nil, err
		}
		return slot, nil
	}

	if slot.IsBooked != booked {
		slot.IsBooked = booked
		if err := u.slotRepo.Update(tx, slot); err != nil {
			return nil, err
		}
	}
	return slot, nil
}

func (u *availabilityUsecase) findSlot(ctx context.Context, slotID uuid.UUID) (*entity.TimeSlot, error) {
	var slot *entity.TimeSlot
	err := u.txManager.Read(ctx, func(db *gorm.DB) error {
		var err error
		slot, err = u.slotRepo.FindByID(db, slotID)
		return err
	})
	if err != nil {
		logFailure(u.log, err, "Failed to find time slot %s", slotID)
		return nil, err
	}
	if slot == nil {
		return nil, apperror.ErrSlotNotFound
	}
	return slot, nil
}

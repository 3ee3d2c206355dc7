package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/internal/domain/repository"
	"github.com/christinepetrosyan/Timebook/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MasterLocker is satisfied by *service.MasterLockService.
type MasterLocker interface {
	WithLock(ctx context.Context, masterID uuid.UUID, fn func() error) error
}

// calendar bundles what every writer of a master's calendar needs: the atomic
// section and the ownership checks.
type calendar struct {
	txManager repository.TxManager
	locker    MasterLocker
	catalog   service.CatalogService
	slotRepo  repository.TimeSlotRepository
	apptRepo  repository.AppointmentRepository
}

// atomically runs fn with the master's calendar held: in-process lock first,
// then the advisory-locked transaction.
func (c *calendar) atomically(ctx context.Context, masterID uuid.UUID, fn func(tx *gorm.DB) error) error {
	return c.locker.WithLock(ctx, masterID, func() error {
		return c.txManager.WithinMasterTx(ctx, masterID, fn)
	})
}

// ownMasterID resolves the calendar a master-role actor works on.
func (c *calendar) ownMasterID(ctx context.Context, actor entity.Actor) (uuid.UUID, error) {
	if actor.Role != entity.RoleMaster {
		return uuid.Nil, fmt.Errorf("%w: master role required", apperror.ErrForbidden)
	}
	masterID, err := c.catalog.ResolveMasterID(ctx, actor.UserID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return uuid.Nil, fmt.Errorf("%w: no master profile for this account", apperror.ErrForbidden)
		}
		return uuid.Nil, err
	}
	return masterID, nil
}

// authorizeMaster lets admins act on any calendar and masters only on their own.
func (c *calendar) authorizeMaster(ctx context.Context, actor entity.Actor, masterID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	own, err := c.ownMasterID(ctx, actor)
	if err != nil {
		return err
	}
	if own != masterID {
		return fmt.Errorf("%w: calendar belongs to another master", apperror.ErrForbidden)
	}
	return nil
}

// ensureClear fails when r overlaps a live appointment or a block of the master.
func (c *calendar) ensureClear(tx *gorm.DB, masterID uuid.UUID, r entity.TimeRange, excludeSlot *uuid.UUID) error {
	appointments, err := c.apptRepo.FindLiveOverlapping(tx, masterID, r)
	if err != nil {
		return err
	}
	if len(appointments) > 0 {
		return apperror.ErrRangeTaken
	}

	booked := true
	blocks, err := c.slotRepo.FindOverlapping(tx, entity.SlotFilter{
		MasterID:  masterID,
		Range:     r,
		IsBooked:  &booked,
		ExcludeID: excludeSlot,
	})
	if err != nil {
		return err
	}
	if len(blocks) > 0 {
		return apperror.ErrRangeTaken
	}
	return nil
}

func requireInstant(name string, t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: %s is required", apperror.ErrValidation, name)
	}
	return nil
}

func newRange(start, end time.Time) (entity.TimeRange, error) {
	if err := requireInstant("start_time", start); err != nil {
		return entity.TimeRange{}, err
	}
	if err := requireInstant("end_time", end); err != nil {
		return entity.TimeRange{}, err
	}
	return entity.NewTimeRange(start.UTC(), end.UTC())
}

// logFailure logs only errors outside the domain taxonomy; domain errors are caller mistakes.
func logFailure(log interface{ Warnf(string, ...interface{}) }, err error, format string, args ...interface{}) {
	if apperror.KindOf(err) == apperror.KindInternal {
		log.Warnf(format+": %+v", append(args, err)...)
	}
}

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

type AppointmentUsecase interface {
	// Transition moves a pending appointment to confirmed, rejected or cancelled.
	Transition(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, target entity.AppointmentStatus) (*dto.AppointmentResponse, error)
	// ListForMaster lists the actor's own calendar, or masterID's when the actor is an admin.
	ListForMaster(ctx context.Context, actor entity.Actor, masterID *uuid.UUID, req *dto.ListAppointmentsRequest) (*dto.AppointmentListResponse, error)
	ListForUser(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	*calendar
	log                 *logrus.Logger
	auditService        service.AuditService
	notificationService service.NotificationService
}

func NewAppointmentUsecase(
	txManager repository.TxManager,
	locker MasterLocker,
	log *logrus.Logger,
	catalog service.CatalogService,
	slotRepo repository.TimeSlotRepository,
	apptRepo repository.AppointmentRepository,
	auditService service.AuditService,
	notificationService service.NotificationService,
) AppointmentUsecase {
	return &appointmentUsecase{
		calendar: &calendar{
			txManager: txManager,
			locker:    locker,
			catalog:   catalog,
			slotRepo:  slotRepo,
			apptRepo:  apptRepo,
		},
		log:                 log,
		auditService:        auditService,
		notificationService: notificationService,
	}
}

// Transition checks role rights first, then ownership, then the edge itself.
// The status update is a compare-and-set inside the master's atomic section.
func (u *appointmentUsecase) Transition(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, target entity.AppointmentStatus) (*dto.AppointmentResponse, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperror.ErrValidation, target)
	}
	if !actor.Role.MayReach(target) {
		return nil, fmt.Errorf("%w: %s may not set %s", apperror.ErrForbidden, actor.Role, target)
	}

	existing, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := u.authorizeAppointment(ctx, actor, existing); err != nil {
		return nil, err
	}

	var from entity.AppointmentStatus
	var updated entity.Appointment
	err = u.atomically(ctx, existing.MasterID, func(tx *gorm.DB) error {
		appointment, err := u.apptRepo.FindByID(tx, appointmentID)
		if err != nil {
			return err
		}
		if appointment == nil {
			return apperror.ErrAppointmentNotFound
		}

		from = appointment.Status
		if !from.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", apperror.ErrInvalidTransition, from, target)
		}

		affected, err := u.apptRepo.UpdateStatus(tx, appointmentID, from, target)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: status changed concurrently", apperror.ErrInvalidTransition)
		}

		appointment.Status = target
		updated = *appointment
		return nil
	})
	if err != nil {
		logFailure(u.log, err, "Failed to transition appointment %s to %s", appointmentID, target)
		return nil, err
	}

	u.auditService.LogUpdate(ctx, actor, service.AuditActionTransition, "appointment", appointmentID.String(),
		map[string]string{"status": string(from)}, map[string]string{"status": string(target)})
	u.notificationService.StatusChanged(ctx, &updated, from)
	u.log.Infof("Appointment %s: %s -> %s by %s", appointmentID, from, target, actor.Role)

	return converter.AppointmentToResponse(&updated), nil
}

func (u *appointmentUsecase) ListForMaster(ctx context.Context, actor entity.Actor, masterID *uuid.UUID, req *dto.ListAppointmentsRequest) (*dto.AppointmentListResponse, error) {
	target, err := u.targetMaster(ctx, actor, masterID)
	if err != nil {
		return nil, err
	}
	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		return nil, apperror.ErrInvalidRange
	}

	filter := entity.AppointmentFilter{
		MasterID: target,
		From:     req.From,
		To:       req.To,
		Status:   entity.AppointmentStatus(req.Status),
	}

	var appointments []entity.Appointment
	err = u.txManager.Read(ctx, func(db *gorm.DB) error {
		var err error
		appointments, err = u.apptRepo.FindByMaster(db, filter)
		return err
	})
	if err != nil {
		logFailure(u.log, err, "Failed to list appointments for master %s", target)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) ListForUser(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	var appointments []entity.Appointment
	err := u.txManager.Read(ctx, func(db *gorm.DB) error {
		var err error
		appointments, err = u.apptRepo.FindByUser(db, actor.UserID)
		return err
	})
	if err != nil {
		logFailure(u.log, err, "Failed to list appointments for user %s", actor.UserID)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// targetMaster picks the calendar to read: masters read their own, admins must name one.
func (u *appointmentUsecase) targetMaster(ctx context.Context, actor entity.Actor, masterID *uuid.UUID) (uuid.UUID, error) {
	if actor.IsAdmin() {
		if masterID == nil {
			return uuid.Nil, fmt.Errorf("%w: master id is required", apperror.ErrValidation)
		}
		return *masterID, nil
	}
	own, err := u.ownMasterID(ctx, actor)
	if err != nil {
		return uuid.Nil, err
	}
	if masterID != nil && *masterID != own {
		return uuid.Nil, fmt.Errorf("%w: calendar belongs to another master", apperror.ErrForbidden)
	}
	return own, nil
}

func (u *appointmentUsecase) authorizeAppointment(ctx context.Context, actor entity.Actor, appointment *entity.Appointment) error {
	if actor.Role == entity.RoleUser {
		if appointment.UserID != actor.UserID {
			return fmt.Errorf("%w: appointment belongs to another client", apperror.ErrForbidden)
		}
		return nil
	}
	return u.authorizeMaster(ctx, actor, appointment.MasterID)
}

func (u *appointmentUsecase) findAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error) {
	var appointment *entity.Appointment
	err := u.txManager.Read(ctx, func(db *gorm.DB) error {
		var err error
		appointment, err = u.apptRepo.FindByID(db, appointmentID)
		return err
	})
	if err != nil {
		logFailure(u.log, err, "Failed to find appointment %s", appointmentID)
		return nil, err
	}
	if appointment == nil {
		return nil, apperror.ErrAppointmentNotFound
	}
	return appointment, nil
}

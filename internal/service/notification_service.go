package service

import (
	"context"
	"errors"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/internal/infrastructure/queue"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NotificationService hands appointment events to the external delivery worker.
// Failures are logged and never fail the calendar write that triggered them.
type NotificationService interface {
	AppointmentCreated(ctx context.Context, appointment *entity.Appointment)
	StatusChanged(ctx context.Context, appointment *entity.Appointment, from entity.AppointmentStatus)
}

type notificationService struct {
	enqueuer     TaskEnqueuer
	log          *logrus.Logger
	queue        string
	reminderLead time.Duration
	now          func() time.Time
}

func NewNotificationService(enqueuer TaskEnqueuer, log *logrus.Logger, queueName string, reminderLead time.Duration) NotificationService {
	return &notificationService{
		enqueuer:     enqueuer,
		log:          log,
		queue:        queueName,
		reminderLead: reminderLead,
		now:          time.Now,
	}
}

func (s *notificationService) AppointmentCreated(ctx context.Context, appointment *entity.Appointment) {
	task, opts, err := queue.NewAppointmentCreatedTask(payloadFor(appointment, ""), s.queue)
	s.enqueue(ctx, task, opts, err)
}

// StatusChanged also schedules a reminder ahead of the start once an appointment is confirmed.
func (s *notificationService) StatusChanged(ctx context.Context, appointment *entity.Appointment, from entity.AppointmentStatus) {
	payload := payloadFor(appointment, from)
	task, opts, err := queue.NewStatusChangedTask(payload, s.queue)
	s.enqueue(ctx, task, opts, err)

	if !appointment.IsConfirmed() {
		return
	}
	fireAt := appointment.StartTime.Add(-s.reminderLead)
	if !fireAt.After(s.now()) {
		return
	}
	task, opts, err = queue.NewReminderTask(payload, s.queue, fireAt)
	s.enqueue(ctx, task, opts, err)
}

func (s *notificationService) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option, err error) {
	if err != nil {
		s.log.Warnf("Failed to build notification task: %+v", err)
		return
	}
	if s.enqueuer == nil {
		return
	}
	if _, err := s.enqueuer.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return
		}
		s.log.Warnf("Failed to enqueue %s: %+v", task.Type(), err)
		return
	}
	s.log.Debugf("Enqueued %s", task.Type())
}

func payloadFor(a *entity.Appointment, from entity.AppointmentStatus) queue.AppointmentPayload {
	return queue.AppointmentPayload{
		AppointmentID: a.ID,
		UserID:        a.UserID,
		MasterID:      a.MasterID,
		ServiceID:     a.ServiceID,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        string(a.Status),
		PreviousState: string(from),
	}
}

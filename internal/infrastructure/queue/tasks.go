package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types consumed by the external notification worker.
const (
	TypeAppointmentCreated       = "appointment:created"
	TypeAppointmentStatusChanged = "appointment:status_changed"
	TypeAppointmentReminder      = "appointment:reminder"
)

type AppointmentPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	UserID        uuid.UUID `json:"user_id"`
	MasterID      uuid.UUID `json:"master_id"`
	ServiceID     uuid.UUID `json:"service_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	PreviousState string    `json:"previous_status,omitempty"`
}

func NewAppointmentCreatedTask(payload AppointmentPayload, queue string) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeAppointmentCreated, payload, asynq.Queue(queue))
}

func NewStatusChangedTask(payload AppointmentPayload, queue string) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeAppointmentStatusChanged, payload, asynq.Queue(queue))
}

// NewReminderTask fires at fireAt. The task id is derived from the appointment so
// a repeated confirm cannot schedule a second reminder.
func NewReminderTask(payload AppointmentPayload, queue string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeAppointmentReminder, payload,
		asynq.Queue(queue),
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:"+payload.AppointmentID.String()),
	)
}

func newTask(typename string, payload AppointmentPayload, opts ...asynq.Option) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(typename, b), opts, nil
}

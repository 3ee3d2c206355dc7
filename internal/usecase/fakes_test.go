package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/internal/domain/schedule"
	"github.com/christinepetrosyan/Timebook/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memStore backs both repositories with maps guarded by one mutex.
type memStore struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]entity.TimeSlot
	appointments map[uuid.UUID]entity.Appointment
}

func newMemStore() *memStore {
	return &memStore{
		slots:        make(map[uuid.UUID]entity.TimeSlot),
		appointments: make(map[uuid.UUID]entity.Appointment),
	}
}

type memSlotRepo struct{ s *memStore }

func (r memSlotRepo) Create(db *gorm.DB, slot *entity.TimeSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	for _, existing := range r.s.slots {
		if existing.MasterID == slot.MasterID && existing.ServiceID == slot.ServiceID &&
			existing.Range().Equal(slot.Range()) {
			return apperror.ErrConflict
		}
	}
	r.s.slots[slot.ID] = *slot
	return nil
}

func (r memSlotRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot, ok := r.s.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (r memSlotRepo) FindExact(db *gorm.DB, masterID, serviceID uuid.UUID, tr entity.TimeRange) (*entity.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, slot := range r.s.slots {
		if slot.MasterID == masterID && slot.ServiceID == serviceID && slot.Range().Equal(tr) {
			s := slot
			return &s, nil
		}
	}
	return nil, nil
}

func (r memSlotRepo) FindOverlapping(db *gorm.DB, filter entity.SlotFilter) ([]entity.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.TimeSlot
	for _, slot := range r.s.slots {
		if slot.MasterID != filter.MasterID {
			continue
		}
		if !filter.Range.End.IsZero() && !slot.StartTime.Before(filter.Range.End) {
			continue
		}
		if !filter.Range.Start.IsZero() && !slot.EndTime.After(filter.Range.Start) {
			continue
		}
		if filter.ServiceID != nil && slot.ServiceID != *filter.ServiceID {
			continue
		}
		if filter.IsBooked != nil && slot.IsBooked != *filter.IsBooked {
			continue
		}
		if filter.ExcludeID != nil && slot.ID == *filter.ExcludeID {
			continue
		}
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r memSlotRepo) Update(db *gorm.DB, slot *entity.TimeSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.slots[slot.ID] = *slot
	return nil
}

func (r memSlotRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.slots[id]; !ok {
		return 0, nil
	}
	delete(r.s.slots, id)
	return 1, nil
}

type memApptRepo struct{ s *memStore }

func (r memApptRepo) Create(db *gorm.DB, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.s.appointments[a.ID] = *a
	return nil
}

func (r memApptRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r memApptRepo) FindLiveOverlapping(db *gorm.DB, masterID uuid.UUID, tr entity.TimeRange) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.MasterID == masterID && a.Status.IsLive() && a.Range().Overlaps(tr) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memApptRepo) FindByMaster(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.MasterID != filter.MasterID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.From != nil && !a.EndTime.After(*filter.From) {
			continue
		}
		if filter.To != nil && !a.StartTime.Before(*filter.To) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r memApptRepo) FindByUser(db *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memApptRepo) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || a.Status != from {
		return 0, nil
	}
	a.Status = to
	r.s.appointments[id] = a
	return 1, nil
}

// passTxManager runs fn directly; serialization comes from the real lock service.
type passTxManager struct{}

func (passTxManager) WithinMasterTx(ctx context.Context, masterID uuid.UUID, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (passTxManager) Read(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(nil)
}

type fakeCatalog struct {
	services map[uuid.UUID]*entity.Service
	masters  map[uuid.UUID]uuid.UUID // user id -> master id
}

func (c *fakeCatalog) GetService(ctx context.Context, serviceID uuid.UUID) (*entity.Service, error) {
	svc, ok := c.services[serviceID]
	if !ok {
		return nil, apperror.ErrServiceNotFound
	}
	return svc, nil
}

func (c *fakeCatalog) GetQuote(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (*entity.Quote, error) {
	svc, err := c.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return service.QuoteFor(svc, optionID)
}

func (c *fakeCatalog) GetDuration(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (time.Duration, error) {
	q, err := c.GetQuote(ctx, serviceID, optionID)
	if err != nil {
		return 0, err
	}
	return q.Duration, nil
}

func (c *fakeCatalog) GetPrice(ctx context.Context, serviceID uuid.UUID, optionID *uuid.UUID) (decimal.Decimal, error) {
	q, err := c.GetQuote(ctx, serviceID, optionID)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Price, nil
}

func (c *fakeCatalog) GetMasterID(ctx context.Context, serviceID uuid.UUID) (uuid.UUID, error) {
	svc, err := c.GetService(ctx, serviceID)
	if err != nil {
		return uuid.Nil, err
	}
	return svc.MasterID, nil
}

func (c *fakeCatalog) ResolveMasterID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := c.masters[userID]
	if !ok {
		return uuid.Nil, apperror.ErrMasterNotFound
	}
	return id, nil
}

type nopAudit struct{}

func (nopAudit) LogCreate(ctx context.Context, actor entity.Actor, action, entityName, entityID string, newValue interface{}) {
}
func (nopAudit) LogUpdate(ctx context.Context, actor entity.Actor, action, entityName, entityID string, oldValue, newValue interface{}) {
}
func (nopAudit) LogDelete(ctx context.Context, actor entity.Actor, action, entityName, entityID string, oldValue interface{}) {
}

type recordingNotifier struct {
	mu      sync.Mutex
	created int
	changes []entity.AppointmentStatus
}

func (n *recordingNotifier) AppointmentCreated(ctx context.Context, a *entity.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created++
}

func (n *recordingNotifier) StatusChanged(ctx context.Context, a *entity.Appointment, from entity.AppointmentStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, a.Status)
}

// fixture wires every use case over one in-memory store.
type fixture struct {
	store    *memStore
	catalog  *fakeCatalog
	notifier *recordingNotifier
	locks    *service.MasterLockService

	availability AvailabilityUsecase
	appointments AppointmentUsecase
	schedule     ScheduleUsecase
	booking      BookingUsecase

	masterID     uuid.UUID
	masterActor  entity.Actor
	otherMaster  entity.Actor
	admin        entity.Actor
	client       entity.Actor
	simple       *entity.Service // 60 minutes
	optionBased  *entity.Service // 30 or 60 minutes
	otherService *entity.Service // owned by another master
}

func newFixture(t interface{ Cleanup(func()) }) *fixture {
	f := &fixture{
		store:    newMemStore(),
		notifier: &recordingNotifier{},
		masterID: uuid.New(),
	}
	f.masterActor = entity.Actor{UserID: uuid.New(), Role: entity.RoleMaster}
	f.otherMaster = entity.Actor{UserID: uuid.New(), Role: entity.RoleMaster}
	f.admin = entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	f.client = entity.Actor{UserID: uuid.New(), Role: entity.RoleUser}
	otherMasterID := uuid.New()

	f.simple = &entity.Service{ID: uuid.New(), MasterID: f.masterID, Name: "Consultation", DurationMinutes: 60, Price: decimal.NewFromInt(50)}
	optionServiceID := uuid.New()
	f.optionBased = &entity.Service{
		ID:       optionServiceID,
		MasterID: f.masterID,
		Name:     "Massage",
		Options: []entity.ServiceOption{
			{ID: uuid.New(), ServiceID: optionServiceID, Name: "Short", DurationMinutes: 30, Price: decimal.NewFromInt(30)},
			{ID: uuid.New(), ServiceID: optionServiceID, Name: "Long", DurationMinutes: 60, Price: decimal.NewFromInt(55)},
		},
	}
	f.otherService = &entity.Service{ID: uuid.New(), MasterID: otherMasterID, Name: "Other", DurationMinutes: 30, Price: decimal.NewFromInt(10)}

	f.catalog = &fakeCatalog{
		services: map[uuid.UUID]*entity.Service{
			f.simple.ID:       f.simple,
			f.optionBased.ID:  f.optionBased,
			f.otherService.ID: f.otherService,
		},
		masters: map[uuid.UUID]uuid.UUID{
			f.masterActor.UserID: f.masterID,
			f.otherMaster.UserID: otherMasterID,
		},
	}

	f.locks = service.NewMasterLockService(quietLogger(), time.Second)
	t.Cleanup(f.locks.Stop)

	log := quietLogger()
	slotRepo := memSlotRepo{s: f.store}
	apptRepo := memApptRepo{s: f.store}

	f.availability = NewAvailabilityUsecase(passTxManager{}, f.locks, log, f.catalog, slotRepo, apptRepo, nopAudit{})
	f.appointments = NewAppointmentUsecase(passTxManager{}, f.locks, log, f.catalog, slotRepo, apptRepo, nopAudit{}, f.notifier)
	f.schedule = NewScheduleUsecase(passTxManager{}, log, f.catalog, slotRepo, apptRepo, time.UTC, schedule.DefaultWindow)
	f.booking = NewBookingUsecase(passTxManager{}, f.locks, log, f.catalog, slotRepo, apptRepo, f.availability, nopAudit{}, f.notifier)
	return f
}

func (f *fixture) seedSlot(serviceID uuid.UUID, start, end time.Time, booked bool) entity.TimeSlot {
	svc := f.catalog.services[serviceID]
	slot := entity.TimeSlot{ID: uuid.New(), MasterID: svc.MasterID, ServiceID: serviceID, StartTime: start, EndTime: end, IsBooked: booked}
	f.store.slots[slot.ID] = slot
	return slot
}

func (f *fixture) seedAppointment(serviceID uuid.UUID, userID uuid.UUID, start, end time.Time, status entity.AppointmentStatus) entity.Appointment {
	svc := f.catalog.services[serviceID]
	a := entity.Appointment{ID: uuid.New(), UserID: userID, MasterID: svc.MasterID, ServiceID: serviceID, StartTime: start, EndTime: end, Status: status}
	f.store.appointments[a.ID] = a
	return a
}

func (f *fixture) liveAppointments() int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	n := 0
	for _, a := range f.store.appointments {
		if a.Status.IsLive() {
			n++
		}
	}
	return n
}

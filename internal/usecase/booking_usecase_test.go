package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/christinepetrosyan/Timebook/internal/delivery/dto"
	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"

	"github.com/google/uuid"
)

func TestBook_DerivesEndFromChosenOption(t *testing.T) {
	f := newFixture(t)
	f.seedSlot(f.optionBased.ID, at(13, 0), at(16, 0), false)
	long := f.optionBased.Options[1].ID

	resp, err := f.booking.Book(context.Background(), f.client, &dto.CreateAppointmentRequest{
		ServiceID:       f.optionBased.ID,
		ServiceOptionID: &long,
		StartTime:       at(14, 0),
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if !resp.Appointment.EndTime.Equal(at(15, 0)) {
		t.Fatalf("end = %s, want 15:00", resp.Appointment.EndTime)
	}
	if resp.Appointment.Status != string(entity.AppointmentStatusPending) {
		t.Fatalf("status = %s, want pending", resp.Appointment.Status)
	}
	if resp.DurationMinutes != 60 || resp.Price.IntPart() != 55 {
		t.Fatalf("quote = %d min / %s", resp.DurationMinutes, resp.Price)
	}
	if f.notifier.created != 1 {
		t.Fatalf("expected one created notification, got %d", f.notifier.created)
	}
}

func TestBook_OptionRequiredFailsBeforeReserving(t *testing.T) {
	f := newFixture(t)
	f.seedSlot(f.optionBased.ID, at(13, 0), at(16, 0), false)

	_, err := f.booking.Book(context.Background(), f.client, &dto.CreateAppointmentRequest{
		ServiceID: f.optionBased.ID,
		StartTime: at(14, 0),
	})
	if !errors.Is(err, apperror.ErrServiceOptionRequired) || apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.liveAppointments() != 0 {
		t.Fatalf("nothing may be created on validation failure")
	}
}

func TestBook_RequiresCoveringOpenSlot(t *testing.T) {
	f := newFixture(t)
	f.seedSlot(f.simple.ID, at(9, 0), at(10, 0), false)

	_, err := f.booking.Book(context.Background(), f.client, &dto.CreateAppointmentRequest{
		ServiceID: f.simple.ID,
		StartTime: at(9, 30),
	})
	if !errors.Is(err, apperror.ErrOfferUnavailable) || !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected offer conflict, got %v", err)
	}
}

func TestBook_ConflictsWithLiveAppointmentOfAnyService(t *testing.T) {
	f := newFixture(t)
	f.seedSlot(f.simple.ID, at(10, 0), at(11, 0), false)
	f.seedAppointment(f.optionBased.ID, uuid.New(), at(10, 30), at(11, 0), entity.AppointmentStatusPending)

	_, err := f.booking.Book(context.Background(), f.client, &dto.CreateAppointmentRequest{
		ServiceID: f.simple.ID,
		StartTime: at(10, 0),
	})
	if !errors.Is(err, apperror.ErrConflict) || !apperror.Retryable(err) {
		t.Fatalf("expected retryable conflict, got %v", err)
	}
}

func TestBook_SinkAppointmentsDoNotBlock(t *testing.T) {
	f := newFixture(t)
	f.seedSlot(f.simple.ID, at(10, 0), at(11, 0), false)
	f.seedAppointment(f.simple.ID, uuid.New(), at(10, 0), at(11, 0), entity.AppointmentStatusCancelled)
	f.seedAppointment(f.simple.ID, uuid.New(), at(10, 0), at(11, 0), entity.AppointmentStatusRejected)

	if _, err := f.booking.Book(context.Background(), f.client, &dto.CreateAppointmentRequest{
		ServiceID: f.simple.ID,
		StartTime: at(10, 0),
	}); err != nil {
		t.Fatalf("Book: %v", err)
	}
}

func TestBook_ConcurrentRaceHasOneWinner(t *testing.T) {
	f := newFixture(t)
	f.seedSlot(f.simple.ID, at(11, 0), at(12, 0), false)

	const contenders = 2
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			client := entity.Actor{UserID: uuid.New(), Role: entity.RoleUser}
			_, errs[i] = f.booking.Book(context.Background(), client, &dto.CreateAppointmentRequest{
				ServiceID: f.simple.ID,
				StartTime: at(11, 0),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected 1 success and 1 conflict, got %d and %d", ok, conflicts)
	}
	if f.liveAppointments() != 1 {
		t.Fatalf("expected exactly one appointment, got %d", f.liveAppointments())
	}
}

func TestBook_OnlyClients(t *testing.T) {
	f := newFixture(t)
	f.seedSlot(f.simple.ID, at(9, 0), at(10, 0), false)

	_, err := f.booking.Book(context.Background(), f.masterActor, &dto.CreateAppointmentRequest{ServiceID: f.simple.ID, StartTime: at(9, 0)})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestBookOnBehalf_SkipsOfferButNotOverlap(t *testing.T) {
	f := newFixture(t)
	walkIn := uuid.New()

	resp, err := f.booking.BookOnBehalf(context.Background(), f.masterActor, &dto.BookOnBehalfRequest{
		UserID:    walkIn,
		ServiceID: f.simple.ID,
		StartTime: at(17, 0),
	})
	if err != nil {
		t.Fatalf("BookOnBehalf: %v", err)
	}
	if resp.Appointment.UserID != walkIn {
		t.Fatalf("appointment should belong to the client")
	}

	_, err = f.booking.BookOnBehalf(context.Background(), f.masterActor, &dto.BookOnBehalfRequest{
		UserID:    uuid.New(),
		ServiceID: f.simple.ID,
		StartTime: at(17, 30),
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict with the walk-in, got %v", err)
	}
}

func TestBookOnBehalf_OnlyOwnMaster(t *testing.T) {
	f := newFixture(t)

	_, err := f.booking.BookOnBehalf(context.Background(), f.otherMaster, &dto.BookOnBehalfRequest{
		UserID:    uuid.New(),
		ServiceID: f.simple.ID,
		StartTime: at(17, 0),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = f.booking.BookOnBehalf(context.Background(), f.admin, &dto.BookOnBehalfRequest{
		UserID:    uuid.New(),
		ServiceID: f.simple.ID,
		StartTime: at(17, 0),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for admin, got %v", err)
	}
}

func TestToggleBlock_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	booked := true
	req := &dto.ToggleBlockRequest{ServiceID: f.simple.ID, StartTime: at(12, 0), EndTime: at(13, 0), Booked: &booked}

	first, err := f.booking.ToggleBlock(context.Background(), f.masterActor, req)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	second, err := f.booking.ToggleBlock(context.Background(), f.masterActor, req)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if first.ID != second.ID || !second.IsBooked {
		t.Fatalf("expected the same booked row, got %s and %s", first.ID, second.ID)
	}
	if n := len(f.store.slots); n != 1 {
		t.Fatalf("expected one slot row, got %d", n)
	}

	free := false
	req.Booked = &free
	released, err := f.booking.ToggleBlock(context.Background(), f.masterActor, req)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.ID != first.ID || released.IsBooked {
		t.Fatalf("release should flip the same row")
	}
}

func TestToggleBlock_RefusesOverLiveAppointment(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment(f.simple.ID, uuid.New(), at(12, 30), at(13, 30), entity.AppointmentStatusConfirmed)
	booked := true

	_, err := f.booking.ToggleBlock(context.Background(), f.masterActor, &dto.ToggleBlockRequest{
		ServiceID: f.optionBased.ID, StartTime: at(12, 0), EndTime: at(13, 0), Booked: &booked,
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.store.slots) != 0 {
		t.Fatalf("no block may be written")
	}
}

func TestToggleBlock_AuthorizationAndRange(t *testing.T) {
	f := newFixture(t)
	booked := true

	_, err := f.booking.ToggleBlock(context.Background(), f.otherMaster, &dto.ToggleBlockRequest{
		ServiceID: f.simple.ID, StartTime: at(12, 0), EndTime: at(13, 0), Booked: &booked,
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = f.booking.ToggleBlock(context.Background(), f.admin, &dto.ToggleBlockRequest{
		ServiceID: f.simple.ID, StartTime: at(13, 0), EndTime: at(12, 0), Booked: &booked,
	})
	if !errors.Is(err, apperror.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}

	if _, err := f.booking.ToggleBlock(context.Background(), f.admin, &dto.ToggleBlockRequest{
		ServiceID: f.simple.ID, StartTime: at(12, 0), EndTime: at(13, 0), Booked: &booked,
	}); err != nil {
		t.Fatalf("admin toggle: %v", err)
	}
}

// Package schedule projects time slots and appointments into day views.
// Everything here is pure: callers fetch the rows and pass them in.
package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
)

// Status is the derived label of an offer or grid cell.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

func (s Status) rank() int {
	switch s {
	case StatusConfirmed:
		return 3
	case StatusPending:
		return 2
	case StatusBooked:
		return 1
	}
	return 0
}

// Offer is one explicitly bounded slot shown to a client.
type Offer struct {
	SlotID    uuid.UUID
	Range     entity.TimeRange
	Available bool
	Status    Status
}

// Cell is one hour bucket of a master's day grid.
type Cell struct {
	Hour          int
	Range         entity.TimeRange
	Status        Status
	AppointmentID *uuid.UUID
	SlotID        *uuid.UUID
}

// Window is the configured operating window of the grid, in whole start hours.
type Window struct {
	StartHour int
	EndHour   int
}

// DefaultWindow covers 08:00 to 22:00 start hours inclusive.
var DefaultWindow = Window{StartHour: 8, EndHour: 22}

// BuildOffers marks each slot unavailable when its own flag is set, another of the
// master's blocks intersects it, or any live appointment intersects it.
// Output is sorted ascending by start.
func BuildOffers(slots []entity.TimeSlot, blocks []entity.TimeSlot, appointments []entity.Appointment) []Offer {
	offers := make([]Offer, 0, len(slots))
	for _, slot := range slots {
		r := slot.Range()
		status := StatusAvailable
		if slot.IsBooked || blockedBy(slot, blocks) {
			status = StatusBooked
		}
		if s, _ := strongestAppointment(r, appointments); s.rank() > status.rank() {
			status = s
		}

		offers = append(offers, Offer{
			SlotID:    slot.ID,
			Range:     r,
			Available: status == StatusAvailable,
			Status:    status,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].Range.Start.Equal(offers[j].Range.Start) {
			return offers[i].Range.End.Before(offers[j].Range.End)
		}
		return offers[i].Range.Start.Before(offers[j].Range.Start)
	})
	return offers
}

// BuildGrid classifies every hour of the window on day (in loc) as
// confirmed > pending > booked > available.
func BuildGrid(day time.Time, loc *time.Location, window Window, slots []entity.TimeSlot, appointments []entity.Appointment) []Cell {
	if loc == nil {
		loc = time.UTC
	}
	local := day.In(loc)
	y, m, d := local.Date()

	cells := make([]Cell, 0, window.EndHour-window.StartHour+1)
	for hour := window.StartHour; hour <= window.EndHour; hour++ {
		start := time.Date(y, m, d, hour, 0, 0, 0, loc)
		r := entity.TimeRange{Start: start, End: start.Add(time.Hour)}
		cell := Cell{Hour: hour, Range: r, Status: StatusAvailable}

		if slot := bucketSlot(r, slots); slot != nil {
			id := slot.ID
			cell.SlotID = &id
			if slot.IsBooked {
				cell.Status = StatusBooked
			}
		}
		if s, appt := strongestAppointment(r, appointments); appt != nil {
			id := appt.ID
			cell.AppointmentID = &id
			cell.Status = s
		}
		cells = append(cells, cell)
	}
	return cells
}

// strongestAppointment returns the highest-ranked live appointment overlapping r.
func strongestAppointment(r entity.TimeRange, appointments []entity.Appointment) (Status, *entity.Appointment) {
	best := StatusAvailable
	var found *entity.Appointment
	for i := range appointments {
		a := &appointments[i]
		if !a.Status.IsLive() || !a.Range().Overlaps(r) {
			continue
		}
		s := StatusPending
		if a.IsConfirmed() {
			s = StatusConfirmed
		}
		if found == nil || s.rank() > best.rank() {
			best, found = s, a
		}
	}
	return best, found
}

func blockedBy(slot entity.TimeSlot, blocks []entity.TimeSlot) bool {
	for _, b := range blocks {
		if b.IsBooked && b.ID != slot.ID && b.Range().Overlaps(slot.Range()) {
			return true
		}
	}
	return false
}

// bucketSlot prefers a booked slot, otherwise the first open one.
func bucketSlot(r entity.TimeRange, slots []entity.TimeSlot) *entity.TimeSlot {
	var open *entity.TimeSlot
	for i := range slots {
		s := &slots[i]
		if !s.Range().Overlaps(r) {
			continue
		}
		if s.IsBooked {
			return s
		}
		if open == nil {
			open = s
		}
	}
	return open
}

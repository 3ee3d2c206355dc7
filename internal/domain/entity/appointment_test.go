package entity

import "testing"

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	all := []AppointmentStatus{
		AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusRejected,
		AppointmentStatusCancelled,
	}
	legal := map[[2]AppointmentStatus]bool{
		{AppointmentStatusPending, AppointmentStatusConfirmed}: true,
		{AppointmentStatusPending, AppointmentStatusRejected}:  true,
		{AppointmentStatusPending, AppointmentStatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]AppointmentStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestAppointmentStatus_LiveAndSink(t *testing.T) {
	if !AppointmentStatusPending.IsLive() || !AppointmentStatusConfirmed.IsLive() {
		t.Fatalf("pending and confirmed must be live")
	}
	if AppointmentStatusRejected.IsLive() || AppointmentStatusCancelled.IsLive() {
		t.Fatalf("rejected and cancelled must not be live")
	}
	if !AppointmentStatusRejected.IsSink() || !AppointmentStatusCancelled.IsSink() {
		t.Fatalf("rejected and cancelled must be sinks")
	}
	if AppointmentStatusConfirmed.IsSink() {
		t.Fatalf("confirmed is terminal for providers but not a sink")
	}
}

func TestRole_MayReach(t *testing.T) {
	tests := []struct {
		role   Role
		target AppointmentStatus
		want   bool
	}{
		{RoleUser, AppointmentStatusCancelled, true},
		{RoleUser, AppointmentStatusConfirmed, false},
		{RoleUser, AppointmentStatusRejected, false},
		{RoleMaster, AppointmentStatusConfirmed, true},
		{RoleMaster, AppointmentStatusRejected, true},
		{RoleMaster, AppointmentStatusCancelled, false},
		{RoleAdmin, AppointmentStatusConfirmed, true},
		{RoleAdmin, AppointmentStatusCancelled, false},
		{Role("guest"), AppointmentStatusCancelled, false},
	}
	for _, tt := range tests {
		if got := tt.role.MayReach(tt.target); got != tt.want {
			t.Errorf("%s may reach %s = %v, want %v", tt.role, tt.target, got, tt.want)
		}
	}
}

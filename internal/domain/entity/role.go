package entity

import "github.com/google/uuid"

// Role is the caller role issued by the identity service.
type Role string

const (
	RoleUser   Role = "user"
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleMaster, RoleAdmin:
		return true
	}
	return false
}

// MayReach reports whether the role is allowed to move an appointment into status.
// Clients may only cancel; masters and admins may only confirm or reject.
func (r Role) MayReach(status AppointmentStatus) bool {
	switch r {
	case RoleUser:
		return status == AppointmentStatusCancelled
	case RoleMaster, RoleAdmin:
		return status == AppointmentStatusConfirmed || status == AppointmentStatusRejected
	}
	return false
}

// Actor is an already-authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

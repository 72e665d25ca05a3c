package actor

import "github.com/google/uuid"

type Role string

const (
	RoleCoach Role = "coach"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCoach, RoleOwner, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor is the authenticated caller. Identity itself is managed elsewhere.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func New(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

// System attributes automatic transitions (sweeps, gateway callbacks).
var System = Actor{ID: uuid.Nil, Role: "system"}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

package service

import "pharmacy-storefront/internal/models"

// Actor is the identity a request runs as. The zero value is anonymous.
type Actor struct {
	UserID  int64
	IsStaff bool
}

func ActorFor(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, IsStaff: u.IsStaff}
}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}

// StaffCapability proves a staff check passed. Only RequireStaff can mint a
// valid one; back-office operations refuse the zero value.
type StaffCapability struct {
	actor Actor
	valid bool
}

// RequireStaff grants the back-office capability to staff actors.
func RequireStaff(a Actor) (StaffCapability, error) {
	if !a.Authenticated() {
		return StaffCapability{}, ErrUnauthorized
	}
	if !a.IsStaff {
		return StaffCapability{}, ErrForbidden
	}
	return StaffCapability{actor: a, valid: true}, nil
}

func (c StaffCapability) Actor() Actor {
	return c.actor
}

func (c StaffCapability) check() error {
	if !c.valid {
		return ErrForbidden
	}
	return nil
}

func requireUser(a Actor) error {
	if !a.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

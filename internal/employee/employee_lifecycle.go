package employee

import (
	employeeerrors "go-employee-mgmt/internal/employee/errors"
	"go-employee-mgmt/internal/events"
)

// ProfileState is derived from storage: a user with an employee row has a
// completed profile, a user without one is only registered.
type ProfileState string

const (
	StateRegistered      ProfileState = "registered"
	StateProfileComplete ProfileState = "profile_complete"
)

func ProfileStateOf(e *Employee) ProfileState {
	if e == nil {
		return StateRegistered
	}
	return StateProfileComplete
}

type Transition string

const (
	TransitionCompleteProfile Transition = "complete_profile"
	TransitionAdminCreate     Transition = "admin_create"
	TransitionUpdate          Transition = "update"
	TransitionDelete          Transition = "delete"
)

// Next returns the state reached by applying t in s. Admin creation starts
// from a user that does not exist yet, so it is accepted from any state.
func (s ProfileState) Next(t Transition) (ProfileState, error) {
	switch t {
	case TransitionCompleteProfile:
		if s == StateProfileComplete {
			return s, employeeerrors.ErrProfileAlreadyCompleted
		}
		return StateProfileComplete, nil
	case TransitionAdminCreate:
		return StateProfileComplete, nil
	case TransitionUpdate:
		if s != StateProfileComplete {
			return s, employeeerrors.ErrEmployeeNotFound
		}
		return s, nil
	case TransitionDelete:
		if s != StateProfileComplete {
			return s, employeeerrors.ErrEmployeeNotFound
		}
		return StateRegistered, nil
	}
	return s, employeeerrors.ErrEmployeeNotFound
}

func (t Transition) EventType() string {
	switch t {
	case TransitionCompleteProfile:
		return events.EventProfileCompleted
	case TransitionAdminCreate:
		return events.EventEmployeeCreated
	case TransitionUpdate:
		return events.EventEmployeeUpdated
	case TransitionDelete:
		return events.EventEmployeeDeleted
	}
	return ""
}

package events

import "time"

const EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

const AggregateEmployee = "employee"

const (
	EventEmployeeCreated  = "employee_created"
	EventProfileCompleted = "profile_completed"
	EventEmployeeUpdated  = "employee_updated"
	EventEmployeeDeleted  = "employee_deleted"
)

// EmployeeLifecycleEvent is published once per committed transition of an
// employee record. ActorID is the user who triggered it.
type EmployeeLifecycleEvent struct {
	EventType    string    `json:"event_type"`
	ProfileState string    `json:"profile_state"`
	RequestID    string    `json:"request_id,omitempty"`
	EmployeeID   int64     `json:"employee_id"`
	UserID       int64     `json:"user_id"`
	ActorID      int64     `json:"actor_id"`
	JobID        *int64    `json:"job_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

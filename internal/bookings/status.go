package bookings

type Status string

const (
	// StatusReserved means the slot is held but the vehicle has not arrived.
	StatusReserved Status = "RESERVED"
	// StatusActive means the vehicle checked in and occupies the slot.
	StatusActive Status = "ACTIVE"
	// StatusCompleted means the vehicle checked out; terminal.
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled means the booking was cancelled; terminal.
	StatusCancelled Status = "CANCELLED"
	// StatusNoShow means the reservation expired unclaimed; terminal.
	StatusNoShow Status = "NO_SHOW"
)

// transitions is the full lifecycle graph. Anything not listed is invalid.
var transitions = map[Status][]Status{
	StatusReserved: {StatusActive, StatusCancelled, StatusNoShow},
	// Cancellation out of ACTIVE is reserved for admin force-cancel; user
	// cancellation stops at check-in.
	StatusActive: {StatusCompleted, StatusCancelled},
}

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusActive, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the lifecycle.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// IsLive reports whether the booking still holds a slot.
func (s Status) IsLive() bool {
	return s == StatusReserved || s == StatusActive
}

// CanBeCancelled checks if a booking with this status can be cancelled
func (s Status) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

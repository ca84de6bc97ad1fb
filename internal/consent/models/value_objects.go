package models

// Status represents the lifecycle state of a consent request.
type Status string

const (
	StatusPending Status = "pending"
	StatusGranted Status = "granted"
	StatusRevoked Status = "revoked"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusGranted || s == StatusRevoked
}

// rank orders the state machine. Transitions never move to a lower rank and
// revoked is terminal.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusGranted:
		return 1
	case StatusRevoked:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether the state machine allows moving to next.
// Re-asserting the current status is allowed so partial updates that repeat
// the stored status merge cleanly.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	if s == StatusRevoked {
		return false
	}
	return next.rank() > s.rank()
}

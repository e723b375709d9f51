package core

// Status represents the state of a payment transaction.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusSuccessful Status = "SUCCESSFUL"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// transitions is the only set of legal status changes. Anything not listed
// here is rejected, never silently overwritten.
var transitions = map[Status][]Status{
	StatusPending:    {StatusSuccessful, StatusFailed, StatusCancelled},
	StatusSuccessful: {StatusRefunded},
}

// CanTransitionTo reports whether moving from s to next is a legal change.
// Re-applying the current status is not a transition; callers treat it as a
// no-op before consulting this.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is expected from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccessful, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

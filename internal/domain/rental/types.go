package rental

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusReturned:
		return true
	default:
		return false
	}
}

// DueState is the presentation-level state derived from status, the expected
// return date and "today". It is never persisted.
type DueState string

const (
	DueStateOnTime   DueState = "ON_TIME"
	DueStateDueSoon  DueState = "DUE_SOON"
	DueStateOverdue  DueState = "OVERDUE"
	DueStateReturned DueState = "RETURNED"
)

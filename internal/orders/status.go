package orders

type Status string

const (
	StatusIncoming       Status = "Incoming"
	StatusInProgress     Status = "In Progress"
	StatusAwaitingPickup Status = "Awaiting Pickup"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusCompleted      Status = "Completed"
	StatusIssues         Status = "Issues"
)

// Valid reports whether s belongs to the fixed six-value vocabulary.
func Valid(s Status) bool {
	switch s {
	case StatusIncoming, StatusInProgress, StatusAwaitingPickup,
		StatusOutForDelivery, StatusCompleted, StatusIssues:
		return true
	}
	return false
}

// Staff-driven fulfillment flow. Any non-terminal state may branch to
// Issues; Completed and Issues are not enforced as terminal here since
// cancellation stays possible from any state.
var validNext = map[Status]map[Status]bool{
	StatusIncoming:       {StatusInProgress: true, StatusIssues: true},
	StatusInProgress:     {StatusAwaitingPickup: true, StatusOutForDelivery: true, StatusIssues: true},
	StatusAwaitingPickup: {StatusCompleted: true, StatusIssues: true},
	StatusOutForDelivery: {StatusCompleted: true, StatusIssues: true},
	StatusCompleted:      {},
	StatusIssues:         {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

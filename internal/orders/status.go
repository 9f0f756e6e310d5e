package orders

type Status string

const (
	StatusNew       Status = "new"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Customer-facing lifecycle is forward-only. Cancellation is reachable
// only before preparation starts. Admin overrides bypass this table.
var validNext = map[Status]map[Status]bool{
	StatusNew:       {StatusAccepted: true, StatusCancelled: true},
	StatusAccepted:  {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing: {StatusCompleted: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

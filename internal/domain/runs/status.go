package runs

// RunStatus is the lifecycle state of a metric run.
type RunStatus string

const (
	StatusPendingDependencies RunStatus = "pending_dependencies"
	StatusQueued              RunStatus = "queued"
	StatusDispatched          RunStatus = "dispatched"
	StatusRunning             RunStatus = "running"
	StatusSucceeded           RunStatus = "succeeded"
	StatusFailed              RunStatus = "failed"
	StatusTimedOut            RunStatus = "timed_out"
	StatusCanceled            RunStatus = "canceled"
)

// Transition table: from -> allowed tos. dispatched, timed_out and canceled
// are reachable targets but nothing in this service produces them; an
// external watchdog owns those transitions.
var validTransitions = map[RunStatus][]RunStatus{
	StatusPendingDependencies: {StatusQueued, StatusCanceled},
	StatusQueued:              {StatusDispatched, StatusRunning, StatusFailed, StatusTimedOut, StatusCanceled},
	StatusDispatched:          {StatusRunning, StatusFailed, StatusTimedOut, StatusCanceled},
	StatusRunning:             {StatusSucceeded, StatusFailed, StatusTimedOut, StatusCanceled},
	StatusSucceeded:           {},
	StatusFailed:              {},
	StatusTimedOut:            {},
	StatusCanceled:            {},
}

// CanTransition reports whether moving a run from one status to another is valid.
func CanTransition(from, to RunStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is final.
func IsTerminal(status RunStatus) bool {
	switch status {
	case StatusSucceeded, StatusFailed, StatusTimedOut, StatusCanceled:
		return true
	}
	return false
}

package pipeline

// Status represents the lifecycle state of a job or step.
type Status string

const (
	StatusPending Status = "pending" // Queued, not yet started
	StatusRunning Status = "running" // Executing
	StatusSuccess Status = "success" // Completed with exit code 0
	StatusFailure Status = "failure" // Exited non-zero, failed to spawn, or was cancelled
	StatusSkipped Status = "skipped" // Never executed (provisioning step, or an earlier step failed)
)

// transitions defines the allowed status transitions.
// Flow: pending → running → success/failure. Steps move pending → skipped
// when they never execute; a pending job moves to failure on cancellation.
var transitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusSkipped, StatusFailure},
	StatusRunning: {StatusSuccess, StatusFailure},
	StatusSuccess: {},
	StatusFailure: {},
	StatusSkipped: {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusSkipped
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusRunning:
		return "Running"
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusSkipped:
		return "Skipped"
	default:
		return string(s)
	}
}

package domain

import "time"

// ReloadEventType is the lifecycle phase a reload event reports.
type ReloadEventType uint8

const (
	// ReloadStart is published when a reload begins.
	ReloadStart ReloadEventType = iota
	// ReloadComplete is published when a reload finishes successfully.
	ReloadComplete
	// ReloadError is published when a reload fails to rebuild the registry.
	ReloadError
)

// String returns the lifecycle phase name.
func (t ReloadEventType) String() string {
	switch t {
	case ReloadStart:
		return "start"
	case ReloadComplete:
		return "complete"
	case ReloadError:
		return "error"
	default:
		return "unknown"
	}
}

// Reload reasons carried on events and passed to the coordinator.
const (
	ReasonUserCommand  = "user_command"
	ReasonConfigChange = "config_change"
)

// ReloadEvent describes one reload lifecycle transition.
// Events are ephemeral: broadcast to subscribers and never persisted.
type ReloadEvent struct {
	Type        ReloadEventType
	Reason      string
	Timestamp   time.Time
	BeforeCount int
	AfterCount  int
	Duration    time.Duration

	// Err carries the failure message for ReloadError events.
	Err string
}

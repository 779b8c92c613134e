package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownOperation is returned when an invocation names an operation
	// that no connected server exposes.
	ErrUnknownOperation = zerr.New("unknown operation")

	// ErrInvokeTimeout is returned when an invocation exceeds its deadline.
	ErrInvokeTimeout = zerr.New("operation timed out")

	// ErrToolCallFailed is returned when a tool server reports a call error.
	ErrToolCallFailed = zerr.New("tool call failed")

	// ErrReloadInProgress is returned when a reload is requested while
	// another reload is still running.
	ErrReloadInProgress = zerr.New("reload already in progress")

	// ErrReloadFailed is the cause attached to reload error events when the
	// registry cannot be rebuilt.
	ErrReloadFailed = zerr.New("reload failed")

	// ErrWatchUnavailable is returned when the platform cannot watch the
	// configuration path. It is non-fatal: reloads stay available via the
	// manual command.
	ErrWatchUnavailable = zerr.New("config watching unavailable")

	// ErrConfigNotFound is returned when no configuration file exists in the
	// working directory or any parent.
	ErrConfigNotFound = zerr.New("could not find relay.json")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the config document is well-formed
	// but violates a validation rule.
	ErrConfigInvalid = zerr.New("invalid config")

	// ErrServerLaunchFailed is returned when a tool server process cannot be
	// spawned or fails its initialization handshake.
	ErrServerLaunchFailed = zerr.New("failed to launch tool server")

	// ErrServerNotReady is returned when a request is dispatched before the
	// initialization handshake completed.
	ErrServerNotReady = zerr.New("tool server not initialized")

	// ErrServerClosed is returned when a request is dispatched to a server
	// that has been shut down.
	ErrServerClosed = zerr.New("tool server closed")

	// ErrPolicyOverrideInvalid is returned when a policy overrides file
	// attempts a change the classifier refuses, such as marking a built-in
	// mutating operation cacheable.
	ErrPolicyOverrideInvalid = zerr.New("invalid policy override")
)

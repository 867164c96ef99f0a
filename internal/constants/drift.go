package constants

import "time"

const (
	// DriftThresholdMin is the minimum excess of actual over planned duration,
	// in minutes, that turns a completion into a drift event.
	DriftThresholdMin = 10

	// DriftSurfaceDelay is how long the tracker waits before presenting a
	// newly picked event, so the surface does not interrupt the action that
	// triggered it.
	DriftSurfaceDelay = 1000 * time.Millisecond

	// SuccessCloseDelay is how long the resolution surface lingers on the
	// success screen before closing itself.
	SuccessCloseDelay = 1500 * time.Millisecond

	// RequestTimeout bounds read-path calls to the backend. Mutating calls
	// are issued once and never retried automatically.
	RequestTimeout = 5000 * time.Millisecond

	// TrackerPollInterval is how often the watch surface re-evaluates the
	// unresolved event set while idle.
	TrackerPollInterval = 30 * time.Second
)

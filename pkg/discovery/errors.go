package discovery

import "fmt"

// Common discovery errors.
var (
	// ErrNoHealthyEndpoint is returned when every candidate API server
	// failed its health probe. This is fatal to a run.
	ErrNoHealthyEndpoint = fmt.Errorf("no healthy API endpoint available (contact support@deltaneutral.com if this persists)")

	// ErrNoCandidates is returned when SelectHealthy is called with an
	// empty candidate list.
	ErrNoCandidates = fmt.Errorf("no endpoint candidates to probe")
)

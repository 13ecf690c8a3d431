package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks fatal caller mistakes: out-of-range coordinates or
// an empty farm reference. Never retried.
var ErrInvalidInput = errors.New("invalid input")

// ErrSummaryInconsistent marks a carbon summary whose total disagrees with
// its category sums. Unreachable through AggregateCarbon; seeing it means the
// input data is corrupt.
var ErrSummaryInconsistent = errors.New("carbon summary total does not match category sums")

// WeatherFailureCause distinguishes why the weather provider was unavailable,
// so the API layer can pick an equivalent status code.
type WeatherFailureCause string

const (
	// CauseConnection covers connection errors and timeouts: the provider
	// was never reached.
	CauseConnection WeatherFailureCause = "connection"
	// CauseUpstream covers provider-side failures: an error status code or
	// an unparseable body.
	CauseUpstream WeatherFailureCause = "upstream"
)

// WeatherUnavailableError is returned once the forecast retry budget is
// exhausted (or immediately for non-transient provider errors).
type WeatherUnavailableError struct {
	Cause      WeatherFailureCause
	StatusCode int // last upstream status, 0 for connection failures
	Err        error
}

func (e *WeatherUnavailableError) Error() string {
	if e.Cause == CauseUpstream && e.StatusCode != 0 {
		return fmt.Sprintf("weather provider unavailable (%s, status %d): %v", e.Cause, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("weather provider unavailable (%s): %v", e.Cause, e.Err)
}

func (e *WeatherUnavailableError) Unwrap() error { return e.Err }

// NarrativeError is a narrative collaborator failure: timeout, quota or auth
// rejection, or a response not parseable as the expected shape. Always
// recovered locally via the rule-only fallback, never surfaced to the caller.
type NarrativeError struct {
	Reason string
	Err    error
}

func (e *NarrativeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("narrative collaborator failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("narrative collaborator failed (%s)", e.Reason)
}

func (e *NarrativeError) Unwrap() error { return e.Err }

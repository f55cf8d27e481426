package rendezvous

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrRelayUnavailable indicates the relay server could not be
	// reached at all.
	ErrRelayUnavailable = errors.New("relay server unavailable")

	// ErrMeetingNotFound indicates the meeting/user pair is unknown to
	// the relay server.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrMeetingExpired indicates the relay server evicted the meeting
	// before all participants joined.
	ErrMeetingExpired = errors.New("meeting expired")
)

// RelayRejectedError indicates the relay server reported invalid
// input, for example duplicate identifiers in a create request.
type RelayRejectedError struct {
	Status int
	Reason string
}

func (e *RelayRejectedError) Error() string {
	return fmt.Sprintf("relay rejected request (status %d): %s", e.Status, e.Reason)
}

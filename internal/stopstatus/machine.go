// Package stopstatus defines the delivery-stop lifecycle and which
// transitions a driver may perform. The happy path is
// PENDING → ON_THE_WAY → ARRIVED → COMPLETED; FAILED is an alternate
// terminal reachable from any non-terminal state.
package stopstatus

import (
	"fmt"

	"route_dispatch/internal/models"
)

// Mode controls how strictly ordering is enforced. The legacy system trusted
// the client UI to call transitions in order; Strict adds the server-side
// guard, Permissive keeps the old last-write-wins behavior.
type Mode string

const (
	Strict     Mode = "strict"
	Permissive Mode = "permissive"
)

// ParseMode maps a config string to a Mode, defaulting to Strict.
func ParseMode(s string) Mode {
	if s == string(Permissive) {
		return Permissive
	}
	return Strict
}

var next = map[string]string{
	models.StopPending:  models.StopOnTheWay,
	models.StopOnTheWay: models.StopArrived,
	models.StopArrived:  models.StopCompleted,
}

// IsTerminal reports whether no further transitions leave the status.
func IsTerminal(status string) bool {
	return status == models.StopCompleted || status == models.StopFailed
}

// Known reports whether status is one of the five stop statuses.
func Known(status string) bool {
	switch status {
	case models.StopPending, models.StopOnTheWay, models.StopArrived,
		models.StopCompleted, models.StopFailed:
		return true
	}
	return false
}

// CanTransition validates a from→to transition under the given mode.
// Terminal states are frozen in both modes; Permissive only relaxes the
// ordering between live states.
func CanTransition(mode Mode, from, to string) error {
	if !Known(to) {
		return fmt.Errorf("unknown status %q", to)
	}
	if !Known(from) {
		return fmt.Errorf("unknown status %q", from)
	}
	if IsTerminal(from) {
		return fmt.Errorf("stop is already %s", from)
	}
	if to == models.StopFailed {
		return nil
	}
	if mode == Permissive {
		if to == from {
			return fmt.Errorf("stop is already %s", from)
		}
		return nil
	}
	if next[from] != to {
		return fmt.Errorf("cannot move from %s to %s", from, to)
	}
	return nil
}

// AllowsPayment reports whether payment data may be recorded at the given
// status. Payments are captured at the door, so only ARRIVED and COMPLETED
// stops accept them.
func AllowsPayment(status string) bool {
	return status == models.StopArrived || status == models.StopCompleted
}

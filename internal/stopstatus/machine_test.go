package stopstatus

import (
	"testing"

	"route_dispatch/internal/models"
)

func TestStrictHappyPath(t *testing.T) {
	steps := []struct{ from, to string }{
		{models.StopPending, models.StopOnTheWay},
		{models.StopOnTheWay, models.StopArrived},
		{models.StopArrived, models.StopCompleted},
	}
	for _, s := range steps {
		if err := CanTransition(Strict, s.from, s.to); err != nil {
			t.Errorf("strict %s->%s: unexpected error %v", s.from, s.to, err)
		}
	}
}

func TestStrictRejectsSkips(t *testing.T) {
	cases := []struct{ from, to string }{
		{models.StopPending, models.StopArrived},
		{models.StopPending, models.StopCompleted},
		{models.StopOnTheWay, models.StopCompleted},
		{models.StopArrived, models.StopOnTheWay}, // no going backwards
		{models.StopPending, models.StopPending},
	}
	for _, s := range cases {
		if err := CanTransition(Strict, s.from, s.to); err == nil {
			t.Errorf("strict %s->%s: expected rejection", s.from, s.to)
		}
	}
}

func TestFailedReachableFromAnyNonTerminal(t *testing.T) {
	for _, from := range []string{models.StopPending, models.StopOnTheWay, models.StopArrived} {
		for _, mode := range []Mode{Strict, Permissive} {
			if err := CanTransition(mode, from, models.StopFailed); err != nil {
				t.Errorf("%s %s->FAILED: unexpected error %v", mode, from, err)
			}
		}
	}
}

func TestTerminalStatesFrozen(t *testing.T) {
	for _, from := range []string{models.StopCompleted, models.StopFailed} {
		for _, to := range []string{models.StopPending, models.StopOnTheWay, models.StopArrived, models.StopCompleted, models.StopFailed} {
			for _, mode := range []Mode{Strict, Permissive} {
				if err := CanTransition(mode, from, to); err == nil {
					t.Errorf("%s %s->%s: expected rejection", mode, from, to)
				}
			}
		}
	}
}

func TestPermissiveAllowsSkips(t *testing.T) {
	if err := CanTransition(Permissive, models.StopPending, models.StopCompleted); err != nil {
		t.Errorf("permissive PENDING->COMPLETED: unexpected error %v", err)
	}
	if err := CanTransition(Permissive, models.StopPending, models.StopPending); err == nil {
		t.Error("permissive PENDING->PENDING: expected rejection")
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	if err := CanTransition(Strict, models.StopPending, "DELIVERING"); err == nil {
		t.Error("unknown target status: expected rejection")
	}
	if err := CanTransition(Strict, "LIMBO", models.StopOnTheWay); err == nil {
		t.Error("unknown source status: expected rejection")
	}
}

func TestParseMode(t *testing.T) {
	if got := ParseMode("permissive"); got != Permissive {
		t.Errorf("ParseMode(permissive) = %v", got)
	}
	if got := ParseMode(""); got != Strict {
		t.Errorf("ParseMode empty = %v, want strict default", got)
	}
	if got := ParseMode("bogus"); got != Strict {
		t.Errorf("ParseMode(bogus) = %v, want strict default", got)
	}
}

func TestAllowsPayment(t *testing.T) {
	if AllowsPayment(models.StopPending) || AllowsPayment(models.StopOnTheWay) || AllowsPayment(models.StopFailed) {
		t.Error("payment allowed before arrival")
	}
	if !AllowsPayment(models.StopArrived) || !AllowsPayment(models.StopCompleted) {
		t.Error("payment must be allowed at ARRIVED and COMPLETED")
	}
}

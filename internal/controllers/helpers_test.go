package controllers

import (
	"testing"

	"route_dispatch/internal/models"
)

func TestNameLooksLikeEmail(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Acme Corp", false},
		{"O'Brien & Sons", false},
		{"jane@example.com", true},
		{"Acme (contact jane@example.com)", true},
		{"jane@localhost", false}, // needs a dot in the domain
		{"", false},
	}
	for _, c := range cases {
		if got := nameLooksLikeEmail(c.name); got != c.want {
			t.Errorf("nameLooksLikeEmail(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func customerWithID(id uint) models.Customer {
	cu := models.Customer{Name: "Dup"}
	cu.ID = id
	return cu
}

func TestPickPrimaryIsOldest(t *testing.T) {
	customers := []models.Customer{customerWithID(9), customerWithID(3), customerWithID(12)}
	primary, duplicates := pickPrimary(customers)
	if primary.ID != 3 {
		t.Fatalf("primary = %d, want 3", primary.ID)
	}
	if len(duplicates) != 2 {
		t.Fatalf("duplicates = %d, want 2", len(duplicates))
	}
	for _, d := range duplicates {
		if d.ID == 3 {
			t.Fatal("primary listed among duplicates")
		}
	}
}

func stopWithID(id uint) models.Stop {
	s := models.Stop{}
	s.ID = id
	return s
}

func TestValidateReorder(t *testing.T) {
	stops := []models.Stop{stopWithID(1), stopWithID(2), stopWithID(3)}

	if err := validateReorder([]uint{3, 1, 2}, stops); err != nil {
		t.Errorf("valid permutation rejected: %v", err)
	}
	if err := validateReorder([]uint{1, 2}, stops); err == nil {
		t.Error("short list must be rejected")
	}
	if err := validateReorder([]uint{1, 2, 2}, stops); err == nil {
		t.Error("duplicate id must be rejected")
	}
	if err := validateReorder([]uint{1, 2, 9}, stops); err == nil {
		t.Error("foreign stop id must be rejected")
	}
	if err := validateReorder(nil, nil); err != nil {
		t.Errorf("empty route reorder: %v", err)
	}
}

func TestSequenceTracker(t *testing.T) {
	// seeded with the route's existing live stop sequences
	tr := newSequenceTracker([]int{1, 2, 5})

	if tr.claim(2) {
		t.Error("claim(2) must fail, sequence already held by an existing stop")
	}
	if !tr.claim(3) {
		t.Error("claim(3) must succeed")
	}
	if tr.claim(3) {
		t.Error("claim(3) twice must fail, duplicate within the sheet")
	}

	// auto-allocation continues past the max and skips claimed values
	if got := tr.next(); got != 6 {
		t.Errorf("next = %d, want 6", got)
	}
	if !tr.claim(8) {
		t.Error("claim(8) must succeed")
	}
	if got := tr.next(); got != 7 {
		t.Errorf("next = %d, want 7", got)
	}
	if got := tr.next(); got != 9 {
		t.Errorf("next = %d, want 9 (8 is claimed)", got)
	}
}

func TestSequenceTrackerEmptyRoute(t *testing.T) {
	tr := newSequenceTracker(nil)
	if got := tr.next(); got != 1 {
		t.Errorf("first sequence on empty route = %d, want 1", got)
	}
	if !tr.claim(4) {
		t.Error("claim(4) on empty route must succeed")
	}
}

func TestPaymentUpdatesRestrictedToPaymentColumns(t *testing.T) {
	amt := 12.5
	cash := true
	updates := paymentUpdates(paymentInput{Amount: &amt, PaymentCash: &cash})
	if len(updates) != 2 {
		t.Fatalf("updates = %v, want exactly the two provided fields", updates)
	}
	if updates["amount"] != 12.5 || updates["payment_cash"] != true {
		t.Errorf("updates = %v", updates)
	}
	// a payment write must never be able to revert a concurrent transition
	for _, col := range []string{"status", "arrival_time", "completion_time"} {
		if _, ok := updates[col]; ok {
			t.Errorf("payment update must not touch %s", col)
		}
	}

	if got := paymentUpdates(paymentInput{}); len(got) != 0 {
		t.Errorf("empty input must produce no updates, got %v", got)
	}
}

func TestFanoutKeys(t *testing.T) {
	if got := fanoutKeys(0); len(got) != 1 || got[0] != 0 {
		t.Errorf("fanoutKeys(0) = %v, want the catch-all bucket once", got)
	}
	if got := fanoutKeys(7); len(got) != 2 || got[0] != 7 || got[1] != 0 {
		t.Errorf("fanoutKeys(7) = %v, want route then catch-all", got)
	}
}

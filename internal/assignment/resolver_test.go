package assignment

import (
	"testing"

	"route_dispatch/internal/models"
)

func driver(id uint, username, fullName string) models.User {
	u := models.User{Username: username, FullName: fullName, Role: models.RoleDriver}
	u.ID = id
	return u
}

func uintPtr(v uint) *uint { return &v }

func TestNameMatches(t *testing.T) {
	d := driver(7, "jsmith", "John Smith")

	cases := []struct {
		hint string
		want bool
	}{
		{"jsmith", true},
		{"John Smith", true},
		{"JOHN SMITH", true},
		{"  jsmith  ", true},
		{"", false},
		{"jdoe", false},
		{"John", false},
	}
	for _, c := range cases {
		if got := NameMatches(c.hint, d); got != c.want {
			t.Errorf("NameMatches(%q) = %v, want %v", c.hint, got, c.want)
		}
	}
}

func TestResolveDirectIDWins(t *testing.T) {
	d := driver(7, "jsmith", "John Smith")

	// direct id pointing at the driver
	if !Resolve(Assignment{DirectDriverID: uintPtr(7)}, d) {
		t.Error("direct id match should resolve")
	}
	// direct id pointing elsewhere overrides a matching hint
	if Resolve(Assignment{DirectDriverID: uintPtr(9), NameHint: "jsmith"}, d) {
		t.Error("direct id mismatch must deny even with matching hint")
	}
	// no direct id falls back to the hint
	if !Resolve(Assignment{NameHint: "John Smith"}, d) {
		t.Error("name hint fallback should resolve")
	}
	if Resolve(Assignment{}, d) {
		t.Error("empty assignment must deny")
	}
}

func TestDriverOwnsStop(t *testing.T) {
	d := driver(7, "jsmith", "John Smith")

	ownRoute := models.Route{DriverID: uintPtr(7)}
	otherRoute := models.Route{DriverID: uintPtr(9)}
	unowned := models.Route{}

	hinted := models.Stop{DriverNameFromUpload: "jsmith"}
	plain := models.Stop{}

	if !DriverOwnsStop(ownRoute, plain, d) {
		t.Error("direct route ownership must grant stop access")
	}
	if !DriverOwnsStop(unowned, hinted, d) {
		t.Error("name hint must grant stop access on unowned route")
	}
	// legacy behavior: hint still grants access even when the route belongs
	// to someone else
	if !DriverOwnsStop(otherRoute, hinted, d) {
		t.Error("matching hint must grant access regardless of route owner")
	}
	if DriverOwnsStop(otherRoute, plain, d) {
		t.Error("no ownership path must deny")
	}
	if DriverOwnsStop(unowned, plain, d) {
		t.Error("unassigned stop must deny")
	}
}

func TestDriverOwnsRoute(t *testing.T) {
	d := driver(7, "jsmith", "John Smith")

	hinted := models.Stop{DriverNameFromUpload: "John Smith"}
	deletedHinted := models.Stop{DriverNameFromUpload: "John Smith", IsDeleted: true}

	if !DriverOwnsRoute(models.Route{DriverID: uintPtr(7)}, nil, d) {
		t.Error("direct ownership must grant route access")
	}
	if !DriverOwnsRoute(models.Route{}, []models.Stop{hinted}, d) {
		t.Error("hinted stop must grant route access")
	}
	if DriverOwnsRoute(models.Route{}, []models.Stop{deletedHinted}, d) {
		t.Error("soft-deleted stop must not grant route access")
	}
	if DriverOwnsRoute(models.Route{}, []models.Stop{{DriverNameFromUpload: "someone else"}}, d) {
		t.Error("non-matching hints must deny")
	}
}

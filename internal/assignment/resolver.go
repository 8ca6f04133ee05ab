// Package assignment resolves which driver owns a route or stop. Ownership
// is either a direct foreign key on the route or a legacy name hint carried
// on stops from spreadsheet uploads. Every driver-scoped handler must go
// through this package so the two paths are checked identically everywhere.
package assignment

import (
	"strings"

	"gorm.io/gorm"

	"route_dispatch/internal/models"
)

// Assignment is the tagged form of a stop's effective driver assignment.
type Assignment struct {
	DirectDriverID *uint
	NameHint       string
}

// NameMatches compares an uploaded free-text driver name against a user's
// username or full name, case-insensitively and ignoring surrounding
// whitespace.
func NameMatches(hint string, driver models.User) bool {
	h := strings.TrimSpace(strings.ToLower(hint))
	if h == "" {
		return false
	}
	return h == strings.ToLower(strings.TrimSpace(driver.Username)) ||
		h == strings.ToLower(strings.TrimSpace(driver.FullName))
}

// Resolve decides whether driver owns the assignment: the direct id wins
// when present, otherwise the name hint is compared.
func Resolve(a Assignment, driver models.User) bool {
	if a.DirectDriverID != nil {
		return *a.DirectDriverID == driver.ID
	}
	return NameMatches(a.NameHint, driver)
}

// StopAssignment extracts the tagged assignment from a stop and its route.
func StopAssignment(route models.Route, stop models.Stop) Assignment {
	return Assignment{DirectDriverID: route.DriverID, NameHint: stop.DriverNameFromUpload}
}

// DriverOwnsStop reports whether the driver may act on the stop, checking
// the route's direct owner first and the stop's name hint as fallback. A
// route directly owned by another driver is still reachable through a
// matching name hint on the stop, which mirrors how uploaded legacy routes
// behave.
func DriverOwnsStop(route models.Route, stop models.Stop, driver models.User) bool {
	if route.DriverID != nil && *route.DriverID == driver.ID {
		return true
	}
	return NameMatches(stop.DriverNameFromUpload, driver)
}

// DriverOwnsRoute reports whether the driver may see the route at all:
// direct ownership or at least one live stop bearing a matching name hint.
func DriverOwnsRoute(route models.Route, stops []models.Stop, driver models.User) bool {
	if route.DriverID != nil && *route.DriverID == driver.ID {
		return true
	}
	for _, s := range stops {
		if !s.IsDeleted && NameMatches(s.DriverNameFromUpload, driver) {
			return true
		}
	}
	return false
}

// RoutesForDriver loads the non-deleted routes the driver can access on a
// date: directly owned ones plus routes with at least one stop whose name
// hint matches. Stops come back ordered by sequence.
func RoutesForDriver(db *gorm.DB, driver models.User, date string) ([]models.Route, error) {
	var routes []models.Route
	q := db.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", false).Order("sequence ASC")
	}).
		Where("routes.is_deleted = ?", false).
		Where(
			db.Where("routes.driver_id = ?", driver.ID).
				Or("EXISTS (SELECT 1 FROM stops WHERE stops.route_id = routes.id AND stops.is_deleted = false AND (LOWER(TRIM(stops.driver_name_from_upload)) = ? OR LOWER(TRIM(stops.driver_name_from_upload)) = ?))",
					strings.ToLower(strings.TrimSpace(driver.Username)),
					strings.ToLower(strings.TrimSpace(driver.FullName))),
		)
	if date != "" {
		q = q.Where("DATE(routes.date) = ?", date)
	}
	if err := q.Order("routes.route_number ASC").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

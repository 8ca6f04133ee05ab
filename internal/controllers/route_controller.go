package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_dispatch/internal/config"
	"route_dispatch/internal/models"
)

type createRouteInput struct {
	RouteNumber string `json:"route_number" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	DriverID    *uint  `json:"driver_id"`
}

func parseRouteDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// CreateRoute creates an empty route for a date.
func CreateRoute(c *gin.Context) {
	var input createRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	date, err := parseRouteDate(input.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
		return
	}
	if input.DriverID != nil && !driverExists(*input.DriverID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "driver not found"})
		return
	}

	route := models.Route{
		RouteNumber: input.RouteNumber,
		Date:        date,
		Status:      models.RoutePending,
		DriverID:    input.DriverID,
	}
	if err := config.DB.Create(&route).Error; err != nil {
		logrus.WithError(err).Error("create route failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

func driverExists(id uint) bool {
	var count int64
	config.DB.Model(&models.User{}).
		Where("id = ? AND role = ? AND is_deleted = ?", id, models.RoleDriver, false).
		Count(&count)
	return count > 0
}

// ListRoutes returns live routes with stops ordered by sequence, optionally
// filtered by date.
func ListRoutes(c *gin.Context) {
	q := config.DB.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", false).Order("sequence ASC")
	}).Preload("Stops.Customer").Preload("Driver").
		Where("is_deleted = ?", false)
	if date := c.Query("date"); date != "" {
		if _, err := parseRouteDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
			return
		}
		q = q.Where("DATE(date) = ?", date)
	}

	var routes []models.Route
	if err := q.Order("route_number ASC").Find(&routes).Error; err != nil {
		logrus.WithError(err).Error("list routes failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": routes})
}

// GetRoute returns one live route with its live stops in order.
func GetRoute(c *gin.Context) {
	route, ok := loadRoute(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

func loadRoute(c *gin.Context) (models.Route, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid route id"})
		return models.Route{}, false
	}
	var route models.Route
	err = config.DB.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", false).Order("sequence ASC")
	}).Preload("Stops.Customer").Preload("Driver").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
		} else {
			logrus.WithError(err).Error("route lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return models.Route{}, false
	}
	return route, true
}

// UpdateRoute edits route metadata (number, date, status).
func UpdateRoute(c *gin.Context) {
	route, ok := loadRoute(c)
	if !ok {
		return
	}

	var input struct {
		RouteNumber *string `json:"route_number"`
		Date        *string `json:"date"`
		Status      *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if input.RouteNumber != nil {
		route.RouteNumber = *input.RouteNumber
	}
	if input.Date != nil {
		d, err := parseRouteDate(*input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
			return
		}
		route.Date = d
	}
	if input.Status != nil {
		switch *input.Status {
		case models.RoutePending, models.RouteInProgress, models.RouteCompleted, models.RouteCancelled:
			route.Status = *input.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid route status"})
			return
		}
	}

	if err := config.DB.Save(&route).Error; err != nil {
		logrus.WithError(err).Error("update route failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// AssignDriver sets the route's direct owner.
func AssignDriver(c *gin.Context) {
	route, ok := loadRoute(c)
	if !ok {
		return
	}

	var input struct {
		DriverID uint `json:"driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !driverExists(input.DriverID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "driver not found"})
		return
	}

	route.DriverID = &input.DriverID
	if err := config.DB.Save(&route).Error; err != nil {
		logrus.WithError(err).Error("assign driver failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// DeleteRoute soft-deletes the route and cascades to its live stops in one
// transaction. SUPER_ADMIN only; the route group enforces the role.
func DeleteRoute(c *gin.Context) {
	route, ok := loadRoute(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Stop{}).
			Where("route_id = ? AND is_deleted = ?", route.ID, false).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.Route{}).
			Where("id = ?", route.ID).
			Update("is_deleted", true).Error
	})
	if err != nil {
		logrus.WithError(err).Error("delete route failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}

// ListRoutesByDriver groups a date's live routes by their resolved driver.
// Directly owned routes group under the owner; unowned routes group under
// the distinct name hints carried by their stops.
func ListRoutesByDriver(c *gin.Context) {
	q := config.DB.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", false).Order("sequence ASC")
	}).Preload("Driver").
		Where("is_deleted = ?", false)
	if date := c.Query("date"); date != "" {
		if _, err := parseRouteDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
			return
		}
		q = q.Where("DATE(date) = ?", date)
	}

	var routes []models.Route
	if err := q.Find(&routes).Error; err != nil {
		logrus.WithError(err).Error("list routes by driver failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	grouped := make(map[string][]models.Route)
	for _, r := range routes {
		key := "unassigned"
		if r.Driver != nil {
			key = r.Driver.Username
		} else {
			hints := map[string]bool{}
			for _, s := range r.Stops {
				if s.DriverNameFromUpload != "" {
					hints[s.DriverNameFromUpload] = true
				}
			}
			if len(hints) == 1 {
				for h := range hints {
					key = h
				}
			} else if len(hints) > 1 {
				key = "mixed"
			}
		}
		grouped[key] = append(grouped[key], r)
	}
	c.JSON(http.StatusOK, gin.H{"data": grouped})
}

// AddStop appends a stop to the route at max(sequence)+1.
func AddStop(c *gin.Context) {
	route, ok := loadRoute(c)
	if !ok {
		return
	}

	var input struct {
		CustomerID           uint    `json:"customer_id" binding:"required"`
		Address              string  `json:"address"`
		Notes                string  `json:"notes"`
		Amount               float64 `json:"amount"`
		IsCOD                bool    `json:"is_cod"`
		DriverNameFromUpload string  `json:"driver_name_from_upload"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var customer models.Customer
	if err := config.DB.Where("id = ? AND is_deleted = ?", input.CustomerID, false).First(&customer).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customer not found"})
		return
	}

	var stop models.Stop
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var maxSeq int
		row := tx.Model(&models.Stop{}).
			Where("route_id = ? AND is_deleted = ?", route.ID, false).
			Select("COALESCE(MAX(sequence), 0)").
			Row()
		if err := row.Scan(&maxSeq); err != nil {
			return err
		}

		stop = models.Stop{
			RouteID:              route.ID,
			CustomerID:           input.CustomerID,
			Sequence:             maxSeq + 1,
			Status:               models.StopPending,
			Address:              input.Address,
			Notes:                input.Notes,
			Amount:               input.Amount,
			IsCOD:                input.IsCOD,
			DriverNameFromUpload: input.DriverNameFromUpload,
		}
		return tx.Create(&stop).Error
	})
	if err != nil {
		logrus.WithError(err).Error("add stop failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stop": stop})
}

// UpdateStop is the admin edit of a stop, including manual sequence
// changes. A sequence already held by another live stop on the route is
// rejected rather than silently accepted.
func UpdateStop(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid stop id"})
		return
	}

	var stop models.Stop
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&stop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "stop not found"})
		} else {
			logrus.WithError(err).Error("update stop: lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	var input struct {
		Sequence             *int     `json:"sequence"`
		Address              *string  `json:"address"`
		Notes                *string  `json:"notes"`
		Amount               *float64 `json:"amount"`
		IsCOD                *bool    `json:"is_cod"`
		HasReturn            *bool    `json:"has_return"`
		DriverNameFromUpload *string  `json:"driver_name_from_upload"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if input.Sequence != nil && *input.Sequence != stop.Sequence {
		if *input.Sequence < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "sequence must be positive"})
			return
		}
		var clash int64
		config.DB.Model(&models.Stop{}).
			Where("route_id = ? AND sequence = ? AND is_deleted = ? AND id <> ?",
				stop.RouteID, *input.Sequence, false, stop.ID).
			Count(&clash)
		if clash > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("sequence %d already in use on this route", *input.Sequence)})
			return
		}
		stop.Sequence = *input.Sequence
	}
	if input.Address != nil {
		stop.Address = *input.Address
	}
	if input.Notes != nil {
		stop.Notes = *input.Notes
	}
	if input.Amount != nil {
		stop.Amount = *input.Amount
	}
	if input.IsCOD != nil {
		stop.IsCOD = *input.IsCOD
	}
	if input.HasReturn != nil {
		stop.HasReturn = *input.HasReturn
	}
	if input.DriverNameFromUpload != nil {
		stop.DriverNameFromUpload = *input.DriverNameFromUpload
	}

	if err := config.DB.Save(&stop).Error; err != nil {
		logrus.WithError(err).Error("update stop: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

// DeleteStop soft-deletes one stop.
func DeleteStop(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid stop id"})
		return
	}

	res := config.DB.Model(&models.Stop{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("delete stop failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "stop not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop deleted"})
}

// validateReorder checks that ids is exactly a permutation of the route's
// live stop ids.
func validateReorder(ids []uint, stops []models.Stop) error {
	if len(ids) != len(stops) {
		return fmt.Errorf("expected %d stop ids, got %d", len(stops), len(ids))
	}
	live := make(map[uint]bool, len(stops))
	for _, s := range stops {
		live[s.ID] = true
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !live[id] {
			return fmt.Errorf("stop %d does not belong to this route", id)
		}
		if seen[id] {
			return fmt.Errorf("stop %d listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

// ReorderStops replaces the route's stop ordering with the given id list
// and renumbers sequences 1..n in one transaction. The list must be a
// permutation of the route's live stops.
func ReorderStops(c *gin.Context) {
	route, ok := loadRoute(c)
	if !ok {
		return
	}

	var input struct {
		StopIDs []uint `json:"stop_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := validateReorder(input.StopIDs, route.Stops); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		// Two passes keep the (route_id, sequence) pairs unique at every
		// point: park the stops on negative sequences, then renumber.
		for i, id := range input.StopIDs {
			if err := tx.Model(&models.Stop{}).
				Where("id = ?", id).
				Update("sequence", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, id := range input.StopIDs {
			if err := tx.Model(&models.Stop{}).
				Where("id = ?", id).
				Update("sequence", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("reorder failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	route, _ = loadRouteByID(route.ID)
	c.JSON(http.StatusOK, gin.H{"route": route})
}

func loadRouteByID(id uint) (models.Route, error) {
	var route models.Route
	err := config.DB.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", false).Order("sequence ASC")
	}).Where("id = ?", id).First(&route).Error
	return route, err
}

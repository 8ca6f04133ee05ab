package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_dispatch/internal/config"
	"route_dispatch/internal/models"
)

// CreateVehicle registers a vehicle; defaults InService to true.
func CreateVehicle(c *gin.Context) {
	var input struct {
		VehicleNo           string `json:"vehicle_no" binding:"required"`
		VehicleRegistration string `json:"vehicle_registration" binding:"required"`
		// InService omitted: always default true on creation
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		VehicleNo:           input.VehicleNo,
		VehicleRegistration: input.VehicleRegistration,
		InService:           true,
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		logrus.WithError(err).Error("create vehicle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// ListVehicles returns all live vehicles.
func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.Where("is_deleted = ?", false).Find(&vehicles).Error; err != nil {
		logrus.WithError(err).Error("list vehicles failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

// UpdateVehicle edits a live vehicle.
func UpdateVehicle(c *gin.Context) {
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&vehicle).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "vehicle not found"})
		return
	}

	var input struct {
		VehicleNo           *string `json:"vehicle_no"`
		VehicleRegistration *string `json:"vehicle_registration"`
		InService           *bool   `json:"in_service"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if input.VehicleNo != nil {
		vehicle.VehicleNo = *input.VehicleNo
	}
	if input.VehicleRegistration != nil {
		vehicle.VehicleRegistration = *input.VehicleRegistration
	}
	if input.InService != nil {
		vehicle.InService = *input.InService
	}

	if err := config.DB.Save(&vehicle).Error; err != nil {
		logrus.WithError(err).Error("update vehicle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// DeleteVehicle soft-deletes a vehicle and deactivates its assignments.
func DeleteVehicle(c *gin.Context) {
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&vehicle).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "vehicle not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VehicleAssignment{}).
			Where("vehicle_id = ? AND is_active = ?", vehicle.ID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Vehicle{}).
			Where("id = ?", vehicle.ID).
			Update("is_deleted", true).Error
	})
	if err != nil {
		logrus.WithError(err).Error("delete vehicle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted"})
}

// AssignVehicle links a vehicle and driver to a route, deactivating the
// vehicle's previous active assignment so availability views stay honest.
func AssignVehicle(c *gin.Context) {
	var input struct {
		VehicleID uint `json:"vehicle_id" binding:"required"`
		DriverID  uint `json:"driver_id" binding:"required"`
		RouteID   uint `json:"route_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Where("id = ? AND is_deleted = ?", input.VehicleID, false).First(&vehicle).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "vehicle not found"})
		return
	}
	if !driverExists(input.DriverID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "driver not found"})
		return
	}
	var routeCount int64
	config.DB.Model(&models.Route{}).
		Where("id = ? AND is_deleted = ?", input.RouteID, false).
		Count(&routeCount)
	if routeCount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "route not found"})
		return
	}

	var created models.VehicleAssignment
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VehicleAssignment{}).
			Where("vehicle_id = ? AND is_active = ?", input.VehicleID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		created = models.VehicleAssignment{
			VehicleID: input.VehicleID,
			DriverID:  input.DriverID,
			RouteID:   input.RouteID,
			IsActive:  true,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		logrus.WithError(err).Error("assign vehicle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": created})
}

// ListVehicleAssignments returns live assignments, filterable by route or
// active flag.
func ListVehicleAssignments(c *gin.Context) {
	q := config.DB.Preload("Vehicle").Preload("Driver").
		Where("is_deleted = ?", false)
	if routeID := c.Query("route_id"); routeID != "" {
		q = q.Where("route_id = ?", routeID)
	}
	if c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}

	var assignments []models.VehicleAssignment
	if err := q.Find(&assignments).Error; err != nil {
		logrus.WithError(err).Error("list assignments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// DeleteVehicleAssignment soft-deletes an assignment.
func DeleteVehicleAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid assignment id"})
		return
	}

	res := config.DB.Model(&models.VehicleAssignment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "is_active": false})
	if res.Error != nil {
		logrus.WithError(res.Error).Error("delete assignment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "assignment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignment deleted"})
}

package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"route_dispatch/internal/config"
	"route_dispatch/internal/models"
)

// CreateSafetyDeclaration records the driver signing the pre-trip
// checklist once per (driver, route, type). The unique index makes a repeat
// submission a 409 instead of a silent duplicate, even under concurrent
// requests.
func CreateSafetyDeclaration(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}

	var input struct {
		RouteID         *uint  `json:"route_id"`
		DeclarationType string `json:"declaration_type" binding:"required"`
		VehicleChecked  bool   `json:"vehicle_checked"`
		LoadSecured     bool   `json:"load_secured"`
		RestCompliant   bool   `json:"rest_compliant"`
		FitToDrive      bool   `json:"fit_to_drive"`
		LicenseValid    bool   `json:"license_valid"`
		Signature       string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if !input.VehicleChecked || !input.LoadSecured || !input.RestCompliant ||
		!input.FitToDrive || !input.LicenseValid {
		c.JSON(http.StatusBadRequest, gin.H{"message": "all declaration items must be acknowledged"})
		return
	}

	if input.RouteID != nil {
		var count int64
		config.DB.Model(&models.Route{}).
			Where("id = ? AND is_deleted = ?", *input.RouteID, false).
			Count(&count)
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "route not found"})
			return
		}
	}

	decl := models.SafetyDeclaration{
		DriverID:        driver.ID,
		RouteID:         input.RouteID,
		DeclarationType: input.DeclarationType,
		VehicleChecked:  input.VehicleChecked,
		LoadSecured:     input.LoadSecured,
		RestCompliant:   input.RestCompliant,
		FitToDrive:      input.FitToDrive,
		LicenseValid:    input.LicenseValid,
		Signature:       input.Signature,
		IPAddress:       c.ClientIP(),
		UserAgent:       c.Request.UserAgent(),
		AcknowledgedAt:  time.Now(),
	}
	if err := config.DB.Create(&decl).Error; err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"message": "declaration already submitted for this route"})
			return
		}
		logrus.WithError(err).Error("safety declaration insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"declaration": decl})
}

// ListSafetyDeclarations is the admin view, filterable by driver or route.
func ListSafetyDeclarations(c *gin.Context) {
	q := config.DB.Model(&models.SafetyDeclaration{})
	if driverID := c.Query("driver_id"); driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}
	if routeID := c.Query("route_id"); routeID != "" {
		q = q.Where("route_id = ?", routeID)
	}

	var decls []models.SafetyDeclaration
	if err := q.Order("acknowledged_at DESC").Find(&decls).Error; err != nil {
		logrus.WithError(err).Error("list safety declarations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": decls})
}

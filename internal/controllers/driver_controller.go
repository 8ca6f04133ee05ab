package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_dispatch/internal/assignment"
	"route_dispatch/internal/config"
	"route_dispatch/internal/metrics"
	"route_dispatch/internal/middleware"
	"route_dispatch/internal/models"
	"route_dispatch/internal/stopstatus"
)

// currentDriver loads the authenticated driver's live user record.
func currentDriver(c *gin.Context) (models.User, bool) {
	userID := middleware.UserIDFromContext(c)
	var driver models.User
	err := config.DB.
		Where("id = ? AND role = ? AND is_deleted = ?", userID, models.RoleDriver, false).
		First(&driver).Error
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "driver account not found"})
		return models.User{}, false
	}
	return driver, true
}

// loadDriverStop fetches a live stop plus its route and checks the shared
// assignment resolver. Every driver-scoped stop endpoint goes through here
// so the direct-id and name-hint paths are enforced identically.
func loadDriverStop(c *gin.Context, driver models.User) (models.Stop, models.Route, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid stop id"})
		return models.Stop{}, models.Route{}, false
	}

	var stop models.Stop
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&stop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "stop not found"})
		} else {
			logrus.WithError(err).Error("driver stop lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return models.Stop{}, models.Route{}, false
	}

	var route models.Route
	if err := config.DB.Where("id = ? AND is_deleted = ?", stop.RouteID, false).First(&route).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
		return models.Stop{}, models.Route{}, false
	}

	if !assignment.DriverOwnsStop(route, stop, driver) {
		c.JSON(http.StatusForbidden, gin.H{"message": "stop is not assigned to you"})
		return models.Stop{}, models.Route{}, false
	}
	return stop, route, true
}

// GetMyRoutes returns the routes the driver can work, resolved through the
// shared assignment rules, optionally filtered by date.
func GetMyRoutes(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date != "" {
		if _, err := parseRouteDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
			return
		}
	}

	routes, err := assignment.RoutesForDriver(config.DB, driver, date)
	if err != nil {
		logrus.WithError(err).Error("driver routes query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": routes})
}

// UpdateStopStatus performs one state-machine transition on an owned stop.
// ARRIVED stamps arrival time, COMPLETED stamps completion time; the hub is
// notified on success. The attendance gate applies only in enforce mode and
// fails open when the service is down.
func UpdateStopStatus(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}
	stop, _, ok := loadDriverStop(c, driver)
	if !ok {
		return
	}

	var input struct {
		Status    string   `json:"status" binding:"required"`
		Notes     string   `json:"notes"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := Attendance.Gate(driver.ID, driver.Username); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	}

	if err := stopstatus.CanTransition(TransitionMode, stop.Status, input.Status); err != nil {
		metrics.StopTransitions.WithLabelValues(input.Status, "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{"status": input.Status}
	if input.Notes != "" {
		updates["notes"] = input.Notes
	}
	switch input.Status {
	case models.StopArrived:
		updates["arrival_time"] = now
	case models.StopCompleted:
		updates["completion_time"] = now
	}

	// Single conditional row update: the WHERE on the old status makes
	// concurrent transitions race safely instead of both winning.
	res := config.DB.Model(&models.Stop{}).
		Where("id = ? AND status = ?", stop.ID, stop.Status).
		Updates(updates)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("stop status update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		metrics.StopTransitions.WithLabelValues(input.Status, "conflict").Inc()
		c.JSON(http.StatusConflict, gin.H{"message": "stop was updated by another device, reload and retry"})
		return
	}

	config.DB.First(&stop, stop.ID)

	// A fix sent along with the transition lands in the location log too.
	if input.Latitude != nil && input.Longitude != nil {
		loc := models.DriverLocation{
			DriverID:  driver.ID,
			StopID:    &stop.ID,
			RouteID:   &stop.RouteID,
			Latitude:  *input.Latitude,
			Longitude: *input.Longitude,
			Timestamp: now,
		}
		if err := config.DB.Create(&loc).Error; err != nil {
			logrus.WithError(err).Warn("stop status: location append failed")
		} else {
			EmitDriverLocationUpdate(loc)
		}
	}

	metrics.StopTransitions.WithLabelValues(input.Status, "ok").Inc()
	EmitStopStatusUpdate(stop, driver.ID)
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

type paymentInput struct {
	Amount              *float64 `json:"amount"`
	DriverPaymentAmount *float64 `json:"driver_payment_amount"`
	PaymentCash         *bool    `json:"payment_cash"`
	PaymentCheck        *bool    `json:"payment_check"`
	PaymentCard         *bool    `json:"payment_card"`
	HasReturn           *bool    `json:"has_return"`
}

// paymentUpdates builds the column set a payment submission may touch. Status
// and timestamps are deliberately absent: a payment racing a status
// transition must never write a stale status back.
func paymentUpdates(input paymentInput) map[string]interface{} {
	updates := map[string]interface{}{}
	if input.Amount != nil {
		updates["amount"] = *input.Amount
	}
	if input.DriverPaymentAmount != nil {
		updates["driver_payment_amount"] = *input.DriverPaymentAmount
	}
	if input.PaymentCash != nil {
		updates["payment_cash"] = *input.PaymentCash
	}
	if input.PaymentCheck != nil {
		updates["payment_check"] = *input.PaymentCheck
	}
	if input.PaymentCard != nil {
		updates["payment_card"] = *input.PaymentCard
	}
	if input.HasReturn != nil {
		updates["has_return"] = *input.HasReturn
	}
	return updates
}

// RecordPayment captures the payment taken at the door. Only ARRIVED or
// COMPLETED stops accept payment data. The write is restricted to payment
// columns.
func RecordPayment(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}
	stop, _, ok := loadDriverStop(c, driver)
	if !ok {
		return
	}

	if !stopstatus.AllowsPayment(stop.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "payment can only be recorded after arrival"})
		return
	}

	var input paymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if updates := paymentUpdates(input); len(updates) > 0 {
		if err := config.DB.Model(&models.Stop{}).
			Where("id = ?", stop.ID).
			Updates(updates).Error; err != nil {
			logrus.WithError(err).Error("record payment failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		config.DB.First(&stop, stop.ID)
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

// UploadStopImages clears any previously stored proof images for the stop,
// then saves the uploaded batch. The clear is idempotent and not
// transactional with the save; a failed upload can be retried.
func UploadStopImages(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}
	stop, _, ok := loadDriverStop(c, driver)
	if !ok {
		return
	}

	if stop.Status != models.StopArrived && stop.Status != models.StopCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"message": "proof images can only be attached after arrival"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "multipart form required"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no images in request"})
		return
	}

	if _, err := Images.Clear(stop.ID); err != nil {
		logrus.WithError(err).Error("image clear failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	saved, err := Images.SaveBatch(stop.ID, files)
	if err != nil {
		logrus.WithError(err).Error("image save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "images stored", "files": saved})
}

// ClearStopImages deletes the stop's stored proof images.
func ClearStopImages(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}
	stop, _, ok := loadDriverStop(c, driver)
	if !ok {
		return
	}

	removed, err := Images.Clear(stop.ID)
	if err != nil {
		logrus.WithError(err).Error("image clear failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "images cleared", "removed": removed})
}

// PostLocation appends a GPS fix to the location log and broadcasts it.
// The log is append-only; nothing ever updates a row.
func PostLocation(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}

	var input struct {
		Latitude  float64    `json:"latitude" binding:"required"`
		Longitude float64    `json:"longitude" binding:"required"`
		Accuracy  float64    `json:"accuracy"`
		StopID    *uint      `json:"stop_id"`
		RouteID   *uint      `json:"route_id"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ts := time.Now()
	if input.Timestamp != nil {
		ts = *input.Timestamp
	}

	loc := models.DriverLocation{
		DriverID:  driver.ID,
		StopID:    input.StopID,
		RouteID:   input.RouteID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Accuracy:  input.Accuracy,
		Timestamp: ts,
	}
	if err := config.DB.Create(&loc).Error; err != nil {
		logrus.WithError(err).Error("location insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	EmitDriverLocationUpdate(loc)
	c.JSON(http.StatusCreated, gin.H{"location": loc})
}

// GetMyAttendance proxies the external clock-in service for the driver's
// own status. Failures report clocked-in (fail open) so the UI never blocks
// on the integration.
func GetMyAttendance(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}
	st := Attendance.Check(driver.ID, driver.Username)
	c.JSON(http.StatusOK, gin.H{
		"isClockedIn": st.IsClockedIn,
		"clockInTime": st.ClockInTime,
	})
}

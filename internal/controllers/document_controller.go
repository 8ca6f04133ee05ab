package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_dispatch/internal/config"
	"route_dispatch/internal/models"
)

type documentInput struct {
	Title      string `json:"title" binding:"required"`
	Body       string `json:"body"`
	Version    string `json:"version"`
	IsRequired bool   `json:"is_required"`
	IsActive   *bool  `json:"is_active"`
}

// CreateSystemDocument publishes a document for drivers.
func CreateSystemDocument(c *gin.Context) {
	var input documentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	doc := models.SystemDocument{
		Title:      input.Title,
		Body:       input.Body,
		Version:    input.Version,
		IsRequired: input.IsRequired,
		IsActive:   true,
	}
	if input.IsActive != nil {
		doc.IsActive = *input.IsActive
	}
	if err := config.DB.Create(&doc).Error; err != nil {
		logrus.WithError(err).Error("create document failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// ListSystemDocuments is the admin listing, deleted ones excluded.
func ListSystemDocuments(c *gin.Context) {
	var docs []models.SystemDocument
	if err := config.DB.
		Where("is_deleted = ?", false).
		Order("id ASC").
		Find(&docs).Error; err != nil {
		logrus.WithError(err).Error("list documents failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs})
}

// UpdateSystemDocument edits a live document's flags and content.
func UpdateSystemDocument(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid document id"})
		return
	}

	var doc models.SystemDocument
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "document not found"})
		} else {
			logrus.WithError(err).Error("update document: lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	var input documentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	doc.Title = input.Title
	doc.Body = input.Body
	doc.Version = input.Version
	doc.IsRequired = input.IsRequired
	if input.IsActive != nil {
		doc.IsActive = *input.IsActive
	}
	if err := config.DB.Save(&doc).Error; err != nil {
		logrus.WithError(err).Error("update document: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// DeleteSystemDocument soft-deletes a document.
func DeleteSystemDocument(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid document id"})
		return
	}

	res := config.DB.Model(&models.SystemDocument{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("delete document failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

// ListDriverDocuments returns the active documents with the driver's own
// acknowledgment state attached.
func ListDriverDocuments(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}

	var docs []models.SystemDocument
	if err := config.DB.
		Where("is_active = ? AND is_deleted = ?", true, false).
		Order("id ASC").
		Find(&docs).Error; err != nil {
		logrus.WithError(err).Error("driver documents list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	var acks []models.DocumentAcknowledgment
	if err := config.DB.Where("driver_id = ?", driver.ID).Find(&acks).Error; err != nil {
		logrus.WithError(err).Error("driver acks list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	acked := make(map[uint]bool, len(acks))
	for _, a := range acks {
		acked[a.DocumentID] = true
	}

	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		out = append(out, gin.H{"document": d, "acknowledged": acked[d.ID]})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// AcknowledgeDocument records the driver's acknowledgment once per
// (document, driver, route). The unique index absorbs concurrent repeats:
// a conflict returns the already-stored record with 200, making the call
// idempotent.
func AcknowledgeDocument(c *gin.Context) {
	driver, ok := currentDriver(c)
	if !ok {
		return
	}

	docID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid document id"})
		return
	}

	var doc models.SystemDocument
	if err := config.DB.
		Where("id = ? AND is_active = ? AND is_deleted = ?", docID, true, false).
		First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "document not found"})
		return
	}

	// body is optional; acknowledgments without a route send none
	var input struct {
		RouteID *uint `json:"route_id"`
	}
	_ = c.ShouldBindJSON(&input)

	ack := models.DocumentAcknowledgment{
		DocumentID:     doc.ID,
		DriverID:       driver.ID,
		RouteID:        input.RouteID,
		AcknowledgedAt: time.Now(),
		IPAddress:      c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	}
	if err := config.DB.Create(&ack).Error; err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			var existing models.DocumentAcknowledgment
			q := config.DB.Where("document_id = ? AND driver_id = ?", doc.ID, driver.ID)
			if input.RouteID != nil {
				q = q.Where("route_id = ?", *input.RouteID)
			} else {
				q = q.Where("route_id IS NULL")
			}
			if err := q.First(&existing).Error; err == nil {
				c.JSON(http.StatusOK, gin.H{"acknowledgment": existing, "message": "already acknowledged"})
				return
			}
		}
		logrus.WithError(err).Error("acknowledgment insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"acknowledgment": ack})
}

// ListDocumentAcknowledgments is the admin audit view for one document.
func ListDocumentAcknowledgments(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid document id"})
		return
	}

	var acks []models.DocumentAcknowledgment
	if err := config.DB.
		Where("document_id = ?", docID).
		Order("acknowledged_at DESC").
		Find(&acks).Error; err != nil {
		logrus.WithError(err).Error("list acknowledgments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": acks})
}

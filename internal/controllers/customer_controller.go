package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_dispatch/internal/config"
	"route_dispatch/internal/metrics"
	"route_dispatch/internal/middleware"
	"route_dispatch/internal/models"
)

// emailLike flags names that contain an email address; those come from bad
// spreadsheet columns and must never become customer names.
var emailLike = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)

func nameLooksLikeEmail(name string) bool {
	return emailLike.MatchString(name)
}

type customerInput struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	ContactInfo string `json:"contact_info"`
	Email       string `json:"email"`
	Preferences string `json:"preferences"`
	GroupCode   string `json:"group_code"`
}

// CreateCustomer adds a customer record.
func CreateCustomer(c *gin.Context) {
	var input customerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if nameLooksLikeEmail(input.Name) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customer name must not contain an email address"})
		return
	}

	customer := models.Customer{
		Name:        input.Name,
		Address:     input.Address,
		ContactInfo: input.ContactInfo,
		Email:       input.Email,
		Preferences: input.Preferences,
		GroupCode:   input.GroupCode,
	}
	if err := config.DB.Create(&customer).Error; err != nil {
		logrus.WithError(err).Error("create customer failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// ListCustomers returns live customers, optionally filtered by name or
// group code.
func ListCustomers(c *gin.Context) {
	q := config.DB.Where("is_deleted = ?", false)
	if name := c.Query("name"); name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if group := c.Query("group_code"); group != "" {
		q = q.Where("group_code = ?", group)
	}

	var customers []models.Customer
	if err := q.Order("name ASC").Find(&customers).Error; err != nil {
		logrus.WithError(err).Error("list customers failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// UpdateCustomer edits a live customer.
func UpdateCustomer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	var customer models.Customer
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "customer not found"})
		} else {
			logrus.WithError(err).Error("update customer: lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	var input customerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if nameLooksLikeEmail(input.Name) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customer name must not contain an email address"})
		return
	}

	customer.Name = input.Name
	customer.Address = input.Address
	customer.ContactInfo = input.ContactInfo
	customer.Email = input.Email
	customer.Preferences = input.Preferences
	customer.GroupCode = input.GroupCode
	if err := config.DB.Save(&customer).Error; err != nil {
		logrus.WithError(err).Error("update customer: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// DeleteCustomer soft-deletes a customer.
func DeleteCustomer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	res := config.DB.Model(&models.Customer{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("delete customer failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "customer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted"})
}

// AttachCustomerDocument records a document reference against a customer.
func AttachCustomerDocument(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	var customer models.Customer
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "customer not found"})
		return
	}

	var input struct {
		FileName string `json:"file_name" binding:"required"`
		Title    string `json:"title"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	doc := models.CustomerDocument{
		CustomerID: customer.ID,
		FileName:   input.FileName,
		Title:      input.Title,
		UploadedBy: middleware.UserIDFromContext(c),
	}
	if err := config.DB.Create(&doc).Error; err != nil {
		logrus.WithError(err).Error("attach customer document failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// ListCustomerDocuments returns the live document references for a customer.
func ListCustomerDocuments(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	var docs []models.CustomerDocument
	if err := config.DB.
		Where("customer_id = ? AND is_deleted = ?", id, false).
		Order("id ASC").
		Find(&docs).Error; err != nil {
		logrus.WithError(err).Error("list customer documents failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs})
}

// ListDuplicateCustomers groups live customers that share a name.
func ListDuplicateCustomers(c *gin.Context) {
	var names []string
	err := config.DB.Model(&models.Customer{}).
		Where("is_deleted = ?", false).
		Group("name").
		Having("COUNT(*) > 1").
		Pluck("name", &names).Error
	if err != nil {
		logrus.WithError(err).Error("duplicate scan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	groups := make([]gin.H, 0, len(names))
	for _, name := range names {
		var customers []models.Customer
		if err := config.DB.
			Where("name = ? AND is_deleted = ?", name, false).
			Order("id ASC").
			Find(&customers).Error; err != nil {
			logrus.WithError(err).Error("duplicate group load failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		groups = append(groups, gin.H{"name": name, "customers": customers})
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// mergePlan is what a merge would do. The dry run returns exactly this; the
// real run executes it, so reported and actual counts can never drift.
type mergePlan struct {
	PrimaryID       uint   `json:"primary_id"`
	DuplicateIDs    []uint `json:"duplicate_ids"`
	StopsToMove     int64  `json:"stops_to_move"`
	DocumentsToMove int64  `json:"documents_to_move"`
}

// pickPrimary chooses the surviving customer: the oldest (lowest id).
func pickPrimary(customers []models.Customer) (models.Customer, []models.Customer) {
	primary := customers[0]
	for _, cu := range customers[1:] {
		if cu.ID < primary.ID {
			primary = cu
		}
	}
	var duplicates []models.Customer
	for _, cu := range customers {
		if cu.ID != primary.ID {
			duplicates = append(duplicates, cu)
		}
	}
	return primary, duplicates
}

// MergeCustomers merges all live customers sharing a name into the oldest
// one. With dry_run=true the plan is computed and returned without touching
// anything. Re-running after a completed merge finds no duplicates and is a
// no-op.
func MergeCustomers(c *gin.Context) {
	var input struct {
		Name   string `json:"name" binding:"required"`
		DryRun bool   `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var customers []models.Customer
	if err := config.DB.
		Where("name = ? AND is_deleted = ?", input.Name, false).
		Order("id ASC").
		Find(&customers).Error; err != nil {
		logrus.WithError(err).Error("merge: load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if len(customers) < 2 {
		c.JSON(http.StatusOK, gin.H{"message": "no duplicates to merge", "merged": false})
		return
	}

	primary, duplicates := pickPrimary(customers)
	dupIDs := make([]uint, 0, len(duplicates))
	for _, d := range duplicates {
		dupIDs = append(dupIDs, d.ID)
	}

	plan := mergePlan{PrimaryID: primary.ID, DuplicateIDs: dupIDs}
	if err := config.DB.Model(&models.Stop{}).
		Where("customer_id IN ?", dupIDs).
		Count(&plan.StopsToMove).Error; err != nil {
		logrus.WithError(err).Error("merge: stop count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if err := config.DB.Model(&models.CustomerDocument{}).
		Where("customer_id IN ? AND is_deleted = ?", dupIDs, false).
		Count(&plan.DocumentsToMove).Error; err != nil {
		logrus.WithError(err).Error("merge: document count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	if input.DryRun {
		metrics.CustomerMerges.WithLabelValues("dry_run").Inc()
		c.JSON(http.StatusOK, gin.H{"plan": plan, "merged": false})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Stop{}).
			Where("customer_id IN ?", dupIDs).
			Update("customer_id", primary.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CustomerDocument{}).
			Where("customer_id IN ? AND is_deleted = ?", dupIDs, false).
			Update("customer_id", primary.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Customer{}).
			Where("id IN ?", dupIDs).
			Update("is_deleted", true).Error
	})
	if err != nil {
		logrus.WithError(err).Error("merge: transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	metrics.CustomerMerges.WithLabelValues("commit").Inc()
	c.JSON(http.StatusOK, gin.H{"plan": plan, "merged": true})
}

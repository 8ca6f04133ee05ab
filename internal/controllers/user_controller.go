package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"route_dispatch/internal/config"
	"route_dispatch/internal/models"
)

type createUserInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type updateUserInput struct {
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
}

// CreateUser adds a staff account. Usernames are unique among live users.
func CreateUser(c *gin.Context) {
	var input createUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid role"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("create user: hash failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	user := models.User{
		Username: input.Username,
		Password: string(hash),
		FullName: input.FullName,
		Role:     input.Role,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"message": "username already in use"})
			return
		}
		logrus.WithError(err).Error("create user: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// ListUsers returns live users, optionally filtered by role.
func ListUsers(c *gin.Context) {
	q := config.DB.Where("is_deleted = ?", false)
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Order("username ASC").Find(&users).Error; err != nil {
		logrus.WithError(err).Error("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// UpdateUser edits a live user's editable fields.
func UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}

	var user models.User
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		} else {
			logrus.WithError(err).Error("update user: lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid role"})
			return
		}
		user.Role = *input.Role
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "password too short"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithError(err).Error("update user: hash failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		user.Password = string(hash)
	}

	if err := config.DB.Save(&user).Error; err != nil {
		logrus.WithError(err).Error("update user: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser soft-deletes the account. Tokens already issued keep working
// until expiry, but refresh is refused for deleted accounts.
func DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}

	res := config.DB.Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

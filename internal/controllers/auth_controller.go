package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"route_dispatch/internal/config"
	"route_dispatch/internal/middleware"
	"route_dispatch/internal/models"
)

// LoginUser authenticates by username/password and issues the default 8h
// session token. Soft-deleted accounts cannot log in.
func LoginUser(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	err := config.DB.
		Where("username = ? AND is_deleted = ?", body.Username, false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		} else {
			logrus.WithError(err).Error("login: lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, user.Role, middleware.LoginTTL())
	if err != nil {
		logrus.WithError(err).Error("login: token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

// RefreshToken reissues a token for the authenticated user. Drivers get 12h
// so a session survives a full route; everyone else gets 2h.
func RefreshToken(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var user models.User
	if err := config.DB.
		Where("id = ? AND is_deleted = ?", userID, false).
		First(&user).Error; err != nil {
		// deleted between issue and refresh: the identity is gone
		c.JSON(http.StatusUnauthorized, gin.H{"message": "account no longer active"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, user.Role, middleware.RefreshTTL(user.Role))
	if err != nil {
		logrus.WithError(err).Error("refresh: token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns the authenticated user's profile.
func Me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var user models.User
	if err := config.DB.
		Where("id = ? AND is_deleted = ?", userID, false).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"full_name": user.FullName,
		"role":      user.Role,
	})
}

// GetCSRFToken issues a fresh CSRF token tied to the authenticated user.
// The token lives in the injected store with a TTL, so it works across
// replicas and actually expires.
func GetCSRFToken(c *gin.Context) {
	token, err := middleware.IssueCSRFToken(Tokens, c)
	if err != nil {
		logrus.WithError(err).Error("csrf: issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}

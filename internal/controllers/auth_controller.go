package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Shanmukha18/ViOLA/internal/config"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
	"github.com/Shanmukha18/ViOLA/internal/models"
)

type googleAuthInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	PhotoURL string `json:"photoUrl"`
	GoogleID string `json:"googleId" binding:"required"`
}

type profileUpdateInput struct {
	Name string `json:"name" binding:"required"`
}

// AuthenticateWithGoogle exchanges a Google-derived identity claim for a
// bearer token. A first-time caller gets a User record, provided their email
// belongs to one of the campus domains; returning callers get their name,
// photo and Google id refreshed.
func AuthenticateWithGoogle(c *gin.Context) {
	var input googleAuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := createOrUpdateUser(config.DB, input)
	if err != nil {
		if errors.Is(err, errEmailNotAllowed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		logrus.WithError(err).Error("Google auth exchange failed.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	token, err := middleware.GenerateToken(user.Email, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toUserDTO(user),
	})
}

// GetCurrentUser returns the caller's profile.
func GetCurrentUser(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", principal.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	c.JSON(http.StatusOK, toUserDTO(&user))
}

// UpdateProfile changes the caller's display name.
func UpdateProfile(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var input profileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", principal.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	user.Name = input.Name
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, toUserDTO(&user))
}

var errEmailNotAllowed = errors.New("only VIT students with @vit.ac.in or @vitstudent.ac.in emails are allowed to register")

// createOrUpdateUser upserts the user record for an identity exchange. The
// domain restriction only applies to first-time registration.
func createOrUpdateUser(db *gorm.DB, input googleAuthInput) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", input.Email).First(&user).Error
	if err == nil {
		user.Name = input.Name
		user.PhotoURL = input.PhotoURL
		user.GoogleID = input.GoogleID
		if err := db.Save(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !models.IsAllowedEmail(input.Email) {
		return nil, errEmailNotAllowed
	}

	user = models.User{
		Email:      input.Email,
		Name:       input.Name,
		PhotoURL:   input.PhotoURL,
		GoogleID:   input.GoogleID,
		IsVerified: true, // campus address, auto-verified
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("Registered new user.")
	return &user, nil
}

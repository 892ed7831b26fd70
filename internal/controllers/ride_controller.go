package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Shanmukha18/ViOLA/internal/config"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
	"github.com/Shanmukha18/ViOLA/internal/models"
)

// Price must be a positive whole number with no leading zero.
var priceRe = regexp.MustCompile(`^[1-9]\d*$`)

type createRideInput struct {
	Pickup           string                  `json:"pickup" binding:"required"`
	Destination      string                  `json:"destination" binding:"required"`
	RideDate         string                  `json:"rideDate" binding:"required"`
	RideTime         string                  `json:"rideTime" binding:"required"`
	Price            string                  `json:"price" binding:"required"`
	Negotiable       *bool                   `json:"negotiable" binding:"required"`
	Description      string                  `json:"description"`
	GenderPreference models.GenderPreference `json:"genderPreference"`
}

func (in *createRideInput) validate() error {
	if !priceRe.MatchString(in.Price) {
		return errors.New("price must be a positive number starting with a non-zero digit")
	}
	if in.GenderPreference == "" {
		in.GenderPreference = models.GenderAnyone
	}
	if !in.GenderPreference.Valid() {
		return errors.New("invalid gender preference")
	}
	return nil
}

// GetAllRides lists active rides, newest first. No auth required.
func GetAllRides(c *gin.Context) {
	var rides []models.Ride
	if err := config.DB.Where("is_active = ?", true).
		Preload("Owner").
		Order("created_at desc").
		Find(&rides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, ridesToDTO(rides))
}

// GetRideByID returns a single ride. No auth required.
func GetRideByID(c *gin.Context) {
	ride, ok := findRide(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toRideDTO(ride))
}

// CreateRide posts a new ride owned by the caller.
func CreateRide(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var input createRideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ride := models.Ride{
		Pickup:           input.Pickup,
		Destination:      input.Destination,
		RideDate:         input.RideDate,
		RideTime:         input.RideTime,
		Price:            input.Price,
		Negotiable:       *input.Negotiable,
		Description:      input.Description,
		GenderPreference: input.GenderPreference,
		OwnerID:          principal.UserID,
		IsActive:         true,
	}
	if err := config.DB.Create(&ride).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create ride"})
		return
	}
	if err := config.DB.Preload("Owner").First(&ride, ride.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load created ride"})
		return
	}

	logrus.WithFields(logrus.Fields{
		"ride_id":  ride.ID,
		"owner_id": ride.OwnerID,
	}).Info("Ride created.")
	c.JSON(http.StatusOK, toRideDTO(&ride))
}

// UpdateRide replaces the mutable fields of a ride. Owner only.
func UpdateRide(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	ride, ok := findRide(c)
	if !ok {
		return
	}
	if ride.OwnerID != principal.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own rides"})
		return
	}

	var input createRideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ride.Pickup = input.Pickup
	ride.Destination = input.Destination
	ride.RideDate = input.RideDate
	ride.RideTime = input.RideTime
	ride.Price = input.Price
	ride.Negotiable = *input.Negotiable
	ride.Description = input.Description
	ride.GenderPreference = input.GenderPreference

	if err := config.DB.Save(ride).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update ride"})
		return
	}
	c.JSON(http.StatusOK, toRideDTO(ride))
}

// DeactivateRide soft-deletes a ride by flipping its active flag. Owner only.
func DeactivateRide(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	ride, ok := findRide(c)
	if !ok {
		return
	}
	if ride.OwnerID != principal.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only deactivate your own rides"})
		return
	}

	ride.IsActive = false
	if err := config.DB.Save(ride).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not deactivate ride"})
		return
	}
	c.Status(http.StatusOK)
}

// DeleteRidePermanently removes an already-deactivated ride and its messages.
// Owner only.
func DeleteRidePermanently(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	ride, ok := findRide(c)
	if !ok {
		return
	}
	if ride.OwnerID != principal.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own rides"})
		return
	}
	if ride.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You can only delete resolved rides"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("ride_id = ?", ride.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(ride).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete ride"})
		return
	}

	logrus.WithField("ride_id", ride.ID).Info("Ride permanently deleted.")
	c.Status(http.StatusOK)
}

// GetMyRides lists all of the caller's rides, active or not, newest first.
func GetMyRides(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var rides []models.Ride
	if err := config.DB.Where("owner_id = ?", principal.UserID).
		Preload("Owner").
		Order("created_at desc").
		Find(&rides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, ridesToDTO(rides))
}

// SearchRides matches active rides whose pickup or destination contains the
// query, case-insensitively. No auth required.
func SearchRides(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter 'q'"})
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"
	var rides []models.Ride
	if err := config.DB.
		Where("is_active = ? AND (LOWER(pickup) LIKE ? OR LOWER(destination) LIKE ?)", true, pattern, pattern).
		Preload("Owner").
		Order("created_at desc").
		Find(&rides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, ridesToDTO(rides))
}

// findRide loads the ride named by the :rideId path param, answering 400/404
// itself when it can't.
func findRide(c *gin.Context) (*models.Ride, bool) {
	id, err := strconv.ParseUint(c.Param("rideId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return nil, false
	}

	var ride models.Ride
	if err := config.DB.Preload("Owner").First(&ride, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ride not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return nil, false
	}
	return &ride, true
}

func ridesToDTO(rides []models.Ride) []RideDTO {
	out := make([]RideDTO, 0, len(rides))
	for i := range rides {
		out = append(out, toRideDTO(&rides[i]))
	}
	return out
}

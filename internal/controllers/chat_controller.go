package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Shanmukha18/ViOLA/internal/config"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
	"github.com/Shanmukha18/ViOLA/internal/models"
)

// GetRideChatHistory returns every message of a ride's chat, oldest first.
func GetRideChatHistory(c *gin.Context) {
	rideID, err := strconv.ParseUint(c.Param("rideId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return
	}

	var messages []models.Message
	if err := config.DB.Where("ride_id = ?", uint(rideID)).
		Preload("Sender").
		Preload("Receiver").
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, messagesToDTO(messages))
}

// GetConversations builds the caller's conversation list: rides they own
// that somebody messaged about, plus rides owned by others they have
// messaged about.
func GetConversations(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	entries, err := buildConversations(config.DB, principal.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to build conversation list.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetUnreadCount returns how many unread messages the caller has.
func GetUnreadCount(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var count int64
	if err := config.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", principal.UserID, false).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     count,
		"hasUnread": count > 0,
	})
}

// GetUnreadMessages lists the caller's unread messages, oldest first.
func GetUnreadMessages(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var messages []models.Message
	if err := config.DB.Where("receiver_id = ? AND is_read = ?", principal.UserID, false).
		Preload("Sender").
		Preload("Receiver").
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, messagesToDTO(messages))
}

// MarkRideAsRead flips every unread message the caller received in one
// ride's chat to read. Other rides are untouched.
func MarkRideAsRead(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	rideID, err := strconv.ParseUint(c.Param("rideId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return
	}

	if err := config.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND ride_id = ? AND is_read = ?", principal.UserID, uint(rideID), false).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark messages read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// buildConversations derives the conversation list for one user. A linear
// scan over rides and their messages; fine at campus scale.
func buildConversations(db *gorm.DB, userID uint) ([]ConversationEntry, error) {
	unreadRideIDs, err := unreadRideSet(db, userID)
	if err != nil {
		return nil, err
	}

	entries := []ConversationEntry{}

	// Rides the user owns, newest first.
	var ownedRides []models.Ride
	if err := db.Where("owner_id = ? AND is_active = ?", userID, true).
		Preload("Owner").
		Order("created_at desc").
		Find(&ownedRides).Error; err != nil {
		return nil, err
	}

	ownedIDs := make(map[uint]bool, len(ownedRides))
	for i := range ownedRides {
		ride := &ownedRides[i]
		ownedIDs[ride.ID] = true

		var rideMessages []models.Message
		if err := db.Where("ride_id = ?", ride.ID).
			Preload("Sender").
			Order("created_at asc").
			Find(&rideMessages).Error; err != nil {
			return nil, err
		}

		// The conversation partner is the first non-owner to write in.
		partner := &ride.Owner
		for i := range rideMessages {
			if rideMessages[i].SenderID != userID {
				partner = &rideMessages[i].Sender
				break
			}
		}

		entries = append(entries, conversationEntry(ride, partner, rideMessages, unreadRideIDs[ride.ID], true))
	}

	// Rides owned by others that the user has written into.
	var sent []models.Message
	if err := db.Where("sender_id = ? AND ride_id IS NOT NULL", userID).Find(&sent).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]bool)
	for i := range sent {
		rideID := *sent[i].RideID
		if ownedIDs[rideID] || seen[rideID] {
			continue
		}
		seen[rideID] = true

		var ride models.Ride
		if err := db.Preload("Owner").First(&ride, rideID).Error; err != nil {
			continue // ride may have been hard-deleted
		}
		if !ride.IsActive {
			continue
		}

		var rideMessages []models.Message
		if err := db.Where("ride_id = ?", ride.ID).
			Order("created_at asc").
			Find(&rideMessages).Error; err != nil {
			return nil, err
		}

		entries = append(entries, conversationEntry(&ride, &ride.Owner, rideMessages, unreadRideIDs[ride.ID], false))
	}

	return entries, nil
}

func conversationEntry(ride *models.Ride, partner *models.User, rideMessages []models.Message, hasUnread, isOwner bool) ConversationEntry {
	lastMessage := ride.Pickup + " to " + ride.Destination
	lastMessageTime := ride.CreatedAt
	if len(rideMessages) > 0 {
		last := rideMessages[len(rideMessages)-1]
		lastMessage = last.Content
		lastMessageTime = last.CreatedAt
	}
	return ConversationEntry{
		ID: ride.ID,
		Ride: ConversationRef{
			ID:          ride.ID,
			Pickup:      ride.Pickup,
			Destination: ride.Destination,
		},
		User: ConversationPartner{
			ID:    partner.ID,
			Name:  partner.Name,
			Email: partner.Email,
		},
		LastMessage:       lastMessage,
		LastMessageTime:   lastMessageTime,
		HasUnreadMessages: hasUnread,
		IsOwner:           isOwner,
	}
}

// unreadRideSet returns the ride ids with unread messages for the user.
func unreadRideSet(db *gorm.DB, userID uint) (map[uint]bool, error) {
	var unread []models.Message
	if err := db.Where("receiver_id = ? AND is_read = ? AND ride_id IS NOT NULL", userID, false).
		Find(&unread).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(unread))
	for i := range unread {
		set[*unread[i].RideID] = true
	}
	return set, nil
}

func messagesToDTO(messages []models.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageDTO(&messages[i]))
	}
	return out
}

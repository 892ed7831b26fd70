package controllers

import (
	"time"

	"github.com/Shanmukha18/ViOLA/internal/models"
)

// Response shapes returned to the web client. Field names follow the
// client's camelCase convention.

type UserDTO struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	PhotoURL   string    `json:"photoUrl"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

type RideDTO struct {
	ID               uint                    `json:"id"`
	Pickup           string                  `json:"pickup"`
	Destination      string                  `json:"destination"`
	RideDate         string                  `json:"rideDate"`
	RideTime         string                  `json:"rideTime"`
	Price            string                  `json:"price"`
	Negotiable       bool                    `json:"negotiable"`
	Description      string                  `json:"description"`
	GenderPreference models.GenderPreference `json:"genderPreference"`
	Owner            UserDTO                 `json:"owner"`
	IsActive         bool                    `json:"isActive"`
	CreatedAt        time.Time               `json:"createdAt"`
}

type MessageDTO struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Sender    *UserDTO  `json:"sender,omitempty"`
	Receiver  *UserDTO  `json:"receiver,omitempty"`
	RideID    *uint     `json:"rideId"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationRef and ConversationPartner are the trimmed projections
// embedded in a conversation entry.
type ConversationRef struct {
	ID          uint   `json:"id"`
	Pickup      string `json:"pickup"`
	Destination string `json:"destination"`
}

type ConversationPartner struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

/// ConversationEntry is one row of the derived conversation list: a ride the
// caller owns with inbound chat, or a ride they messaged the owner about.
type ConversationEntry struct {
	ID                uint                `json:"id"`
	Ride              ConversationRef     `json:"ride"`
	User              ConversationPartner `json:"user"`
	LastMessage       string              `json:"lastMessage"`
	LastMessageTime   time.Time           `json:"lastMessageTime"`
	HasUnreadMessages bool                `json:"hasUnreadMessages"`
	IsOwner           bool                `json:"isOwner"`
}

func toUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		PhotoURL:   u.PhotoURL,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func toRideDTO(r *models.Ride) RideDTO {
	return RideDTO{
		ID:               r.ID,
		Pickup:           r.Pickup,
		Destination:      r.Destination,
		RideDate:         r.RideDate,
		RideTime:         r.RideTime,
		Price:            r.Price,
		Negotiable:       r.Negotiable,
		Description:      r.Description,
		GenderPreference: r.GenderPreference,
		Owner:            toUserDTO(&r.Owner),
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt,
	}
}

func toMessageDTO(m *models.Message) MessageDTO {
	dto := MessageDTO{
		ID:        m.ID,
		Content:   m.Content,
		RideID:    m.RideID,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
	if m.Sender.ID != 0 {
		sender := toUserDTO(&m.Sender)
		dto.Sender = &sender
	}
	if m.Receiver != nil && m.Receiver.ID != 0 {
		receiver := toUserDTO(m.Receiver)
		dto.Receiver = &receiver
	}
	return dto
}

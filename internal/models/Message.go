package models

import (
	"gorm.io/gorm"
)

// Message is one chat message. Receiver is empty for pure broadcasts and the
// ride reference, once set, never changes. Messages are removed in bulk when
// their ride is hard-deleted.
type Message struct {
	gorm.Model

	Content string `json:"content" gorm:"type:text;not null"`

	SenderID uint `json:"sender_id" gorm:"not null"`
	Sender   User `json:"sender,omitempty"`

	ReceiverID *uint `json:"receiver_id"`
	Receiver   *User `json:"receiver,omitempty"`

	RideID *uint `json:"ride_id"`
	Ride   *Ride `json:"ride,omitempty"`

	IsRead bool `json:"is_read" gorm:"default:false"`
}

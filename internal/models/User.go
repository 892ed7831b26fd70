package models

import (
	"strings"

	"gorm.io/gorm"
)

// Email domains allowed to register. Everyone else is turned away at signup
// and a user from these domains is auto-verified.
var allowedEmailDomains = []string{"@vit.ac.in", "@vitstudent.ac.in"}

type User struct {
	gorm.Model
	Email      string `json:"email" gorm:"unique;not null"`
	Name       string `json:"name" gorm:"not null"`
	PhotoURL   string `json:"photo_url"`
	GoogleID   string `json:"google_id" gorm:"unique"`
	IsVerified bool   `json:"is_verified"`

	// Associations
	Rides []Ride `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"rides,omitempty"`
}

// IsAllowedEmail reports whether the address belongs to one of the
// registration domains.
func IsAllowedEmail(email string) bool {
	for _, suffix := range allowedEmailDomains {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

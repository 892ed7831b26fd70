package models

import (
	"gorm.io/gorm"
)

// GenderPreference restricts who a ride owner is willing to share with.
type GenderPreference string

const (
	GenderAnyone      GenderPreference = "ANYONE"
	GenderFemalesOnly GenderPreference = "FEMALES_ONLY"
	GenderMalesOnly   GenderPreference = "MALES_ONLY"
)

// Valid reports whether the value is one of the known preferences.
func (g GenderPreference) Valid() bool {
	switch g {
	case GenderAnyone, GenderFemalesOnly, GenderMalesOnly:
		return true
	}
	return false
}

// Ride is a posted offer to share transportation. The owner is fixed at
// creation time; "deleting" a ride flips IsActive, and a hard delete is only
// possible once the ride is already inactive.
type Ride struct {
	gorm.Model

	Pickup      string `json:"pickup" gorm:"not null"`
	Destination string `json:"destination" gorm:"not null"`
	RideDate    string `json:"ride_date" gorm:"not null"`
	RideTime    string `json:"ride_time" gorm:"not null"`
	// Price in whole rupees, kept as the validated string the client sent.
	Price            string           `json:"price" gorm:"not null"`
	Negotiable       bool             `json:"negotiable"`
	Description      string           `json:"description" gorm:"type:text"`
	GenderPreference GenderPreference `json:"gender_preference" gorm:"default:ANYONE"`

	OwnerID  uint `json:"owner_id" gorm:"not null"`
	Owner    User `json:"owner,omitempty"`
	IsActive bool `json:"is_active" gorm:"default:true"`

	// Associations
	Messages []Message `gorm:"foreignKey:RideID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"messages,omitempty"`
}

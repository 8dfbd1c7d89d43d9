package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	DefaultMaxDistance = 50.0
	MinRating          = 0.0
	MaxRating          = 5.0
)

// Location is validated as a unit: city, state and zip code are always
// present together.
type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

func (l Location) Complete() bool {
	return l.City != "" && l.State != "" && l.ZipCode != ""
}

type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Studio is a bookable production venue. MaxDistance is an operator-entered
// service radius, not something derived from coordinates.
type Studio struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	StudioName    string         `json:"studioName" gorm:"not null"`
	Description   string         `json:"description" gorm:"not null"`
	Address       string         `json:"address" gorm:"not null"`
	Location      Location       `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	PerHourCharge float64        `json:"perHourCharge" gorm:"not null;index"`
	MaxDistance   float64        `json:"maxDistance" gorm:"not null"`
	Rating        float64        `json:"rating" gorm:"not null;index"`
	Services      []string       `json:"services" gorm:"type:text;serializer:json"`
	Equipment     []Equipment    `json:"equipment" gorm:"type:text;serializer:json"`
	Images        []Image        `json:"images" gorm:"type:text;serializer:json"`
	IsActive      bool           `json:"isActive" gorm:"not null;index"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// Normalize replaces nil lists with empty ones so they serialize as [].
func (s *Studio) Normalize() {
	if s.Services == nil {
		s.Services = []string{}
	}
	if s.Equipment == nil {
		s.Equipment = []Equipment{}
	}
	if s.Images == nil {
		s.Images = []Image{}
	}
}

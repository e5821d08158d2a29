package models

import "time"

const (
	ServiceTypeGrooming   = "grooming"
	ServiceTypeVeterinary = "veterinary"
	ServiceTypeOther      = "other"
)

type Service struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	ServiceType string `gorm:"size:20;default:'other'" json:"service_type"`

	BasePrice       float64 `json:"base_price"`
	DefaultDuration int     `json:"default_duration"`

	RequiresBath     bool `gorm:"default:false" json:"requires_bath"`
	RequiresGrooming bool `gorm:"default:false" json:"requires_grooming"`
	RequiresVet      bool `gorm:"default:false" json:"requires_vet"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServicePrice narrows a service's price and duration for a breed/size.
// Nil fields fall back to the service defaults.
type ServicePrice struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ServiceID uint   `gorm:"uniqueIndex:idx_service_price_key;not null" json:"service_id"`
	Breed     string `gorm:"size:60;uniqueIndex:idx_service_price_key" json:"breed"`
	Size      string `gorm:"size:20;uniqueIndex:idx_service_price_key" json:"size"`

	Price       *float64 `json:"price"`
	DurationMin *int     `json:"duration_min"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

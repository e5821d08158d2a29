package models

import "time"

type StaffMember struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`

	CanBathe bool `gorm:"default:false" json:"can_bathe"`
	CanGroom bool `gorm:"default:false" json:"can_groom"`
	CanVet   bool `gorm:"default:false" json:"can_vet"`

	// Staff is deactivated, never deleted: appointments keep pointing at it.
	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

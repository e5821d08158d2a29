package models

import "time"

// AvailabilitySlot is one 10-minute sub-slot of a staff member's day.
type AvailabilitySlot struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	StaffID  uint   `gorm:"uniqueIndex:idx_availability_key;not null" json:"staff_id"`
	Date     string `gorm:"type:varchar(10);uniqueIndex:idx_availability_key;not null" json:"date"`
	TimeSlot string `gorm:"type:varchar(8);uniqueIndex:idx_availability_key;not null" json:"time_slot"`

	Available bool `gorm:"not null" json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

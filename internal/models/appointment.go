package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	PetID uint `json:"pet_id"`
	Pet   Pet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"pet"`

	PrimaryServiceID   uint  `json:"primary_service_id"`
	SecondaryServiceID *uint `json:"secondary_service_id"`

	Date        string `gorm:"type:varchar(10);index;not null" json:"date"`
	Time        string `gorm:"type:varchar(8);not null" json:"time"`
	DurationMin int    `json:"duration"`

	TotalPrice float64 `json:"total_price"`
	ExtraFee   float64 `json:"extra_fee"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`

	OverrideConflicts    bool   `gorm:"default:false" json:"override_conflicts"`
	OverrideAvailability bool   `gorm:"default:false" json:"override_availability"`
	CreatedBy            string `gorm:"size:64" json:"created_by"`

	Assignments []AppointmentStaffAssignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"assignments"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentStaffAssignment binds one staff member to one service of an
// appointment. The window is copied from the appointment so the store can
// refuse overlapping rows for the same staff member.
type AppointmentStaffAssignment struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"index;not null" json:"appointment_id"`
	StaffID       uint `gorm:"index;not null" json:"staff_id"`
	ServiceID     uint `gorm:"not null" json:"service_id"`

	Date     string `gorm:"type:varchar(10);not null" json:"date"`
	StartMin int    `gorm:"not null" json:"start_min"`
	EndMin   int    `gorm:"not null" json:"end_min"`

	Override bool `gorm:"default:false" json:"override"`
	Active   bool `gorm:"default:true" json:"active"`
}

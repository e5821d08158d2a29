package booking

import (
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/conflict"
)

var validate = validator.New()

// BookingRequest is everything collected before commit. It is a plain value
// so it can travel between steps, over the wire, or be stored as JSON.
type BookingRequest struct {
	ClientID     uint   `json:"client_id,omitempty"`
	ClientUserID string `json:"client_user_id,omitempty" validate:"required_without=ClientID"`
	PetID        uint   `json:"pet_id" validate:"required"`

	PrimaryServiceID   uint  `json:"primary_service_id" validate:"required"`
	SecondaryServiceID *uint `json:"secondary_service_id,omitempty"`

	PrimaryStaffID   uint  `json:"primary_staff_id" validate:"required"`
	SecondaryStaffID *uint `json:"secondary_staff_id,omitempty" validate:"required_with=SecondaryServiceID"`

	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required"`

	Notes    string  `json:"notes,omitempty" validate:"max=2000"`
	ExtraFee float64 `json:"extra_fee,omitempty" validate:"min=0"`

	Overrides conflict.Overrides `json:"overrides"`
}

// Selection is the part of a request that decides the time window.
type Selection struct {
	Date string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"start_time" form:"start_time"`

	PrimaryServiceID   uint  `json:"primary_service_id" form:"primary_service_id" validate:"required"`
	PrimaryStaffID     uint  `json:"primary_staff_id" form:"primary_staff_id" validate:"required"`
	SecondaryServiceID *uint `json:"secondary_service_id,omitempty" form:"secondary_service_id"`
	SecondaryStaffID   *uint `json:"secondary_staff_id,omitempty" form:"secondary_staff_id" validate:"required_with=SecondaryServiceID"`

	PetID *uint `json:"pet_id,omitempty" form:"pet_id"`
}

func (r BookingRequest) Selection() Selection {
	petID := r.PetID
	return Selection{
		Date:               r.Date,
		Time:               r.Time,
		PrimaryServiceID:   r.PrimaryServiceID,
		PrimaryStaffID:     r.PrimaryStaffID,
		SecondaryServiceID: r.SecondaryServiceID,
		SecondaryStaffID:   r.SecondaryStaffID,
		PetID:              &petID,
	}
}

func (s Selection) serviceIDs() []uint {
	ids := []uint{s.PrimaryServiceID}
	if s.SecondaryServiceID != nil {
		ids = append(ids, *s.SecondaryServiceID)
	}
	return ids
}

func (s Selection) staffIDs() []uint {
	ids := []uint{s.PrimaryStaffID}
	if s.SecondaryServiceID != nil && s.SecondaryStaffID != nil {
		ids = append(ids, *s.SecondaryStaffID)
	}
	return ids
}

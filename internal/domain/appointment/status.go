package appointment

import "github.com/BruksfildServices01/petcare-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsActive is true while the appointment can still be cancelled or
// completed.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ===============================
// Validations
// ===============================

func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if !current.IsActive() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if !current.IsActive() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// InitialStatus: staff-made bookings are confirmed on creation, client
// bookings wait for the clinic.
func InitialStatus(byStaff bool) Status {
	if byStaff {
		return StatusConfirmed
	}
	return StatusPending
}

package availability

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// Store persists AvailabilitySlot rows. Every mutating call is a single
// statement so readers never see half a day updated.
type Store interface {
	ListSlots(
		ctx context.Context,
		staffID uint,
		date string,
	) ([]models.AvailabilitySlot, error)

	// InsertMissing creates the given rows, leaving existing
	// (staff, date, time) rows untouched. Returns the rows created.
	InsertMissing(
		ctx context.Context,
		slots []models.AvailabilitySlot,
	) (int64, error)

	// SetAvailable updates the listed sub-slots of one staff/date.
	SetAvailable(
		ctx context.Context,
		staffID uint,
		date string,
		timeSlots []string,
		available bool,
	) (int64, error)

	DeleteBefore(
		ctx context.Context,
		date string,
	) (int64, error)
}

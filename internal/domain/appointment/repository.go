package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// ErrNotFound is returned by repositories for missing rows.
var ErrNotFound = errors.New("record not found")

type Repository interface {
	// -------- Transaction --------
	// Transaction runs fn against a repository bound to one store
	// transaction. Any error rolls everything back.
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// LockStaff serialises writers touching the same staff members until
	// the surrounding transaction ends.
	LockStaff(
		ctx context.Context,
		staffIDs []uint,
	) error

	// LockAppointment holds the appointment row until the surrounding
	// transaction ends, so status changes apply one after another.
	LockAppointment(
		ctx context.Context,
		id uint,
	) error

	// -------- Catalog --------
	GetService(
		ctx context.Context,
		id uint,
	) (*models.Service, error)

	ListServices(
		ctx context.Context,
	) ([]models.Service, error)

	GetStaff(
		ctx context.Context,
		id uint,
	) (*models.StaffMember, error)

	ListStaff(
		ctx context.Context,
	) ([]models.StaffMember, error)

	// -------- Client / Pet --------
	GetClient(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	GetClientByUserID(
		ctx context.Context,
		userID string,
	) (*models.Client, error)

	GetPet(
		ctx context.Context,
		id uint,
	) (*models.Pet, error)

	// -------- Day snapshot (conflict) --------
	ListActiveAssignments(
		ctx context.Context,
		staffIDs []uint,
		date string,
	) ([]models.AppointmentStaffAssignment, error)

	ListBlockedSlots(
		ctx context.Context,
		staffIDs []uint,
		date string,
	) ([]models.AvailabilitySlot, error)

	// -------- Appointment --------
	// CreateAppointment stores the appointment and its assignments together.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// UpdateAppointment saves the status fields and the assignments'
	// active flag.
	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointmentsForPeriod(
		ctx context.Context,
		staffID uint,
		fromDate string,
		toDate string,
	) ([]models.Appointment, error)
}

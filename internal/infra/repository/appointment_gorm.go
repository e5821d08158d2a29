package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// LockStaff takes row locks on the staff members in id order, so two
// bookings sharing staff always queue instead of deadlocking.
func (r *AppointmentGormRepository) LockStaff(
	ctx context.Context,
	staffIDs []uint,
) error {

	if len(staffIDs) == 0 {
		return nil
	}

	var locked []models.StaffMember
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", staffIDs).
		Order("id ASC").
		Find(&locked).Error
}

func (r *AppointmentGormRepository) LockAppointment(
	ctx context.Context,
	id uint,
) error {

	var locked []models.Appointment
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		Find(&locked).Error
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &svc, nil
}

func (r *AppointmentGormRepository) ListServices(
	ctx context.Context,
) ([]models.Service, error) {

	var out []models.Service
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppointmentGormRepository) GetStaff(
	ctx context.Context,
	id uint,
) (*models.StaffMember, error) {

	var st models.StaffMember
	if err := r.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (r *AppointmentGormRepository) ListStaff(
	ctx context.Context,
) ([]models.StaffMember, error) {

	var out []models.StaffMember
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------
// Client / Pet
// --------------------------------------------------

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *AppointmentGormRepository) GetClientByUserID(
	ctx context.Context,
	userID string,
) (*models.Client, error) {

	var c models.Client
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *AppointmentGormRepository) GetPet(
	ctx context.Context,
	id uint,
) (*models.Pet, error) {

	var p models.Pet
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// --------------------------------------------------
// Day snapshot
// --------------------------------------------------

func (r *AppointmentGormRepository) ListActiveAssignments(
	ctx context.Context,
	staffIDs []uint,
	date string,
) ([]models.AppointmentStaffAssignment, error) {

	var out []models.AppointmentStaffAssignment
	if err := r.db.WithContext(ctx).
		Where("staff_id IN ? AND date = ? AND active = ?", staffIDs, date, true).
		Order("start_min ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppointmentGormRepository) ListBlockedSlots(
	ctx context.Context,
	staffIDs []uint,
	date string,
) ([]models.AvailabilitySlot, error) {

	var out []models.AvailabilitySlot
	if err := r.db.WithContext(ctx).
		Where("staff_id IN ? AND date = ? AND available = ?", staffIDs, date, false).
		Order("staff_id ASC, time_slot ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

// CreateAppointment inserts the appointment and its assignments in one
// statement batch. Overlaps rejected by the exclusion constraint come back
// as the raw pgconn error (SQLSTATE 23P01).
func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).
		Omit("Client", "Pet").
		Create(ap).Error
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Pet").
		Preload("Assignments").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ?", ap.ID).
			Updates(map[string]any{
				"status":       ap.Status,
				"notes":        ap.Notes,
				"cancelled_at": ap.CancelledAt,
				"completed_at": ap.CompletedAt,
				"updated_at":   gorm.Expr("NOW()"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		for _, as := range ap.Assignments {
			if err := tx.Model(&models.AppointmentStaffAssignment{}).
				Where("id = ?", as.ID).
				Update("active", as.Active).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListAppointmentsForPeriod returns every appointment on [fromDate, toDate)
// that has staffID among its assignments.
func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	staffID uint,
	fromDate string,
	toDate string,
) ([]models.Appointment, error) {

	assigned := r.db.
		Model(&models.AppointmentStaffAssignment{}).
		Select("appointment_id").
		Where("staff_id = ?", staffID)

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Pet").
		Preload("Assignments").
		Where("id IN (?) AND date >= ? AND date < ?", assigned, fromDate, toDate).
		Order("date ASC, time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)

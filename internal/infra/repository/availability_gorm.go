package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type AvailabilityGormRepository struct {
	db *gorm.DB
}

func NewAvailabilityGormRepository(db *gorm.DB) *AvailabilityGormRepository {
	return &AvailabilityGormRepository{db: db}
}

func (r *AvailabilityGormRepository) ListSlots(
	ctx context.Context,
	staffID uint,
	date string,
) ([]models.AvailabilitySlot, error) {

	var out []models.AvailabilitySlot
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND date = ?", staffID, date).
		Order("time_slot ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// InsertMissing relies on the (staff_id, date, time_slot) unique index:
// rows that already exist are skipped, never overwritten.
func (r *AvailabilityGormRepository) InsertMissing(
	ctx context.Context,
	slots []models.AvailabilitySlot,
) (int64, error) {

	if len(slots) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "staff_id"}, {Name: "date"}, {Name: "time_slot"}},
			DoNothing: true,
		}).
		CreateInBatches(slots, 500)
	return res.RowsAffected, res.Error
}

func (r *AvailabilityGormRepository) SetAvailable(
	ctx context.Context,
	staffID uint,
	date string,
	timeSlots []string,
	available bool,
) (int64, error) {

	if len(timeSlots) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("staff_id = ? AND date = ? AND time_slot IN ?", staffID, date, timeSlots).
		Updates(map[string]any{
			"available":  available,
			"updated_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}

func (r *AvailabilityGormRepository) DeleteBefore(
	ctx context.Context,
	date string,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Where("date < ?", date).
		Delete(&models.AvailabilitySlot{})
	return res.RowsAffected, res.Error
}

var _ availability.Store = (*AvailabilityGormRepository)(nil)

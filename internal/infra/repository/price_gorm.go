package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type PriceGormResolver struct {
	db *gorm.DB
}

func NewPriceGormResolver(db *gorm.DB) *PriceGormResolver {
	return &PriceGormResolver{db: db}
}

// Resolve prefers a row for the exact breed over the breed-less row of the
// same size.
func (r *PriceGormResolver) Resolve(
	ctx context.Context,
	serviceID uint,
	breed string,
	size string,
) (domain.Resolution, error) {

	var rows []models.ServicePrice
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND LOWER(size) = LOWER(?)", serviceID, size).
		Where("LOWER(breed) = LOWER(?) OR breed = ''", breed).
		Order("breed DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return domain.Resolution{}, err
	}

	if len(rows) == 0 {
		return domain.Resolution{}, nil
	}
	return domain.Resolution{Price: rows[0].Price, DurationMin: rows[0].DurationMin}, nil
}

var _ domain.PriceResolver = (*PriceGormResolver)(nil)

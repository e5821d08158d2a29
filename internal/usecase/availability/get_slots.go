package availability

import (
	"context"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

type GetSlots struct {
	store domain.Store
}

func NewGetSlots(store domain.Store) *GetSlots {
	return &GetSlots{store: store}
}

// Execute returns every sub-slot of staffID on date, ordered by time.
func (uc *GetSlots) Execute(
	ctx context.Context,
	staffID uint,
	date string,
) ([]models.AvailabilitySlot, error) {

	if _, err := timezone.ParseDate(date); err != nil {
		return nil, httperr.ErrValidation("invalid_date").Arg("date", date)
	}

	slots, err := uc.store.ListSlots(ctx, staffID, date)
	if err != nil {
		return nil, httperr.ErrPersistence("availability_read_failed", err).
			Arg("staff_id", staffID).
			Arg("date", date)
	}

	return slots, nil
}

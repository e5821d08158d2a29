package availability

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

// PurgeAvailability is the data-retention cleanup, the only path that
// deletes availability rows.
type PurgeAvailability struct {
	store    domain.Store
	calendar *schedule.Calendar
	audit    *audit.Dispatcher
}

func NewPurgeAvailability(
	store domain.Store,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
) *PurgeAvailability {
	return &PurgeAvailability{store: store, calendar: calendar, audit: audit}
}

func (uc *PurgeAvailability) Execute(
	ctx context.Context,
	before string,
	actor audit.Actor,
) (int64, error) {

	date, err := timezone.ParseDate(before)
	if err != nil {
		return 0, httperr.ErrValidation("invalid_date").Arg("before", before)
	}
	// Only history can go.
	if uc.calendar.Today().Before(date) {
		return 0, httperr.ErrValidation("purge_future_dates").Arg("before", before)
	}

	deleted, err := uc.store.DeleteBefore(ctx, date.String())
	if err != nil {
		return 0, httperr.ErrPersistence("availability_purge_failed", err).Arg("before", before)
	}

	uc.audit.Dispatch(actor.Event(
		audit.ActionAvailabilityPurged,
		"availability",
		nil,
		map[string]any{"before": before, "deleted": deleted},
	))

	return deleted, nil
}
